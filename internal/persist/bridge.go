package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/kanban-board/internal/model"
	"github.com/BuzzLyutic/kanban-board/internal/storage"
	"github.com/BuzzLyutic/kanban-board/internal/store"
)

// Ключи хранилища
const (
	KeyCurrentUser = "currentUser"
	KeyTasks       = "tasks"
	KeyActions     = "actions"
	KeyUsers       = "users"
)

// Bridge связывает store с хранилищем ключ-значение.
// Четыре ключа пишутся независимо, транзакции между ними нет.
type Bridge struct {
	kv     storage.KV
	logger *zap.Logger
}

func NewBridge(kv storage.KV, logger *zap.Logger) *Bridge {
	return &Bridge{kv: kv, logger: logger}
}

// Load читает сохраненное состояние. Испорченные данные - ошибка без запасного
// варианта; отсутствие пользователей заменяется демо-пользователями.
func (b *Bridge) Load(ctx context.Context) (store.State, error) {
	st := store.Reduce(store.State{}, store.SetLoading(true))

	var user model.User
	found, err := b.read(ctx, KeyCurrentUser, &user)
	if err != nil {
		return st, err
	}
	if found {
		st = store.Reduce(st, store.SetCurrentUser(user))
	}

	var tasks []model.Task
	if found, err = b.read(ctx, KeyTasks, &tasks); err != nil {
		return st, err
	}
	if found {
		st = store.Reduce(st, store.SetTasks(tasks))
	}

	var actions []model.Action
	if found, err = b.read(ctx, KeyActions, &actions); err != nil {
		return st, err
	}
	if found {
		st = store.Reduce(st, store.SetActions(actions))
	}

	var users []model.User
	if found, err = b.read(ctx, KeyUsers, &users); err != nil {
		return st, err
	}
	if found {
		st = store.Reduce(st, store.SetUsers(users))
	} else {
		demo := model.DemoUsers()
		st = store.Reduce(st, store.SetUsers(demo))
		if err := b.write(ctx, KeyUsers, demo); err != nil {
			return st, err
		}
		b.logger.Info("seeded demo users", zap.Int("count", len(demo)))
	}

	st = store.Reduce(st, store.SetLoading(false))
	b.logger.Info("state loaded",
		zap.Int("tasks", len(st.Tasks)),
		zap.Int("actions", len(st.Actions)),
		zap.Int("users", len(st.Users)),
		zap.Bool("authenticated", st.IsAuthenticated),
	)
	return st, nil
}

// Save реализует store.Saver. Каждый ключ пишется даже если предыдущий упал.
func (b *Bridge) Save(ctx context.Context, st store.State) error {
	var err error
	if st.CurrentUser != nil {
		err = multierr.Append(err, b.write(ctx, KeyCurrentUser, st.CurrentUser))
	} else {
		err = multierr.Append(err, b.kv.Delete(ctx, KeyCurrentUser))
	}
	err = multierr.Append(err, b.write(ctx, KeyTasks, nonNil(st.Tasks)))
	err = multierr.Append(err, b.write(ctx, KeyActions, nonNil(st.Actions)))
	err = multierr.Append(err, b.write(ctx, KeyUsers, nonNil(st.Users)))
	return err
}

func (b *Bridge) read(ctx context.Context, key string, dst any) (bool, error) {
	data, err := b.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (b *Bridge) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := b.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// nonNil - пустой список сериализуется как [], а не null
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
