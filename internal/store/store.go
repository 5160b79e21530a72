package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SaveTimeout ограничивает запись одного изменения в хранилище
const SaveTimeout = 5 * time.Second

// Saver сохраняет состояние после каждого изменения
type Saver interface {
	Save(ctx context.Context, s State) error
}

// Store - единственный владелец состояния доски. Все изменения идут через
// Update/Dispatch под одним мьютексом: один логический писатель.
type Store struct {
	mu     sync.Mutex
	state  State
	saver  Saver
	logger *zap.Logger
}

func New(initial State, saver Saver, logger *zap.Logger) *Store {
	return &Store{
		state:  initial,
		saver:  saver,
		logger: logger,
	}
}

// State возвращает снимок. Reduce не меняет срезы на месте, поэтому снимок
// можно читать без блокировки.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) Dispatch(ctx context.Context, cmds ...Command) State {
	st, _ := s.Update(ctx, func(State) ([]Command, error) {
		return cmds, nil
	})
	return st
}

// Update вызывает fn с текущим состоянием и применяет возвращенные команды
// атомарно. Ошибка fn отменяет все изменения.
func (s *Store) Update(ctx context.Context, fn func(State) ([]Command, error)) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmds, err := fn(s.state)
	if err != nil {
		return s.state, err
	}
	if len(cmds) == 0 {
		return s.state, nil
	}

	next := s.state
	for _, c := range cmds {
		next = Reduce(next, c)
	}
	s.state = next

	if s.saver != nil {
		// Изменение уже применено в памяти, поэтому отмена запроса не должна
		// прерывать запись
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), SaveTimeout)
		defer cancel()
		if err := s.saver.Save(saveCtx, next); err != nil {
			s.logger.Error("failed to persist state", zap.Error(err))
		}
	}
	return next, nil
}
