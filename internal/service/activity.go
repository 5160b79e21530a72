package service

import (
	"context"

	"github.com/BuzzLyutic/kanban-board/internal/model"
	"github.com/BuzzLyutic/kanban-board/internal/store"
)

// Activity возвращает журнал, новые записи первыми
func (s *TaskService) Activity(ctx context.Context, filter model.ActionFilter) []model.Action {
	st := s.store.State()
	actions := make([]model.Action, 0, len(st.Actions))
	for _, a := range st.Actions {
		if filter.Match(a) {
			actions = append(actions, a)
		}
	}
	return actions
}

func (s *TaskService) Conflicts(ctx context.Context) []model.ConflictData {
	conflicts := s.store.State().Conflicts
	if conflicts == nil {
		return []model.ConflictData{}
	}
	return conflicts
}

// CurrentConflict - показываем только первый из ожидающих конфликтов
func (s *TaskService) CurrentConflict(ctx context.Context) (model.ConflictData, error) {
	conflicts := s.store.State().Conflicts
	if len(conflicts) == 0 {
		return model.ConflictData{}, ErrNotFound
	}
	return conflicts[0], nil
}

// ResolveConflict применяет выбранную версию и снимает конфликт по задаче
func (s *TaskService) ResolveConflict(ctx context.Context, taskID string, r model.Resolution) (model.Task, error) {
	var resolved model.Task
	_, err := s.store.Update(ctx, func(st store.State) ([]store.Command, error) {
		if _, err := currentUser(st); err != nil {
			return nil, err
		}
		if !r.Valid() {
			return nil, invalid("Invalid resolution")
		}
		for _, c := range st.Conflicts {
			if c.TaskID == taskID {
				resolved = c.Pick(r)
				return []store.Command{
					store.UpdateTask(resolved),
					store.ResolveConflict(taskID),
				}, nil
			}
		}
		return nil, ErrNotFound
	})
	return resolved, err
}
