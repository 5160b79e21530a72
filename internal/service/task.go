package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/BuzzLyutic/kanban-board/internal/model"
	"github.com/BuzzLyutic/kanban-board/internal/store"
)

// TaskInput - поля формы создания/редактирования задачи
type TaskInput struct {
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Status       model.Status   `json:"status"`
	Priority     model.Priority `json:"priority"`
	AssignedUser string         `json:"assignedUser"`
}

type MoveResult struct {
	Task     model.Task          `json:"task"`
	Conflict *model.ConflictData `json:"conflict,omitempty"`
}

type AssignResult struct {
	Task model.Task `json:"task"`
	User model.User `json:"user"`
}

type Column struct {
	Status model.Status `json:"status"`
	Count  int          `json:"count"`
	Tasks  []model.Task `json:"tasks"`
}

type Board struct {
	Columns   []Column `json:"columns"`
	Conflicts int      `json:"conflicts"`
}

type TaskService struct {
	store *store.Store
	env   env
}

func NewTaskService(st *store.Store, opts ...Option) *TaskService {
	return &TaskService{store: st, env: newEnv(opts)}
}

func (s *TaskService) Create(ctx context.Context, in TaskInput) (model.Task, error) {
	in = withDefaults(in)

	var created model.Task
	_, err := s.store.Update(ctx, func(st store.State) ([]store.Command, error) {
		actor, err := currentUser(st)
		if err != nil {
			return nil, err
		}
		if err := validate(st, in, ""); err != nil { // Валидация формы
			return nil, err
		}

		now := s.env.now()
		created = model.Task{
			ID:           s.env.newID(),
			Title:        in.Title,
			Description:  in.Description,
			Status:       in.Status,
			Priority:     in.Priority,
			AssignedUser: in.AssignedUser,
			CreatedAt:    now,
			UpdatedAt:    now,
			Version:      1,
		}
		return []store.Command{
			store.AddTask(created),
			store.AddAction(s.action(model.ActionCreate, created.ID, actor.ID,
				fmt.Sprintf(`Created task "%s"`, created.Title))),
		}, nil
	})
	return created, err
}

func (s *TaskService) Get(ctx context.Context, id string) (model.Task, error) {
	t, ok := s.store.State().FindTask(id)
	if !ok {
		return t, ErrNotFound
	}
	return t, nil
}

func (s *TaskService) List(ctx context.Context, filter model.TaskFilter) []model.Task {
	st := s.store.State()
	tasks := make([]model.Task, 0, len(st.Tasks))
	for _, t := range st.Tasks {
		if filter.Match(t) {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// Board раскладывает задачи по колонкам в фиксированном порядке
func (s *TaskService) Board(ctx context.Context) Board {
	st := s.store.State()
	board := Board{Conflicts: len(st.Conflicts)}
	for _, status := range model.Columns {
		col := Column{Status: status, Tasks: []model.Task{}}
		for _, t := range st.Tasks {
			if t.Status == status {
				col.Tasks = append(col.Tasks, t)
			}
		}
		col.Count = len(col.Tasks)
		board.Columns = append(board.Columns, col)
	}
	return board
}

func (s *TaskService) Update(ctx context.Context, id string, in TaskInput) (model.Task, error) {
	in = withDefaults(in)

	var updated model.Task
	_, err := s.store.Update(ctx, func(st store.State) ([]store.Command, error) {
		actor, err := currentUser(st)
		if err != nil {
			return nil, err
		}
		task, ok := st.FindTask(id)
		if !ok {
			return nil, ErrNotFound
		}
		if err := validate(st, in, id); err != nil {
			return nil, err
		}

		updated = task
		updated.Title = in.Title
		updated.Description = in.Description
		updated.Status = in.Status
		updated.Priority = in.Priority
		updated.AssignedUser = in.AssignedUser
		s.touch(&updated)

		return []store.Command{
			store.UpdateTask(updated),
			store.AddAction(s.action(model.ActionUpdate, id, actor.ID,
				fmt.Sprintf(`Updated task "%s"`, updated.Title))),
		}, nil
	})
	return updated, err
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	_, err := s.store.Update(ctx, func(st store.State) ([]store.Command, error) {
		actor, err := currentUser(st)
		if err != nil {
			return nil, err
		}
		task, ok := st.FindTask(id)
		if !ok {
			return nil, ErrNotFound
		}
		return []store.Command{
			store.DeleteTask(id),
			store.AddAction(s.action(model.ActionDelete, id, actor.ID,
				fmt.Sprintf(`Deleted task "%s"`, task.Title))),
		}, nil
	})
	return err
}

// Move переносит задачу в другую колонку. С вероятностью probability
// создается синтетический конфликт с "удаленной" версией задачи.
func (s *TaskService) Move(ctx context.Context, id string, status model.Status) (MoveResult, error) {
	var res MoveResult
	_, err := s.store.Update(ctx, func(st store.State) ([]store.Command, error) {
		actor, err := currentUser(st)
		if err != nil {
			return nil, err
		}
		if !status.Valid() {
			return nil, invalid("Invalid status")
		}
		task, ok := st.FindTask(id)
		if !ok {
			return nil, ErrNotFound
		}
		res.Task = task
		if task.Status == status {
			return nil, nil // та же колонка - ничего не делаем
		}

		updated := task
		updated.Status = status
		s.touch(&updated)
		res.Task = updated

		move := s.action(model.ActionMove, id, actor.ID,
			fmt.Sprintf(`Moved task "%s" from %s to %s`, task.Title, task.Status, status))
		move.OldStatus = task.Status
		move.NewStatus = status

		cmds := []store.Command{store.UpdateTask(updated), store.AddAction(move)}
		if s.env.roll() < s.env.probability {
			conflict := model.ConflictData{
				TaskID:        id,
				LocalVersion:  updated,
				RemoteVersion: model.RemoteVariant(updated),
				Timestamp:     s.env.now(),
			}
			res.Conflict = &conflict
			cmds = append(cmds, store.AddConflict(conflict))
		}
		return cmds, nil
	})
	return res, err
}

// SmartAssign назначает задачу наименее загруженному пользователю
func (s *TaskService) SmartAssign(ctx context.Context, id string) (AssignResult, error) {
	var res AssignResult
	_, err := s.store.Update(ctx, func(st store.State) ([]store.Command, error) {
		actor, err := currentUser(st)
		if err != nil {
			return nil, err
		}
		task, ok := st.FindTask(id)
		if !ok {
			return nil, ErrNotFound
		}
		user, ok := LeastLoaded(st.Users, st.Tasks)
		if !ok {
			return nil, invalid("No users to assign")
		}

		updated := task
		updated.AssignedUser = user.ID
		s.touch(&updated)
		res = AssignResult{Task: updated, User: user}

		return []store.Command{
			store.UpdateTask(updated),
			store.AddAction(s.action(model.ActionAssign, id, actor.ID,
				fmt.Sprintf(`Smart assigned task "%s" to %s`, task.Title, user.Username))),
		}, nil
	})
	return res, err
}

// LeastLoaded выбирает пользователя с наименьшим числом незавершенных задач.
// При равенстве побеждает тот, кто раньше в списке.
func LeastLoaded(users []model.User, tasks []model.Task) (model.User, bool) {
	if len(users) == 0 {
		return model.User{}, false
	}

	open := make(map[string]int, len(users))
	for _, t := range tasks {
		if t.Status != model.StatusDone {
			open[t.AssignedUser]++
		}
	}

	best := users[0]
	for _, u := range users[1:] {
		if open[u.ID] < open[best.ID] {
			best = u
		}
	}
	return best, true
}

func (s *TaskService) touch(t *model.Task) {
	t.UpdatedAt = s.env.now()
	t.Version++
}

func (s *TaskService) action(typ model.ActionType, taskID, userID, details string) model.Action {
	return model.Action{
		ID:        s.env.newID(),
		Type:      typ,
		TaskID:    taskID,
		UserID:    userID,
		Timestamp: s.env.now(),
		Details:   details,
	}
}

func withDefaults(in TaskInput) TaskInput {
	if in.Status == "" {
		in.Status = model.StatusTodo
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	return in
}

// validate собирает все ошибки формы. excludeID - редактируемая задача.
func validate(st store.State, in TaskInput, excludeID string) error {
	var problems []string

	if strings.TrimSpace(in.Title) == "" {
		problems = append(problems, "Title is required")
	}
	for _, t := range st.Tasks {
		if t.ID != excludeID && strings.EqualFold(t.Title, in.Title) {
			problems = append(problems, "Task title must be unique")
			break
		}
	}
	if model.IsColumnName(in.Title) {
		problems = append(problems, "Task title cannot match column names")
	}
	if in.AssignedUser == "" {
		problems = append(problems, "Please assign the task to a user")
	} else if _, ok := model.FindUser(st.Users, in.AssignedUser); !ok {
		problems = append(problems, "Assigned user does not exist")
	}
	if !in.Status.Valid() {
		problems = append(problems, "Invalid status")
	}
	if !in.Priority.Valid() {
		problems = append(problems, "Invalid priority")
	}

	if len(problems) > 0 {
		return invalid(problems...)
	}
	return nil
}
