package store

import (
	"slices"

	"github.com/BuzzLyutic/kanban-board/internal/model"
)

// State - все состояние доски
type State struct {
	CurrentUser     *model.User          `json:"currentUser"`
	Users           []model.User         `json:"users"`
	Tasks           []model.Task         `json:"tasks"`
	Actions         []model.Action       `json:"actions"`
	Conflicts       []model.ConflictData `json:"conflicts"`
	IsAuthenticated bool                 `json:"isAuthenticated"`
	IsLoading       bool                 `json:"isLoading"`
}

func (s State) FindTask(id string) (model.Task, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

type Kind string

const (
	KindSetCurrentUser  Kind = "SET_CURRENT_USER"
	KindLogout          Kind = "LOGOUT"
	KindSetUsers        Kind = "SET_USERS"
	KindAddTask         Kind = "ADD_TASK"
	KindUpdateTask      Kind = "UPDATE_TASK"
	KindDeleteTask      Kind = "DELETE_TASK"
	KindSetTasks        Kind = "SET_TASKS"
	KindAddAction       Kind = "ADD_ACTION"
	KindSetActions      Kind = "SET_ACTIONS"
	KindAddConflict     Kind = "ADD_CONFLICT"
	KindResolveConflict Kind = "RESOLVE_CONFLICT"
	KindSetLoading      Kind = "SET_LOADING"
)

// Command - именованный переход с полезной нагрузкой.
// Заполняется только поле, которое нужно конкретному Kind.
type Command struct {
	Kind     Kind
	User     *model.User
	Users    []model.User
	Task     *model.Task
	TaskID   string
	Tasks    []model.Task
	Action   *model.Action
	Actions  []model.Action
	Conflict *model.ConflictData
	Loading  bool
}

func SetCurrentUser(u model.User) Command { return Command{Kind: KindSetCurrentUser, User: &u} }
func Logout() Command { return Command{Kind: KindLogout} }
func SetUsers(us []model.User) Command { return Command{Kind: KindSetUsers, Users: us} }
func AddTask(t model.Task) Command { return Command{Kind: KindAddTask, Task: &t} }
func UpdateTask(t model.Task) Command { return Command{Kind: KindUpdateTask, Task: &t} }
func DeleteTask(id string) Command { return Command{Kind: KindDeleteTask, TaskID: id} }
func SetTasks(ts []model.Task) Command { return Command{Kind: KindSetTasks, Tasks: ts} }
func AddAction(a model.Action) Command { return Command{Kind: KindAddAction, Action: &a} }
func SetActions(as []model.Action) Command {
	return Command{Kind: KindSetActions, Actions: as}
}
func AddConflict(c model.ConflictData) Command {
	return Command{Kind: KindAddConflict, Conflict: &c}
}
func ResolveConflict(taskID string) Command {
	return Command{Kind: KindResolveConflict, TaskID: taskID}
}
func SetLoading(v bool) Command { return Command{Kind: KindSetLoading, Loading: v} }

// Reduce - чистая функция перехода. Срезы входного состояния не изменяются,
// неизвестный Kind возвращает состояние как есть.
func Reduce(s State, c Command) State {
	switch c.Kind {
	case KindSetCurrentUser:
		if c.User == nil {
			return s
		}
		u := *c.User
		s.CurrentUser = &u
		s.IsAuthenticated = true
	case KindLogout:
		s.CurrentUser = nil
		s.IsAuthenticated = false
	case KindSetUsers:
		s.Users = slices.Clone(c.Users)
	case KindAddTask:
		if c.Task == nil {
			return s
		}
		tasks := make([]model.Task, 0, len(s.Tasks)+1)
		s.Tasks = append(append(tasks, s.Tasks...), *c.Task)
	case KindUpdateTask:
		if c.Task == nil {
			return s
		}
		tasks := slices.Clone(s.Tasks)
		for i := range tasks {
			if tasks[i].ID == c.Task.ID {
				tasks[i] = *c.Task
			}
		}
		s.Tasks = tasks
	case KindDeleteTask:
		tasks := make([]model.Task, 0, len(s.Tasks))
		for _, t := range s.Tasks {
			if t.ID != c.TaskID {
				tasks = append(tasks, t)
			}
		}
		s.Tasks = tasks
	case KindSetTasks:
		s.Tasks = slices.Clone(c.Tasks)
	case KindAddAction:
		if c.Action == nil {
			return s
		}
		n := min(len(s.Actions)+1, model.MaxActions)
		actions := make([]model.Action, 0, n)
		actions = append(actions, *c.Action)
		actions = append(actions, s.Actions[:n-1]...)
		s.Actions = actions
	case KindSetActions:
		s.Actions = slices.Clone(c.Actions)
	case KindAddConflict:
		if c.Conflict == nil {
			return s
		}
		conflicts := make([]model.ConflictData, 0, len(s.Conflicts)+1)
		s.Conflicts = append(append(conflicts, s.Conflicts...), *c.Conflict)
	case KindResolveConflict:
		conflicts := make([]model.ConflictData, 0, len(s.Conflicts))
		for _, cd := range s.Conflicts {
			if cd.TaskID != c.TaskID {
				conflicts = append(conflicts, cd)
			}
		}
		s.Conflicts = conflicts
	case KindSetLoading:
		s.IsLoading = c.Loading
	}
	return s
}
