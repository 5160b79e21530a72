package model

import (
	"fmt"
	"time"
)

type ActionType string

const (
	ActionCreate ActionType = "create"
	ActionUpdate ActionType = "update"
	ActionDelete ActionType = "delete"
	ActionAssign ActionType = "assign"
	ActionMove   ActionType = "move"
)

func (t ActionType) Valid() bool {
	switch t {
	case ActionCreate, ActionUpdate, ActionDelete, ActionAssign, ActionMove:
		return true
	}
	return false
}

// MaxActions - сколько записей хранит журнал активности
const MaxActions = 20

// Action - запись журнала активности
type Action struct {
	ID        string     `json:"id"`
	Type      ActionType `json:"type"`
	TaskID    string     `json:"taskId"`
	UserID    string     `json:"userId"`
	Timestamp time.Time  `json:"timestamp"`
	Details   string     `json:"details"`
	OldStatus Status     `json:"oldStatus,omitempty"`
	NewStatus Status     `json:"newStatus,omitempty"`
}

// TimeAgo форматирует возраст записи относительно now
func (a Action) TimeAgo(now time.Time) string {
	diff := now.Sub(a.Timestamp)
	switch {
	case diff >= 24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff/(24*time.Hour)))
	case diff >= time.Hour:
		return fmt.Sprintf("%dh ago", int(diff/time.Hour))
	case diff >= time.Minute:
		return fmt.Sprintf("%dm ago", int(diff/time.Minute))
	}
	return "Just now"
}

type ActionFilter struct {
	Type *ActionType
}

func (f ActionFilter) Match(a Action) bool {
	return f.Type == nil || a.Type == *f.Type
}
