package model

import "time"

type Status string

const (
	StatusTodo       Status = "Todo"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

// Columns - колонки доски в порядке отображения
var Columns = []Status{StatusTodo, StatusInProgress, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// IsColumnName - точное совпадение с названием колонки, регистр учитывается
func IsColumnName(title string) bool {
	return Status(title).Valid()
}

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Status       Status    `json:"status"`
	Priority     Priority  `json:"priority"`
	AssignedUser string    `json:"assignedUser"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Version      int       `json:"version"`
}

type TaskFilter struct {
	Status *Status
}

func (f TaskFilter) Match(t Task) bool {
	return f.Status == nil || t.Status == *f.Status
}
