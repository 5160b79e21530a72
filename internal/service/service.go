package service

import (
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/kanban-board/internal/model"
	"github.com/BuzzLyutic/kanban-board/internal/store"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("not signed in")
)

// ValidationError содержит все сообщения формы сразу
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation error: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(problems ...string) error {
	return &ValidationError{Problems: problems}
}

// DefaultConflictProbability - шанс синтетического конфликта при перемещении
const DefaultConflictProbability = 0.1

type env struct {
	now         func() time.Time
	newID       func() string
	roll        func() float64
	probability float64
}

type Option func(*env)

func WithClock(now func() time.Time) Option {
	return func(e *env) { e.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(e *env) { e.newID = newID }
}

// WithRoll подменяет генератор случайных чисел в [0, 1)
func WithRoll(roll func() float64) Option {
	return func(e *env) { e.roll = roll }
}

func WithConflictProbability(p float64) Option {
	return func(e *env) { e.probability = p }
}

func newEnv(opts []Option) env {
	e := env{
		now:         time.Now,
		newID:       uuid.NewString,
		roll:        rand.Float64,
		probability: DefaultConflictProbability,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func currentUser(st store.State) (model.User, error) {
	if st.CurrentUser == nil {
		return model.User{}, ErrUnauthenticated
	}
	return *st.CurrentUser, nil
}
