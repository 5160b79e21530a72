package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/kanban-board/internal/model"
)

// MockSaver - мок сохранения состояния
type MockSaver struct {
	mock.Mock
}

func (m *MockSaver) Save(ctx context.Context, s State) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func TestStore_UpdatePersistsOnChange(t *testing.T) {
	saver := new(MockSaver)
	saver.On("Save", mock.Anything, mock.MatchedBy(func(s State) bool {
		return len(s.Tasks) == 1 && len(s.Actions) == 1
	})).Return(nil).Once()

	st := New(State{}, saver, zap.NewNop())
	next, err := st.Update(context.Background(), func(State) ([]Command, error) {
		return []Command{
			AddTask(model.Task{ID: "1"}),
			AddAction(model.Action{ID: "a1", TaskID: "1"}),
		}, nil
	})

	require.NoError(t, err)
	assert.Len(t, next.Tasks, 1)
	assert.Equal(t, next, st.State())
	saver.AssertExpectations(t)
}

func TestStore_UpdateErrorLeavesStateUntouched(t *testing.T) {
	saver := new(MockSaver)
	st := New(State{Tasks: []model.Task{{ID: "1"}}}, saver, zap.NewNop())

	boom := errors.New("boom")
	_, err := st.Update(context.Background(), func(State) ([]Command, error) {
		return nil, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Len(t, st.State().Tasks, 1)
	saver.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestStore_NoCommandsNoSave(t *testing.T) {
	saver := new(MockSaver)
	st := New(State{}, saver, zap.NewNop())

	_, err := st.Update(context.Background(), func(State) ([]Command, error) { return nil, nil })

	require.NoError(t, err)
	saver.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestStore_SaveFailureKeepsState(t *testing.T) {
	saver := new(MockSaver)
	saver.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	st := New(State{}, saver, zap.NewNop())
	next := st.Dispatch(context.Background(), AddTask(model.Task{ID: "1"}))

	assert.Len(t, next.Tasks, 1)
	assert.Len(t, st.State().Tasks, 1)
}

func TestStore_SaveIgnoresCallerCancellation(t *testing.T) {
	saver := new(MockSaver)
	saver.On("Save", mock.MatchedBy(func(ctx context.Context) bool {
		_, hasDeadline := ctx.Deadline()
		return ctx.Err() == nil && hasDeadline
	}), mock.Anything).Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st := New(State{}, saver, zap.NewNop())
	st.Dispatch(ctx, AddTask(model.Task{ID: "1"}))

	saver.AssertExpectations(t)
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	st := New(State{}, nil, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Dispatch(context.Background(), AddAction(model.Action{ID: "a"}))
		}()
	}
	wg.Wait()

	assert.Len(t, st.State().Actions, model.MaxActions)
}
