package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/kanban-board/internal/model"
	"github.com/BuzzLyutic/kanban-board/internal/store"
)

func setupUserService(t *testing.T) (*UserService, *store.Store) {
	t.Helper()
	st := store.New(store.State{Users: model.DemoUsers()}, nil, zap.NewNop())
	env := &fakeEnv{now: t0}
	return NewUserService(st, env.options(1)...), st
}

func TestUserService_Login(t *testing.T) {
	tests := []struct {
		name    string
		login   string
		wantID  string
		wantErr error
	}{
		{name: "by username", login: "Alice", wantID: "1"},
		{name: "case insensitive", login: "bob", wantID: "2"},
		{name: "by email", login: "CHARLIE@example.com", wantID: "3"},
		{name: "by id", login: "2", wantID: "2"},
		{name: "unknown user", login: "mallory", wantErr: ErrNotFound},
		{name: "blank", login: "  ", wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, st := setupUserService(t)

			user, err := svc.Login(context.Background(), tt.login)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, st.State().IsAuthenticated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, user.ID)
			assert.True(t, st.State().IsAuthenticated)

			current, err := svc.Current(context.Background())
			require.NoError(t, err)
			assert.Equal(t, user, current)
		})
	}
}

func TestUserService_Logout(t *testing.T) {
	svc, st := setupUserService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "Alice")
	require.NoError(t, err)

	svc.Logout(ctx)
	assert.False(t, st.State().IsAuthenticated)
	_, err = svc.Current(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("registers and signs in", func(t *testing.T) {
		svc, st := setupUserService(t)

		user, err := svc.Register(ctx, RegisterInput{Username: " Dana ", Email: "dana@example.com"})
		require.NoError(t, err)

		assert.Equal(t, "Dana", user.Username)
		assert.Equal(t, model.Palette[0], user.Color)
		assert.NotEmpty(t, user.ID)

		state := st.State()
		assert.Len(t, state.Users, 4)
		require.NotNil(t, state.CurrentUser)
		assert.Equal(t, user.ID, state.CurrentUser.ID)
	})

	t.Run("validation", func(t *testing.T) {
		svc, st := setupUserService(t)

		_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "Bob@Example.com"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"Username is already taken", "Email is already registered"}, verr.Problems)

		_, err = svc.Register(ctx, RegisterInput{Email: "not-an-email"})
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"Username is required", "Email is invalid"}, verr.Problems)

		assert.Len(t, st.State().Users, 3)
	})
}
