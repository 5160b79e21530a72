package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/BuzzLyutic/kanban-board/internal/model"
	"github.com/BuzzLyutic/kanban-board/internal/persist"
)

func TestUserHandler_Session(t *testing.T) {
	ts := setupServer(t)

	w := ts.do(t, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []model.User
	json.NewDecoder(w.Body).Decode(&users)
	assert.Len(t, users, 3)

	w = ts.do(t, http.MethodPost, "/api/session", map[string]string{"login": "nobody"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	ts.login(t, "charlie@example.com")
	w = ts.do(t, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me model.User
	json.NewDecoder(w.Body).Decode(&me)
	assert.Equal(t, "Charlie", me.Username)

	_, err := ts.kv.Get(t.Context(), persist.KeyCurrentUser)
	require.NoError(t, err)

	w = ts.do(t, http.MethodDelete, "/api/session", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	_, err = ts.kv.Get(t.Context(), persist.KeyCurrentUser)
	assert.Error(t, err, "current user must be removed from storage on logout")
}

func TestUserHandler_Register(t *testing.T) {
	ts := setupServer(t)

	w := ts.do(t, http.MethodPost, "/api/users", map[string]string{"username": "Dana", "email": "dana@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/api/users", map[string]string{"username": "dana", "email": "other@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimiter(t *testing.T) {
	limited := RateLimiter(rate.Limit(1), 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		w := httptest.NewRecorder()
		limited.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Другой клиент имеет свой бакет
	req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	w := httptest.NewRecorder()
	limited.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_EvictsIdleVisitors(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	v := newVisitors(rate.Limit(1), 1, time.Minute, func() time.Time { return now })

	v.get("10.0.0.1")
	v.get("10.0.0.2")
	assert.Equal(t, 2, v.len())

	now = now.Add(30 * time.Second)
	v.get("10.0.0.2")

	now = now.Add(40 * time.Second)
	v.get("10.0.0.3")
	// 10.0.0.1 простаивал дольше ttl, 10.0.0.2 был активен недавно
	assert.Equal(t, 2, v.len())

	now = now.Add(2 * time.Minute)
	v.get("10.0.0.4")
	assert.Equal(t, 1, v.len())
}
