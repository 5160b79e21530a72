package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/kanban-board/internal/model"
	"github.com/BuzzLyutic/kanban-board/internal/service"
	"github.com/BuzzLyutic/kanban-board/pkg/respond"
)

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
	now     func() time.Time
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
		now:     time.Now,
	}
}

func (h *TaskHandler) Board(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, h.service.Board(r.Context()))
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.TaskInput
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	task, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/tasks/"+task.ID)
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter model.TaskFilter
	if status := r.URL.Query().Get("status"); status != "" {
		s := model.Status(status)
		if !s.Valid() {
			respond.ValidationError(w, r, []string{"Invalid status"})
			return
		}
		filter.Status = &s
	}
	respond.JSON(w, r, http.StatusOK, h.service.List(r.Context(), filter))
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.TaskInput
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	task, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.Status `json:"status"`
	}
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	res, err := h.service.Move(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	if res.Conflict != nil {
		h.logger.Info("conflict raised", zap.String("task_id", res.Conflict.TaskID))
	}
	respond.JSON(w, r, http.StatusOK, res)
}

func (h *TaskHandler) SmartAssign(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.SmartAssign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, res)
}

type activityEntry struct {
	model.Action
	Ago string `json:"ago"`
}

func (h *TaskHandler) Activity(w http.ResponseWriter, r *http.Request) {
	var filter model.ActionFilter
	if typ := r.URL.Query().Get("type"); typ != "" && typ != "all" {
		t := model.ActionType(typ)
		if !t.Valid() {
			respond.ValidationError(w, r, []string{"Invalid action type"})
			return
		}
		filter.Type = &t
	}

	now := h.now()
	actions := h.service.Activity(r.Context(), filter)
	entries := make([]activityEntry, 0, len(actions))
	for _, a := range actions {
		entries = append(entries, activityEntry{Action: a, Ago: a.TimeAgo(now)})
	}
	respond.JSON(w, r, http.StatusOK, entries)
}

func (h *TaskHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, h.service.Conflicts(r.Context()))
}

func (h *TaskHandler) CurrentConflict(w http.ResponseWriter, r *http.Request) {
	conflict, err := h.service.CurrentConflict(r.Context())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, conflict)
}

func (h *TaskHandler) ResolveConflict(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Resolution model.Resolution `json:"resolution"`
	}
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	task, err := h.service.ResolveConflict(r.Context(), chi.URLParam(r, "taskId"), req.Resolution)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

// decodeJSON читает тело запроса. Пустое тело и битый json дают 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, logger *zap.Logger, dst interface{}) bool {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			respond.Error(w, r, http.StatusBadRequest, "empty request body")
			return false
		}
		logger.Error("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return false
	}
	return true
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	handleErrors(w, r, h.logger, err)
}

func handleErrors(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respond.ValidationError(w, r, verr.Problems)
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, "validation error")
	case errors.Is(err, service.ErrUnauthenticated):
		respond.Error(w, r, http.StatusUnauthorized, "not signed in")
	case errors.Is(err, service.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	default:
		logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
