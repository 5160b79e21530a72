package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/kanban-board/internal/service"
	"github.com/BuzzLyutic/kanban-board/pkg/respond"
)

type UserHandler struct {
	service *service.UserService
	logger  *zap.Logger
}

func NewUserHandler(srv *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{service: srv, logger: logger}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, h.service.List(r.Context()))
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	h.logger.Info("user registered", zap.String("user_id", user.ID))
	respond.JSON(w, r, http.StatusCreated, user)
}

func (h *UserHandler) Session(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Current(r.Context())
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Login string `json:"login"`
	}
	if !decodeJSON(w, r, h.logger, &req) {
		return
	}

	user, err := h.service.Login(r.Context(), req.Login)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
