package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cloo-solutions/dreamcourse/internal/api"
	"github.com/cloo-solutions/dreamcourse/internal/api/middleware"
	"github.com/cloo-solutions/dreamcourse/internal/service"
	"github.com/go-chi/chi/v5"
)

type SessionService interface {
	Create(ctx context.Context) (*service.SessionView, error)
	Get(ctx context.Context, id string) (*service.SessionView, error)
	SubmitProfile(ctx context.Context, id string, input service.ProfileInput) (*service.SessionView, error)
	SelectMajor(ctx context.Context, id, major string) (*service.SessionView, error)
	OpenCurriculum(ctx context.Context, id string) (*service.SessionView, error)
	Back(ctx context.Context, id, target string) (*service.SessionView, error)
	Delete(ctx context.Context, id string) error
}

type SessionHandler struct {
	svc SessionService
}

func NewSessionHandler(svc SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type ProfileRequest struct {
	Name   string `json:"name"`
	School string `json:"school"`
	Job    string `json:"job"`
	Grade  string `json:"grade"`
}

type SelectMajorRequest struct {
	Major string `json:"major"`
}

type BackRequest struct {
	To string `json:"to"`
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Create(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	w.Header().Set(middleware.SessionIDHeader, view.ID)
	api.Success(w, http.StatusCreated, view)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	view, err := h.svc.Get(r.Context(), id)
	h.respond(w, view, err)
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		api.HandleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) SubmitProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.svc.SubmitProfile(r.Context(), id, service.ProfileInput{
		Name:   req.Name,
		School: req.School,
		Job:    req.Job,
		Grade:  req.Grade,
	})
	h.respond(w, view, err)
}

func (h *SessionHandler) SelectMajor(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req SelectMajorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Major == "" {
		api.Error(w, http.StatusBadRequest, "major is required")
		return
	}

	view, err := h.svc.SelectMajor(r.Context(), id, req.Major)
	h.respond(w, view, err)
}

func (h *SessionHandler) OpenCurriculum(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	view, err := h.svc.OpenCurriculum(r.Context(), id)
	h.respond(w, view, err)
}

func (h *SessionHandler) Back(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req BackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.svc.Back(r.Context(), id, req.To)
	h.respond(w, view, err)
}

func (h *SessionHandler) respond(w http.ResponseWriter, view *service.SessionView, err error) {
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, view)
}

func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "session id is required")
		return "", false
	}
	w.Header().Set(middleware.SessionIDHeader, id)
	return id, true
}
