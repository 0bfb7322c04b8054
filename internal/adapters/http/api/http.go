// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/okian/avatarpaint/internal/adapters/http/swagger"
	eventqueue "github.com/okian/avatarpaint/internal/adapters/mq/queue"
	"github.com/okian/avatarpaint/internal/adapters/scene"
	"github.com/okian/avatarpaint/internal/domain/model"
	"github.com/okian/avatarpaint/internal/domain/router"
	"github.com/okian/avatarpaint/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Scene mutations are submitted to the event loop; they return
	// queue.ErrFull on backpressure.
	Join(ctx context.Context, spec scene.AvatarSpec) (model.AvatarID, error)
	Leave(ctx context.Context, id model.AvatarID) error
	Enter(ctx context.Context, id model.AvatarID, handle string) error
	Exit(ctx context.Context, id model.AvatarID, handle string) error
	Click(ctx context.Context, id model.AvatarID, handle string) error
	SetVisibility(ctx context.Context, id model.AvatarID, visible bool) error

	// Read operations.
	Snapshot(ctx context.Context, id model.AvatarID) (model.Snapshot, bool)
	Avatar(id model.AvatarID) (scene.AvatarView, bool)
	Avatars() []scene.AvatarView
	Components() []router.ComponentStatus
}

// Server wires HTTP routes for the ops API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	eventsHandler *EventsHandler
	avatarHandler *AvatarHandler
	logger        logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		eventsHandler: NewEventsHandler(deps, log),
		avatarHandler: NewAvatarHandler(deps),
		logger:        log,
	}
}

// Routes returns the chi router with every endpoint registered.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware(s.logger))

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/metrics", s.healthHandler.HandleMetrics)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Get("/components", s.avatarHandler.HandleComponents)
	r.Post("/events", s.eventsHandler.HandlePostEvent)
	swagger.Register(r)

	r.Route("/avatars", func(r chi.Router) {
		r.Get("/", s.avatarHandler.HandleList)
		r.Get("/{id}/snapshot", s.avatarHandler.HandleSnapshot)
		r.Get("/{id}/materials", s.avatarHandler.HandleMaterials)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeSubmitError maps scene and queue failures to HTTP statuses. A closed
// queue or stopped service is reported as unavailable.
func writeSubmitError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, eventqueue.ErrFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", fmt.Errorf("%s: %w", op, ErrBackpressure))
	case errors.Is(err, scene.ErrUnknownAvatar):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, scene.ErrDuplicateAvatar):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, scene.ErrInvalidHandle):
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %v", op, ErrBadRequest, err))
	default:
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	}
}

func avatarParam(r *http.Request) (model.AvatarID, error) {
	id, err := model.ParseAvatarID(chi.URLParam(r, "id"))
	if err != nil {
		return model.NilAvatar, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return id, nil
}
