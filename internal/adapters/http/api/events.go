package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/avatarpaint/internal/adapters/scene"
	"github.com/okian/avatarpaint/internal/domain/model"
	"github.com/okian/avatarpaint/pkg/logger"
)

// Event types accepted by POST /events.
const (
	EventJoin  = "join"
	EventLeave = "leave"
	EventEnter = "enter"
	EventExit  = "exit"
	EventClick = "click"
	EventHide  = "hide"
	EventShow  = "show"
)

// EventsHandler injects host events into the scene.
type EventsHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies, log logger.Logger) *EventsHandler {
	return &EventsHandler{deps: deps, logger: log}
}

// eventRequest is the body of POST /events. For join, Handle is the avatar's
// display handle; for enter, exit and click it names the volume or button.
type eventRequest struct {
	Type      string            `json:"type"`
	Avatar    string            `json:"avatar,omitempty"`
	Handle    string            `json:"handle,omitempty"`
	Materials []materialRequest `json:"materials,omitempty"`
}

type materialRequest struct {
	Name     string  `json:"name"`
	Tint     string  `json:"tint"`
	Emissive float64 `json:"emissive"`
}

type ackResponse struct {
	Status string `json:"status"`
	Avatar string `json:"avatar,omitempty"`
}

// HandlePostEvent handles POST /events requests.
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	ctx := r.Context()

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %v", op, ErrBadRequest, err))
		return
	}
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))

	if req.Type == EventJoin {
		spec, err := req.avatarSpec()
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %v", op, ErrBadRequest, err))
			return
		}
		id, err := h.deps.Join(ctx, spec)
		if err != nil {
			writeSubmitError(w, op, err)
			return
		}
		h.logger.Debug(ctx, "avatar joined", logger.Stringer("avatar", id), logger.String("handle", spec.Handle))
		writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Avatar: id.String()})
		return
	}

	id, err := model.ParseAvatarID(req.Avatar)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %v", op, ErrBadRequest, err))
		return
	}

	switch req.Type {
	case EventLeave:
		err = h.deps.Leave(ctx, id)
	case EventEnter:
		err = h.deps.Enter(ctx, id, req.Handle)
	case EventExit:
		err = h.deps.Exit(ctx, id, req.Handle)
	case EventClick:
		err = h.deps.Click(ctx, id, req.Handle)
	case EventHide:
		err = h.deps.SetVisibility(ctx, id, false)
	case EventShow:
		err = h.deps.SetVisibility(ctx, id, true)
	default:
		err = fmt.Errorf("%w: unknown event type %q", ErrBadRequest, req.Type)
	}
	if errors.Is(err, ErrBadRequest) {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err != nil {
		writeSubmitError(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Avatar: id.String()})
}

func (e eventRequest) avatarSpec() (scene.AvatarSpec, error) {
	spec := scene.AvatarSpec{Handle: strings.TrimSpace(e.Handle)}
	if spec.Handle == "" {
		return spec, errors.New("missing handle")
	}
	if e.Avatar != "" {
		id, err := model.ParseAvatarID(e.Avatar)
		if err != nil {
			return spec, err
		}
		spec.ID = id
	}
	for i, m := range e.Materials {
		tint, err := model.ParseColor(m.Tint)
		if err != nil {
			return spec, fmt.Errorf("material %d: %w", i, err)
		}
		spec.Materials = append(spec.Materials, scene.MaterialSpec{
			Name:  m.Name,
			Props: model.MaterialProps{Tint: tint, EmissiveIntensity: m.Emissive},
		})
	}
	return spec, nil
}
