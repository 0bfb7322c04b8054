package api

import (
	"net/http"

	"github.com/okian/avatarpaint/internal/domain/model"
	"github.com/okian/avatarpaint/internal/domain/router"
)

// AvatarHandler serves read-only scene, cache and component state.
type AvatarHandler struct {
	deps Dependencies
}

// NewAvatarHandler creates a new avatar handler.
func NewAvatarHandler(deps Dependencies) *AvatarHandler {
	return &AvatarHandler{deps: deps}
}

type snapshotMaterial struct {
	Tint     string      `json:"tint"`
	Color    model.Color `json:"color"`
	Emissive float64     `json:"emissive"`
}

type snapshotResponse struct {
	Avatar    string             `json:"avatar"`
	Materials []snapshotMaterial `json:"materials"`
}

// HandleSnapshot handles GET /avatars/{id}/snapshot.
func (h *AvatarHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := avatarParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	snap, ok := h.deps.Snapshot(r.Context(), id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", ErrNotFound)
		return
	}
	resp := snapshotResponse{Avatar: id.String(), Materials: make([]snapshotMaterial, 0, snap.Len())}
	for _, p := range snap.Props() {
		resp.Materials = append(resp.Materials, snapshotMaterial{Tint: p.Tint.Hex(), Color: p.Tint, Emissive: p.EmissiveIntensity})
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleMaterials handles GET /avatars/{id}/materials.
func (h *AvatarHandler) HandleMaterials(w http.ResponseWriter, r *http.Request) {
	id, err := avatarParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	view, ok := h.deps.Avatar(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleList handles GET /avatars.
func (h *AvatarHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Avatars())
}

// HandleComponents handles GET /components.
func (h *AvatarHandler) HandleComponents(w http.ResponseWriter, _ *http.Request) {
	comps := h.deps.Components()
	if comps == nil {
		comps = []router.ComponentStatus{}
	}
	writeJSON(w, http.StatusOK, comps)
}
