package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tabletop-companion/internal/api/request"
	"github.com/mcoot/tabletop-companion/internal/api/response"
	"github.com/mcoot/tabletop-companion/internal/model"
	"github.com/mcoot/tabletop-companion/internal/services/profile"
)

// ProfileHandler handles player profile endpoints
type ProfileHandler struct {
	profiles *profile.Service
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles *profile.Service) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// List handles GET /api/v1/profiles?q=
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ProfilesFromModel(profiles))
}

// Create handles POST /api/v1/profiles
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	p, err := h.profiles.Create(r.Context(), req.Name, req.Color)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.ProfileFromModel(p))
}

// Get handles GET /api/v1/profiles/{id}
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context(), model.ProfileID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ProfileFromModel(p))
}

// Update handles PATCH /api/v1/profiles/{id}
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateProfileRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	p, err := h.profiles.Update(r.Context(), model.ProfileID(mux.Vars(r)["id"]), req)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ProfileFromModel(p))
}

// Delete handles DELETE /api/v1/profiles/{id}
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.Delete(r.Context(), model.ProfileID(mux.Vars(r)["id"])); err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}
