package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/tabletop-companion/internal/api/response"
	"github.com/mcoot/tabletop-companion/internal/model"
	"github.com/mcoot/tabletop-companion/internal/services/catalog"
)

// CatalogHandler serves the read-only game catalog
type CatalogHandler struct {
	catalog *catalog.Service
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// List handles GET /api/v1/games?q=
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	games := h.catalog.Search(r.URL.Query().Get("q"))
	response.JSON(w, http.StatusOK, response.GameListingsFromModel(games))
}

// Get handles GET /api/v1/games/{id}
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	game, err := h.catalog.Get(model.GameID(mux.Vars(r)["id"]))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, game)
}
