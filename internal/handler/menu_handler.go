package handler

import (
	"net/http"

	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/internal/repositories"
	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/logger"
)

// MenuHandler exposes the read-only catalog listing the storefront renders.
type MenuHandler struct {
	menuRepo repositories.MenuRepositoryInterface
	logger   *logger.Logger
}

func NewMenuHandler(menuRepo repositories.MenuRepositoryInterface, log *logger.Logger) *MenuHandler {
	return &MenuHandler{
		menuRepo: menuRepo,
		logger:   log.WithComponent("menu_handler"),
	}
}

// List handles GET /api/menu.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.menuRepo.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list menu", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, items)
}
