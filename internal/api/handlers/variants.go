package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/athebyme/gomarket-platform/admin-console/internal/domain/models"
	"github.com/athebyme/gomarket-platform/admin-console/internal/domain/services"
	"github.com/athebyme/gomarket-platform/admin-console/pkg/interfaces"
	"github.com/go-chi/render"
)

// VariantHandler обработчик генерации вариантов товара
type VariantHandler struct {
	variantService *services.VariantService
	logger         interfaces.LoggerPort
}

// NewVariantHandler создает новый обработчик вариантов
func NewVariantHandler(variantService *services.VariantService, logger interfaces.LoggerPort) *VariantHandler {
	return &VariantHandler{
		variantService: variantService,
		logger:         logger,
	}
}

type generateVariantsRequest struct {
	Options []models.Option `json:"options"`
}

// Generate строит полный набор вариантов из декартова произведения опций.
// Незаполненные опции дают пустой набор, прежние варианты не сохраняются.
func (h *VariantHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateVariantsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, http.StatusBadRequest, "bad_request", "Некорректное тело запроса")
		return
	}

	variants := h.variantService.Generate(req.Options)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    variants,
		Meta:    map[string]int{"count": len(variants)},
	})
}
