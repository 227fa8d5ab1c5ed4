package handlers

import (
	"net/http"
	"strconv"

	"github.com/athebyme/gomarket-platform/admin-console/internal/adapters/storage"
	"github.com/athebyme/gomarket-platform/admin-console/internal/domain/services"
	"github.com/athebyme/gomarket-platform/admin-console/pkg/interfaces"
	"github.com/go-chi/render"
)

// ActivityHandler обработчик ленты последних действий
type ActivityHandler struct {
	activityService *services.ActivityService
	storage         *storage.PostgresStorage // архив аудита, может быть nil
	logger          interfaces.LoggerPort
}

// NewActivityHandler создает новый обработчик ленты действий
func NewActivityHandler(activityService *services.ActivityService, storage *storage.PostgresStorage, logger interfaces.LoggerPort) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		storage:         storage,
		logger:          logger,
	}
}

// Recent возвращает последние действия из ленты в памяти
func (h *ActivityHandler) Recent(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    h.activityService.Recent(),
	})
}

// Archive возвращает события аудита из архива в PostgreSQL
func (h *ActivityHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		renderError(w, r, http.StatusNotFound, "not_found", "Архив аудита не настроен")
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > 200 {
		limit = 50
	}

	events, err := h.storage.ListAuditEvents(r.Context(), limit)
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка чтения архива аудита",
			interfaces.LogField{Key: "error", Value: err.Error()})
		renderError(w, r, http.StatusInternalServerError, "internal_error", "Ошибка чтения архива аудита")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: true, Data: events})
}
