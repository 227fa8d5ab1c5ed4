package handlers

import (
	"net/http"
	"strconv"

	"github.com/athebyme/gomarket-platform/admin-console/internal/adapters/storage"
	"github.com/athebyme/gomarket-platform/admin-console/internal/domain/models"
	"github.com/athebyme/gomarket-platform/admin-console/internal/domain/services"
	"github.com/athebyme/gomarket-platform/admin-console/pkg/interfaces"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// AggregatorHandler обработчик операций консоли агрегатора
type AggregatorHandler struct {
	syncService *services.SyncService
	storage     *storage.PostgresStorage // журнал запусков, может быть nil
	logger      interfaces.LoggerPort
}

// NewAggregatorHandler создает новый обработчик агрегатора
func NewAggregatorHandler(syncService *services.SyncService, storage *storage.PostgresStorage, logger interfaces.LoggerPort) *AggregatorHandler {
	return &AggregatorHandler{
		syncService: syncService,
		storage:     storage,
		logger:      logger,
	}
}

// SyncAdvertisers запускает синхронизацию рекламодателей
func (h *AggregatorHandler) SyncAdvertisers(w http.ResponseWriter, r *http.Request) {
	status := h.syncService.StartAdvertiserSync(r.Context())
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, response{Success: true, Data: status})
}

// SyncOffers запускает синхронизацию метаданных офферов
func (h *AggregatorHandler) SyncOffers(w http.ResponseWriter, r *http.Request) {
	status := h.syncService.StartOfferSync(r.Context())
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, response{Success: true, Data: status})
}

// SyncProducts запускает синхронизацию товаров рекламодателя
func (h *AggregatorHandler) SyncProducts(w http.ResponseWriter, r *http.Request) {
	advertiserID := chi.URLParam(r, "id")
	if advertiserID == "" {
		renderError(w, r, http.StatusBadRequest, "bad_request", "ID рекламодателя не указан")
		return
	}

	status := h.syncService.StartProductSync(r.Context(), advertiserID)
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, response{Success: true, Data: status})
}

// CleanupDummy запускает удаление тестовых данных
func (h *AggregatorHandler) CleanupDummy(w http.ResponseWriter, r *http.Request) {
	status := h.syncService.StartDummyCleanup(r.Context())
	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, response{Success: true, Data: status})
}

// Statuses возвращает текущее состояние всех операций
func (h *AggregatorHandler) Statuses(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    h.syncService.Statuses(),
	})
}

// JobStatus возвращает состояние одной операции по ключу
func (h *AggregatorHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	status, ok := h.syncService.Status(key)
	if !ok {
		// Операция еще ни разу не запускалась
		status = models.JobStatus{}
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: true, Data: status})
}

// Advertisers возвращает страницу рекламодателей с поиском
func (h *AggregatorHandler) Advertisers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 0 {
		page = 0
	}

	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || size < 1 || size > 100 {
		size = 20
	}

	result, err := h.syncService.Advertisers(r.Context(), query, page, size)
	if err != nil {
		renderUpstreamError(w, r, h.logger, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: true, Data: result})
}

// JobHistory возвращает последние запуски операции указанного вида
func (h *AggregatorHandler) JobHistory(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		renderError(w, r, http.StatusNotFound, "not_found", "Журнал запусков не настроен")
		return
	}

	kind := models.JobKind(chi.URLParam(r, "kind"))
	switch kind {
	case models.JobAdvertiserSync, models.JobOfferSync, models.JobProductSync, models.JobDummyCleanup:
	default:
		renderError(w, r, http.StatusBadRequest, "bad_request", "Неизвестный вид операции: "+string(kind))
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}

	records, err := h.storage.ListJobRecords(r.Context(), kind, limit)
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка чтения журнала запусков",
			interfaces.LogField{Key: "error", Value: err.Error()})
		renderError(w, r, http.StatusInternalServerError, "internal_error", "Ошибка чтения журнала запусков")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: true, Data: records})
}
