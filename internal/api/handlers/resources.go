package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/athebyme/gomarket-platform/admin-console/internal/apiclient"
	"github.com/athebyme/gomarket-platform/admin-console/pkg/interfaces"
	"github.com/athebyme/gomarket-platform/admin-console/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// allowedResources - ресурсы внутреннего API, доступные через консоль
var allowedResources = map[string]bool{
	"products":      true,
	"categories":    true,
	"collections":   true,
	"product-types": true,
	"customers":     true,
	"orders":        true,
	"merchants":     true,
	"brands":        true,
}

// ResourceHandler проксирует CRUD-операции над ресурсами внутреннего API
type ResourceHandler struct {
	client *apiclient.Client
	logger interfaces.LoggerPort
}

// NewResourceHandler создает новый обработчик ресурсов
func NewResourceHandler(client *apiclient.Client, logger interfaces.LoggerPort) *ResourceHandler {
	return &ResourceHandler{
		client: client,
		logger: logger,
	}
}

// resource извлекает имя ресурса из URL и проверяет его по списку разрешенных
func (h *ResourceHandler) resource(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := chi.URLParam(r, "resource")
	if !allowedResources[name] {
		renderError(w, r, http.StatusNotFound, "not_found", "Неизвестный ресурс: "+name)
		return "", false
	}
	return name, true
}

// List обрабатывает запрос на получение страницы ресурсов
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	name, ok := h.resource(w, r)
	if !ok {
		return
	}

	// Нумерация страниц начинается с нуля, как во внутреннем API
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 0 {
		page = 0
	}

	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || size < 1 || size > 100 {
		size = 20
	}

	sortBy := r.URL.Query().Get("sort_by")
	sortDesc := r.URL.Query().Get("sort_order") == "desc"
	pagination := utils.NewPagination(page, size, sortBy, sortDesc)

	filters := make(map[string]string)
	for key, values := range r.URL.Query() {
		switch key {
		case "page", "size", "sort_by", "sort_order":
			continue
		}
		if len(values) > 0 && values[0] != "" {
			filters[key] = values[0]
		}
	}

	result, err := h.client.List(r.Context(), name, apiclient.ListParams{
		Pagination: pagination,
		Filters:    filters,
	})
	if err != nil {
		renderUpstreamError(w, r, h.logger, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    result.Items,
		Meta:    pagination,
	})
}

// Get обрабатывает запрос на получение одного ресурса по ID
func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	name, ok := h.resource(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		renderError(w, r, http.StatusBadRequest, "bad_request", "ID ресурса не указан")
		return
	}

	item, err := h.client.GetOne(r.Context(), name, id)
	if err != nil {
		renderUpstreamError(w, r, h.logger, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    item,
	})
}

// Create обрабатывает запрос на создание ресурса
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	name, ok := h.resource(w, r)
	if !ok {
		return
	}

	var payload json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		renderError(w, r, http.StatusBadRequest, "bad_request", "Некорректное тело запроса")
		return
	}

	item, err := h.client.Create(r.Context(), name, payload)
	if err != nil {
		renderUpstreamError(w, r, h.logger, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response{
		Success: true,
		Data:    item,
	})
}

// Update обрабатывает запрос на обновление ресурса
func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	name, ok := h.resource(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		renderError(w, r, http.StatusBadRequest, "bad_request", "ID ресурса не указан")
		return
	}

	var payload json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		renderError(w, r, http.StatusBadRequest, "bad_request", "Некорректное тело запроса")
		return
	}

	item, err := h.client.Update(r.Context(), name, id, payload)
	if err != nil {
		renderUpstreamError(w, r, h.logger, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    item,
	})
}

// Delete обрабатывает запрос на удаление ресурса
func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name, ok := h.resource(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		renderError(w, r, http.StatusBadRequest, "bad_request", "ID ресурса не указан")
		return
	}

	if err := h.client.Delete(r.Context(), name, id); err != nil {
		renderUpstreamError(w, r, h.logger, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: true})
}
