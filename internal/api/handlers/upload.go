package handlers

import (
	"net/http"

	"github.com/athebyme/gomarket-platform/admin-console/internal/apiclient"
	"github.com/athebyme/gomarket-platform/admin-console/pkg/interfaces"
	"github.com/go-chi/render"
)

// maxUploadSize - предел размера загружаемого изображения
const maxUploadSize = 10 << 20

// UploadHandler проксирует загрузку изображений товаров во внутренний API
type UploadHandler struct {
	client *apiclient.Client
	logger interfaces.LoggerPort
}

// NewUploadHandler создает новый обработчик загрузок
func NewUploadHandler(client *apiclient.Client, logger interfaces.LoggerPort) *UploadHandler {
	return &UploadHandler{
		client: client,
		logger: logger,
	}
}

// ProductImage обрабатывает загрузку изображения товара
func (h *UploadHandler) ProductImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "bad_request", "Файл не найден в запросе")
		return
	}
	defer file.Close()

	productID := r.FormValue("productId")

	url, err := h.client.UploadProductImage(r.Context(), header.Filename, file, productID)
	if err != nil {
		renderUpstreamError(w, r, h.logger, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    map[string]string{"url": url},
	})
}
