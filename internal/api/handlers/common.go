package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/athebyme/gomarket-platform/admin-console/internal/apiclient"
	"github.com/athebyme/gomarket-platform/admin-console/pkg/errors"
	"github.com/athebyme/gomarket-platform/admin-console/pkg/interfaces"
	"github.com/go-chi/render"
)

// errorResponse представляет структуру ответа с ошибкой
type errorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// response представляет структуру успешного ответа
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// renderError отправляет ответ с ошибкой и указанным статусом
func renderError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{
		Error:   code,
		Code:    status,
		Message: message,
	})
}

// renderUpstreamError транслирует ошибку внутреннего API в ответ консоли.
// Статусы внутреннего API передаются как есть, транспортные сбои
// превращаются в 502, потеря сессии в 401.
func renderUpstreamError(w http.ResponseWriter, r *http.Request, logger interfaces.LoggerPort, err error) {
	if stderrors.Is(err, errors.ErrNoCredentials) || stderrors.Is(err, errors.ErrSessionInvalid) {
		renderError(w, r, http.StatusUnauthorized, "unauthorized", "Сессия недействительна, требуется повторный вход")
		return
	}

	var apiErr *apiclient.APIError
	if stderrors.As(err, &apiErr) {
		if apiErr.Status == 0 {
			renderError(w, r, http.StatusBadGateway, "bad_gateway", apiErr.Message)
			return
		}
		renderError(w, r, apiErr.Status, "upstream_error", apiErr.Message)
		return
	}

	logger.ErrorWithContext(r.Context(), "Необработанная ошибка запроса к внутреннему API",
		interfaces.LogField{Key: "error", Value: err.Error()})
	renderError(w, r, http.StatusInternalServerError, "internal_error", "Внутренняя ошибка сервера")
}
