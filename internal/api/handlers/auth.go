package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/athebyme/gomarket-platform/admin-console/internal/apiclient"
	"github.com/athebyme/gomarket-platform/admin-console/pkg/interfaces"
	"github.com/go-chi/render"
)

// AuthHandler обработчик запросов аутентификации
type AuthHandler struct {
	client *apiclient.Client
	logger interfaces.LoggerPort
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(client *apiclient.Client, logger interfaces.LoggerPort) *AuthHandler {
	return &AuthHandler{
		client: client,
		logger: logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login обрабатывает запрос на вход в консоль
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, http.StatusBadRequest, "bad_request", "Некорректное тело запроса")
		return
	}

	if req.Email == "" || req.Password == "" {
		renderError(w, r, http.StatusBadRequest, "bad_request", "Не указаны email или пароль")
		return
	}

	if err := h.client.Login(r.Context(), req.Email, req.Password); err != nil {
		h.logger.WarnWithContext(r.Context(), "Неудачная попытка входа",
			interfaces.LogField{Key: "email", Value: req.Email})
		renderUpstreamError(w, r, h.logger, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: true})
}

// Logout обрабатывает выход из консоли
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Logout(r.Context()); err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка очистки учетных данных",
			interfaces.LogField{Key: "error", Value: err.Error()})
		renderError(w, r, http.StatusInternalServerError, "internal_error", "Ошибка завершения сессии")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{Success: true})
}

// Session возвращает профиль текущего пользователя
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	identity, err := h.client.Me(r.Context())
	if err != nil {
		renderUpstreamError(w, r, h.logger, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    identity,
	})
}
