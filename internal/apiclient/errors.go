package apiclient

import (
	"encoding/json"
	"fmt"
)

// fallbackErrorMessage используется, когда ни тело ответа, ни транспорт
// не дали человекочитаемого текста ошибки
const fallbackErrorMessage = "an error occurred"

// APIError представляет ошибку внутреннего API с извлеченным сообщением
// Status равен 0 для транспортных ошибок (ответ не получен)
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("api: %s", e.Message)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// IsStatus сообщает, является ли err ошибкой API с указанным статусом
func IsStatus(err error, status int) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == status
}

// extractMessage извлекает сообщение об ошибке из тела ответа.
// Приоритет: поле message, затем поле error. Пустая строка означает,
// что тело не содержит пригодного сообщения и вызывающий должен
// использовать текст транспортной ошибки или запасную строку.
func extractMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

// newAPIError строит APIError по статусу и телу ответа
func newAPIError(status int, body []byte) *APIError {
	message := extractMessage(body)
	if message == "" {
		message = fallbackErrorMessage
	}
	return &APIError{Status: status, Message: message}
}

// newTransportError строит APIError по транспортной ошибке (ответ не получен)
func newTransportError(err error) *APIError {
	message := err.Error()
	if message == "" {
		message = fallbackErrorMessage
	}
	return &APIError{Status: 0, Message: message}
}
