package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error — нормализованная ошибка транспорта: сообщение сервера плюс HTTP-статус.
// Ядро различает только Forbidden (403) и всё остальное.
type Error struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsForbidden сообщает, означает ли ошибка недействительную сессию (403).
func IsForbidden(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusForbidden
	}
	return false
}

// StatusOf возвращает HTTP-статус ошибки или 0, если это не ошибка API.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
