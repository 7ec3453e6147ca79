package server

import (
	"context"
	"net/http"
	"strings"
	"time"
)

type ctxKey int

const ctxKeyUserID ctxKey = iota

// userIDFrom возвращает id аутентифицированного пользователя из контекста запроса.
func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyUserID).(string)
	return id
}

// requireAuth проверяет bearer-токен и кладёт id пользователя в контекст.
// Любая проблема с токеном — 403 с телом {message, status}: именно эту
// форму консоль использует как сигнал к сбросу сессии.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			s.writeError(w, http.StatusForbidden, "authorization required")
			return
		}

		userID, err := s.tokens.Verify(raw)
		if err != nil {
			s.logger.WithError(err).Debug("rejected bearer token")
			s.writeError(w, http.StatusForbidden, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUserID, userID)
		next(w, r.WithContext(ctx))
	}
}

// statusRecorder запоминает код ответа для метрик.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withMetrics записывает счётчик и длительность каждого запроса.
// route — шаблон маршрута, а не конкретный путь, чтобы не раздувать кардинальность.
func (s *Server) withMetrics(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		s.metrics.RecordRequest(r.Method, route, rec.status, time.Since(start))
	}
}
