package server

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/salesconsole/internal/domain"
	kafkapkg "github.com/vladislavdragonenkov/salesconsole/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/salesconsole/internal/metrics"
)

// EventPublisher публикует события жизненного цикла заказов.
// Реализация опциональна: без брокера сервер работает молча.
type EventPublisher interface {
	PublishOrderEvent(event kafkapkg.SalesOrderEvent) error
}

// Server — HTTP API консоли продаж: заказы, справочники и аутентификация.
type Server struct {
	orders  domain.SalesOrderRepository
	users   domain.UserRepository
	catalog domain.CatalogRepository
	tokens  *TokenIssuer
	events  EventPublisher
	metrics *metrics.APIMetrics
	logger  *log.Entry
}

// Options — зависимости сервера. Orders, Users, Catalog и Tokens обязательны,
// Events и Metrics могут быть nil.
type Options struct {
	Orders  domain.SalesOrderRepository
	Users   domain.UserRepository
	Catalog domain.CatalogRepository
	Tokens  *TokenIssuer
	Events  EventPublisher
	Metrics *metrics.APIMetrics
	Logger  *log.Logger
}

// New создаёт сервер с заданными зависимостями.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}

	return &Server{
		orders:  opts.Orders,
		users:   opts.Users,
		catalog: opts.Catalog,
		tokens:  opts.Tokens,
		events:  opts.Events,
		metrics: opts.Metrics,
		logger:  logger.WithField("component", "api-server"),
	}
}

// Handler собирает маршруты API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/signup", s.withMetrics("/auth/signup", s.handleSignup))
	mux.HandleFunc("POST /auth/signin", s.withMetrics("/auth/signin", s.handleSignin))
	mux.HandleFunc("POST /auth/logout", s.withMetrics("/auth/logout", s.handleLogout))

	mux.HandleFunc("GET /sales", s.withMetrics("/sales", s.requireAuth(s.handleListSales)))
	mux.HandleFunc("POST /sales", s.withMetrics("/sales", s.requireAuth(s.handleCreateSale)))
	mux.HandleFunc("PUT /sales/{id}", s.withMetrics("/sales/{id}", s.requireAuth(s.handleUpdateSale)))
	mux.HandleFunc("DELETE /sales/{id}", s.withMetrics("/sales/{id}", s.requireAuth(s.handleDeleteSale)))

	mux.HandleFunc("GET /users", s.withMetrics("/users", s.requireAuth(s.handleListUsers)))
	mux.HandleFunc("GET /customers", s.withMetrics("/customers", s.requireAuth(s.handleListCustomers)))
	mux.HandleFunc("GET /products", s.withMetrics("/products", s.requireAuth(s.handleListProducts)))

	return mux
}

// writeJSON сериализует тело ответа с заданным статусом.
func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("failed to encode response body")
	}
}

// writeError отдаёт ошибку в форме {message, status}, которую ожидает консоль.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"message": message,
		"status":  status,
	})
}
