package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/salesconsole/internal/domain"
	kafkapkg "github.com/vladislavdragonenkov/salesconsole/internal/messaging/kafka"
)

// handleListSales отдаёт страницу заказов: {count, rows}.
// page нумеруется с единицы, отсутствующие фильтры не применяются.
func (s *Server) handleListSales(w http.ResponseWriter, r *http.Request) {
	q := domain.ListQuery{Page: 1}

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			s.writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		q.Page = page
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.Status(raw)
		if !status.Valid() {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", raw))
			return
		}
		q.Status = &status
	}

	if raw := r.URL.Query().Get("userId"); raw != "" {
		q.AssigneeID = &raw
	}

	page, err := s.orders.List(q)
	if err != nil {
		s.logger.WithError(err).Error("failed to list sales orders")
		s.writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	s.writeJSON(w, http.StatusOK, page)
}

// handleCreateSale создаёт заказ из данных формы. Сумма считается по цене
// товара, а при isRegistered заказ регистрируется на создающего пользователя.
func (s *Server) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	var req domain.NewSale
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := req.ValidateInvariants(); len(errs) > 0 {
		s.writeError(w, http.StatusBadRequest, joinErrors(errs))
		return
	}

	if _, err := s.catalog.GetCustomer(req.CustomerID); err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			s.writeError(w, http.StatusBadRequest, "unknown customer")
			return
		}
		s.logger.WithError(err).Error("failed to load customer")
		s.writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	product, err := s.catalog.GetProduct(req.ProductID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			s.writeError(w, http.StatusBadRequest, "unknown product")
			return
		}
		s.logger.WithError(err).Error("failed to load product")
		s.writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	now := time.Now().UTC()
	order := domain.SalesOrder{
		ID:         uuid.New().String(),
		CustomerID: req.CustomerID,
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		TotalPrice: product.Price * float64(req.Quantity),
		Reference:  newOrderReference(),
		Status:     req.Status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.IsRegistered {
		creator := userIDFrom(r.Context())
		order.RegisteredBy = &creator
	}
	applyStageDates(&order, "", now)

	if err := s.orders.Create(order); err != nil {
		s.logger.WithError(err).Error("failed to create sales order")
		s.writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	s.publishEvent(kafkapkg.EventTypeOrderCreated, order)
	s.logger.WithField("order_id", order.ID).Info("sales order created")
	s.writeJSON(w, http.StatusCreated, order)
}

type updateSaleRequest struct {
	Status       domain.Status `json:"status"`
	RegisteredBy *string       `json:"registeredBy"`
}

// handleUpdateSale меняет статус и назначенного пользователя заказа.
// Явный null в registeredBy снимает назначение. Ограничений по текущему
// статусу нет: обновлять можно и отгруженный заказ.
func (s *Server) handleUpdateSale(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Status.Valid() {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", req.Status))
		return
	}

	order, err := s.orders.Get(id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			s.writeError(w, http.StatusNotFound, "sales order not found")
			return
		}
		s.logger.WithError(err).Error("failed to load sales order")
		s.writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	if req.RegisteredBy != nil {
		if _, err := s.users.Get(*req.RegisteredBy); err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				s.writeError(w, http.StatusBadRequest, "unknown user")
				return
			}
			s.logger.WithError(err).Error("failed to load user")
			s.writeError(w, http.StatusInternalServerError, "something went wrong")
			return
		}
	}

	previous := order.Status
	now := time.Now().UTC()
	order.Status = req.Status
	order.RegisteredBy = req.RegisteredBy
	order.UpdatedAt = now
	applyStageDates(&order, previous, now)

	if err := s.orders.Update(order); err != nil {
		s.logger.WithError(err).Error("failed to update sales order")
		s.writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	s.publishEvent(kafkapkg.EventTypeOrderUpdated, order)
	s.logger.WithFields(map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	}).Info("sales order updated")
	s.writeJSON(w, http.StatusOK, order)
}

// handleDeleteSale удаляет заказ. Отгруженный заказ удалить нельзя.
func (s *Server) handleDeleteSale(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	order, err := s.orders.Get(id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			s.writeError(w, http.StatusNotFound, "sales order not found")
			return
		}
		s.logger.WithError(err).Error("failed to load sales order")
		s.writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	if order.Status == domain.StatusShipped {
		s.writeError(w, http.StatusBadRequest, "cannot delete a shipped order")
		return
	}

	if err := s.orders.Delete(id); err != nil {
		s.logger.WithError(err).Error("failed to delete sales order")
		s.writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	s.publishEvent(kafkapkg.EventTypeOrderDeleted, order)
	s.logger.WithField("order_id", id).Info("sales order deleted")
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// applyStageDates выставляет дату отгрузки или отклонения при входе в
// соответствующий статус. Даты ставит только сервер.
func applyStageDates(order *domain.SalesOrder, previous domain.Status, now time.Time) {
	if order.Status == domain.StatusShipped && previous != domain.StatusShipped && order.ShippedDate == nil {
		order.ShippedDate = &now
	}
	if order.Status == domain.StatusRejected && previous != domain.StatusRejected && order.RejectedDate == nil {
		order.RejectedDate = &now
	}
}

// publishEvent отправляет событие в брокер, если он настроен.
// Ошибка публикации не должна ломать HTTP-ответ.
func (s *Server) publishEvent(eventType kafkapkg.EventType, order domain.SalesOrder) {
	if s.events == nil {
		return
	}
	event := kafkapkg.NewSalesOrderEvent(eventType, order.ID, order.CustomerID, string(order.Status), order.RegisteredBy)
	if err := s.events.PublishOrderEvent(event); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to publish order event")
	}
}

// newOrderReference генерирует человекочитаемый номер заказа.
func newOrderReference() string {
	return "SO-" + strings.ToUpper(uuid.New().String()[:8])
}

func joinErrors(errs []error) string {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}
