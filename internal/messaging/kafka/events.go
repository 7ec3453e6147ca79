package kafka

import "time"

// EventType определяет тип события заказа.
type EventType string

const (
	EventTypeOrderCreated EventType = "sales.order.created"
	EventTypeOrderUpdated EventType = "sales.order.updated"
	EventTypeOrderDeleted EventType = "sales.order.deleted"
)

// TopicSalesEvents — topic для событий заказов на продажу.
const TopicSalesEvents = "sales.order.events"

// SalesOrderEvent представляет событие жизненного цикла заказа.
type SalesOrderEvent struct {
	EventType    EventType `json:"event_type"`
	OrderID      string    `json:"order_id"`
	CustomerID   string    `json:"customer_id,omitempty"`
	Status       string    `json:"status,omitempty"`
	RegisteredBy *string   `json:"registered_by,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewSalesOrderEvent создаёт событие заказа с текущим временем.
func NewSalesOrderEvent(eventType EventType, orderID, customerID, status string, registeredBy *string) SalesOrderEvent {
	return SalesOrderEvent{
		EventType:    eventType,
		OrderID:      orderID,
		CustomerID:   customerID,
		Status:       status,
		RegisteredBy: registeredBy,
		Timestamp:    time.Now().UTC(),
	}
}
