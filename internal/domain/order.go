package domain

import "time"

// Status описывает стадию исполнения заказа на продажу.
type Status string

const (
	// StatusInvoiced — заказ выставлен к оплате, исполнение ещё не началось.
	StatusInvoiced Status = "invoiced"
	// StatusPacked — заказ собран и упакован на складе.
	StatusPacked Status = "packed"
	// StatusShipped — заказ передан в доставку; терминальная стадия исполнения.
	StatusShipped Status = "shipped"
	// StatusRejected — заказ отклонён; терминальная стадия вне основной цепочки.
	StatusRejected Status = "rejected"
)

// Valid сообщает, входит ли статус в объявленное перечисление.
func (s Status) Valid() bool {
	switch s {
	case StatusInvoiced, StatusPacked, StatusShipped, StatusRejected:
		return true
	}
	return false
}

// StageFlags — четыре флага стадий исполнения, используемые для отображения
// строки заказа и для блокировки действий.
type StageFlags struct {
	Invoiced bool
	Packed   bool
	Shipped  bool
	Rejected bool
}

// Project переводит статус заказа в флаги стадий. Поздние стадии включают все
// предыдущие, кроме rejected — он терминальный и взаимоисключающий.
// Неизвестный статус даёт пустые флаги, а не догадку.
func Project(s Status) StageFlags {
	switch s {
	case StatusInvoiced:
		return StageFlags{Invoiced: true}
	case StatusPacked:
		return StageFlags{Invoiced: true, Packed: true}
	case StatusShipped:
		return StageFlags{Invoiced: true, Packed: true, Shipped: true}
	case StatusRejected:
		return StageFlags{Rejected: true}
	default:
		return StageFlags{}
	}
}

// User — сотрудник, на которого может быть зарегистрирован заказ.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Customer — покупатель из справочника.
type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Product — товар из справочника; Price нужен для расчёта суммы заказа.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Color       string  `json:"color"`
}

// SalesOrder агрегирует состояние заказа на продажу.
// ShippedDate и RejectedDate выставляются только сервером при переходе
// в соответствующий статус; клиент их не задаёт.
type SalesOrder struct {
	ID           string     `json:"id"`
	CustomerID   string     `json:"customerId"`
	ProductID    string     `json:"productId"`
	Quantity     int        `json:"quantity"`
	TotalPrice   float64    `json:"totalPrice"`
	Reference    string     `json:"order"`
	Status       Status     `json:"status"`
	RegisteredBy *string    `json:"registeredBy"`
	ShippedDate  *time.Time `json:"shippedDate"`
	RejectedDate *time.Time `json:"rejectedDate"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *SalesOrder) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if o.ProductID == "" {
		errs = append(errs, ErrProductRequired)
	}
	if o.Quantity <= 0 {
		errs = append(errs, ErrQuantityInvalid)
	}
	if o.TotalPrice < 0 {
		errs = append(errs, ErrTotalPriceNegative)
	}
	if !o.Status.Valid() {
		errs = append(errs, ErrStatusUnknown)
	}

	return errs
}

// SalesOrderRow — строка листинга: заказ плюс назначенный пользователь (или nil).
type SalesOrderRow struct {
	SalesOrder
	User *User `json:"user"`
}

// SalesPage — одна страница листинга в том виде, в котором её отдаёт API.
type SalesPage struct {
	Count int             `json:"count"`
	Rows  []SalesOrderRow `json:"rows"`
}

// PageSize — фиксированный размер страницы листинга.
const PageSize = 10

// TotalPages считает число страниц для count записей, минимум 1.
func TotalPages(count int) int {
	if count <= 0 {
		return 1
	}
	return (count + PageSize - 1) / PageSize
}

// ListQuery — параметры листинга заказов. Отсутствующий фильтр — nil,
// в запрос он не попадает вовсе.
type ListQuery struct {
	Page       int
	Status     *Status
	AssigneeID *string
}

// NewSale — данные формы создания заказа. При IsRegistered сервер записывает
// создающего пользователя в RegisteredBy.
type NewSale struct {
	CustomerID   string `json:"customerId"`
	ProductID    string `json:"productId"`
	Quantity     int    `json:"quantity"`
	Status       Status `json:"status"`
	IsRegistered bool   `json:"isRegistered"`
}

// ValidateInvariants проверяет заполненность формы создания заказа.
func (n *NewSale) ValidateInvariants() []error {
	var errs []error

	if n.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if n.ProductID == "" {
		errs = append(errs, ErrProductRequired)
	}
	if n.Quantity <= 0 {
		errs = append(errs, ErrQuantityInvalid)
	}
	if !n.Status.Valid() {
		errs = append(errs, ErrStatusUnknown)
	}

	return errs
}
