package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора покупателя.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствующего идентификатора товара.
	ErrProductRequired = errors.New("product_id is required")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrQuantityInvalid = errors.New("quantity must be greater than zero")
	// Ошибка отрицательной суммы заказа.
	ErrTotalPriceNegative = errors.New("total price must be non-negative")
	// Ошибка статуса вне объявленного перечисления.
	ErrStatusUnknown = errors.New("unknown order status")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("sales order not found")
	// ErrOrderExists возвращается при создании заказа с занятым ID.
	ErrOrderExists = errors.New("sales order already exists")
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrCustomerNotFound возвращается, если покупатель не найден в справочнике.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductNotFound возвращается, если товар не найден в справочнике.
	ErrProductNotFound = errors.New("product not found")
	// ErrEmailTaken возвращается при регистрации на уже занятый email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrShippedDeleteBlocked — отгруженный заказ удалять нельзя.
	ErrShippedDeleteBlocked = errors.New("cannot delete a shipped order")
	// ErrNoSelection — подтверждение действия без выбранного заказа.
	ErrNoSelection = errors.New("no sales order selected")
	// ErrSelectionBusy — по другому заказу уже есть незавершённое действие.
	ErrSelectionBusy = errors.New("another action is already pending")
)

// IsShippedDeleteBlocked проверяет, является ли ошибка отказом guard-а удалять
// отгруженный заказ.
func IsShippedDeleteBlocked(err error) bool {
	return errors.Is(err, ErrShippedDeleteBlocked)
}
