package domain

// SalesOrderRepository описывает требования к хранилищу заказов на продажу.
type SalesOrderRepository interface {
	// Create сохраняет новый заказ. Возвращает ошибку, если запись с таким ID уже существует.
	Create(order SalesOrder) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(id string) (SalesOrder, error)
	// List возвращает одну страницу заказов по фильтрам запроса вместе с общим
	// числом записей, попадающих под фильтр. Страницы нумеруются с единицы.
	List(q ListQuery) (SalesPage, error)
	// Update перезаписывает существующий заказ или возвращает ErrOrderNotFound.
	Update(order SalesOrder) error
	// Delete удаляет заказ или возвращает ErrOrderNotFound.
	Delete(id string) error
}

// UserRepository описывает хранилище сотрудников и их учётных данных.
type UserRepository interface {
	// Create сохраняет пользователя с хэшем пароля. ErrEmailTaken при дубликате email.
	Create(user User, passwordHash []byte) error
	// Get возвращает пользователя по идентификатору или ErrUserNotFound.
	Get(id string) (User, error)
	// GetByEmail возвращает пользователя и хэш пароля по email или ErrUserNotFound.
	GetByEmail(email string) (User, []byte, error)
	// List возвращает всех пользователей в стабильном порядке.
	List() ([]User, error)
}

// CatalogRepository описывает справочники покупателей и товаров.
type CatalogRepository interface {
	ListCustomers() ([]Customer, error)
	GetCustomer(id string) (Customer, error)
	ListProducts() ([]Product, error)
	GetProduct(id string) (Product, error)
}
