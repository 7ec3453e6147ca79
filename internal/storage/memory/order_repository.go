package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/salesconsole/internal/domain"
)

// orderRepositoryInMemory — простая in-memory реализация SalesOrderRepository.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.SalesOrder
	users domain.UserRepository
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки
// и тестов. users нужен, чтобы листинг отдавал строки вместе с назначенным
// пользователем; может быть nil, тогда user в строках всегда nil.
func NewOrderRepository(users domain.UserRepository) domain.SalesOrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[string]domain.SalesOrder),
		users: users,
	}
}

// Create сохраняет новый заказ, если ID ещё не занят.
func (r *orderRepositoryInMemory) Create(order domain.SalesOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return domain.ErrOrderExists
	}
	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.items[order.ID] = order
	return nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(id string) (domain.SalesOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.SalesOrder{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// List возвращает страницу заказов по фильтрам вместе с общим числом
// попадающих под фильтр записей. Страницы нумеруются с единицы.
func (r *orderRepositoryInMemory) List(q domain.ListQuery) (domain.SalesPage, error) {
	r.mu.RLock()
	filtered := make([]domain.SalesOrder, 0, len(r.items))
	for _, order := range r.items {
		if q.Status != nil && order.Status != *q.Status {
			continue
		}
		if q.AssigneeID != nil {
			if order.RegisteredBy == nil || *order.RegisteredBy != *q.AssigneeID {
				continue
			}
		}
		filtered = append(filtered, order)
	}
	r.mu.RUnlock()

	sort.Slice(filtered, func(i, j int) bool {
		if !filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
		}
		return filtered[i].ID > filtered[j].ID
	})

	count := len(filtered)

	page := q.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * domain.PageSize
	if offset > count {
		offset = count
	}
	end := offset + domain.PageSize
	if end > count {
		end = count
	}

	rows := make([]domain.SalesOrderRow, 0, end-offset)
	for _, order := range filtered[offset:end] {
		rows = append(rows, domain.SalesOrderRow{
			SalesOrder: order,
			User:       r.lookupUser(order.RegisteredBy),
		})
	}

	return domain.SalesPage{Count: count, Rows: rows}, nil
}

func (r *orderRepositoryInMemory) lookupUser(id *string) *domain.User {
	if id == nil || r.users == nil {
		return nil
	}
	user, err := r.users.Get(*id)
	if err != nil {
		return nil
	}
	return &user
}

// Update перезаписывает существующий заказ.
func (r *orderRepositoryInMemory) Update(order domain.SalesOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[order.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	r.items[order.ID] = order
	return nil
}

// Delete удаляет заказ или возвращает ErrOrderNotFound.
func (r *orderRepositoryInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.items, id)
	return nil
}

var _ domain.SalesOrderRepository = (*orderRepositoryInMemory)(nil)
