package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/salesconsole/internal/domain"
)

// catalogRepositoryInMemory — in-memory справочники покупателей и товаров.
type catalogRepositoryInMemory struct {
	mu        sync.RWMutex
	customers map[string]domain.Customer
	products  map[string]domain.Product
}

// NewCatalogRepository возвращает пустые справочники.
func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{
		inner: &catalogRepositoryInMemory{
			customers: make(map[string]domain.Customer),
			products:  make(map[string]domain.Product),
		},
	}
}

// CatalogRepository — обёртка с операциями наполнения для dev-режима и тестов.
type CatalogRepository struct {
	inner *catalogRepositoryInMemory
}

// PutCustomer добавляет или заменяет покупателя.
func (r *CatalogRepository) PutCustomer(c domain.Customer) {
	r.inner.mu.Lock()
	defer r.inner.mu.Unlock()
	r.inner.customers[c.ID] = c
}

// PutProduct добавляет или заменяет товар.
func (r *CatalogRepository) PutProduct(p domain.Product) {
	r.inner.mu.Lock()
	defer r.inner.mu.Unlock()
	r.inner.products[p.ID] = p
}

// ListCustomers возвращает покупателей, отсортированных по имени.
func (r *CatalogRepository) ListCustomers() ([]domain.Customer, error) {
	r.inner.mu.RLock()
	defer r.inner.mu.RUnlock()

	customers := make([]domain.Customer, 0, len(r.inner.customers))
	for _, c := range r.inner.customers {
		customers = append(customers, c)
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].Name < customers[j].Name })
	return customers, nil
}

// GetCustomer возвращает покупателя или ErrCustomerNotFound.
func (r *CatalogRepository) GetCustomer(id string) (domain.Customer, error) {
	r.inner.mu.RLock()
	defer r.inner.mu.RUnlock()

	c, ok := r.inner.customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return c, nil
}

// ListProducts возвращает товары, отсортированные по имени.
func (r *CatalogRepository) ListProducts() ([]domain.Product, error) {
	r.inner.mu.RLock()
	defer r.inner.mu.RUnlock()

	products := make([]domain.Product, 0, len(r.inner.products))
	for _, p := range r.inner.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

// GetProduct возвращает товар или ErrProductNotFound.
func (r *CatalogRepository) GetProduct(id string) (domain.Product, error) {
	r.inner.mu.RLock()
	defer r.inner.mu.RUnlock()

	p, ok := r.inner.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

// SeedDemo наполняет справочники демо-данными для локального запуска.
// NOTE: В production окружении справочники приходят из реальной базы.
func (r *CatalogRepository) SeedDemo() {
	r.PutCustomer(domain.Customer{ID: "customer-1", Name: "Acme Retail", Phone: "+1-202-555-0100", Address: "12 Main St"})
	r.PutCustomer(domain.Customer{ID: "customer-2", Name: "Globex", Email: "orders@globex.example", Phone: "+1-202-555-0147", Address: "4 Elm Ave"})
	r.PutProduct(domain.Product{ID: "product-1", Name: "Office Chair", Description: "Ergonomic chair", Price: 120, Stock: 40, Color: "black"})
	r.PutProduct(domain.Product{ID: "product-2", Name: "Standing Desk", Description: "Adjustable desk", Price: 450, Stock: 15, Color: "oak"})
	r.PutProduct(domain.Product{ID: "product-3", Name: "Monitor Arm", Description: "Dual monitor arm", Price: 75, Stock: 60, Color: "silver"})
}

var _ domain.CatalogRepository = (*CatalogRepository)(nil)
