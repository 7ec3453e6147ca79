package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/salesconsole/internal/domain"
	"github.com/vladislavdragonenkov/salesconsole/internal/storage/memory"
	"github.com/vladislavdragonenkov/salesconsole/internal/storage/postgres"
)

// Storage объединяет репозитории и ресурс, который надо закрыть при остановке.
type Storage struct {
	Orders  domain.SalesOrderRepository
	Users   domain.UserRepository
	Catalog domain.CatalogRepository

	store *Closer
}

// Closer закрывает ресурсы хранилища; для memory-хранилища он пустой.
type Closer struct {
	closeFn func() error
	// Ping проверяет доступность хранилища для health check.
	pingFn func(ctx context.Context) error
}

// Close освобождает ресурсы хранилища.
func (s *Storage) Close() error {
	if s.store == nil || s.store.closeFn == nil {
		return nil
	}
	return s.store.closeFn()
}

// Ping проверяет доступность хранилища. Для memory всегда успешно.
func (s *Storage) Ping(ctx context.Context) error {
	if s.store == nil || s.store.pingFn == nil {
		return nil
	}
	return s.store.pingFn(ctx)
}

// initStorage создаёт хранилище по конфигурации.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (*Storage, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory:
		users := memory.NewUserRepository()
		catalog := memory.NewCatalogRepository()
		if cfg.SeedDemo {
			catalog.SeedDemo()
			logger.Info("catalog seeded with demo data")
		}
		logger.Info("using in-memory storage")
		return &Storage{
			Orders:  memory.NewOrderRepository(users),
			Users:   users,
			Catalog: catalog,
		}, nil

	case StorageDriverPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}

		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
			logger.Info("postgres schema is up to date")
		}

		logger.Info("using postgres storage")
		return &Storage{
			Orders:  postgres.NewOrderRepository(store),
			Users:   postgres.NewUserRepository(store),
			Catalog: postgres.NewCatalogRepository(store),
			store: &Closer{
				closeFn: store.Close,
				pingFn:  store.Ping,
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
