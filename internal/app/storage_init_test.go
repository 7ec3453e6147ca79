package app

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestInitStorage_Memory(t *testing.T) {
	cfg := DefaultConfig()
	logger := log.WithField("component", "test")

	storage, err := initStorage(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = storage.Close() }()

	if storage.Orders == nil || storage.Users == nil || storage.Catalog == nil {
		t.Fatal("expected all repositories to be initialized")
	}

	// SeedDemo по умолчанию включён: справочники должны быть не пустыми.
	products, err := storage.Catalog.ListProducts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) == 0 {
		t.Error("expected demo products to be seeded")
	}

	if err := storage.Ping(context.Background()); err != nil {
		t.Errorf("expected memory storage ping to succeed, got %v", err)
	}
}

func TestInitStorage_MemoryWithoutSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SeedDemo = false
	logger := log.WithField("component", "test")

	storage, err := initStorage(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = storage.Close() }()

	products, err := storage.Catalog.ListProducts()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 0 {
		t.Errorf("expected empty catalog, got %d products", len(products))
	}
}

func TestInitStorage_UnknownDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageDriver = "tape"
	logger := log.WithField("component", "test")

	if _, err := initStorage(context.Background(), cfg, logger); err == nil {
		t.Fatal("expected an error for an unknown driver")
	}
}
