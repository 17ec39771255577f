package app

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/config"
)

func TestInitRuntimeDependencies_Memory(t *testing.T) {
	t.Parallel()

	deps, err := initRuntimeDependencies(context.Background(), config.Config{
		Storage: config.StorageMemory,
	}, log.WithField("test", "memory-storage"))
	if err != nil {
		t.Fatalf("initRuntimeDependencies(memory) failed: %v", err)
	}

	if deps.users == nil || deps.products == nil || deps.categories == nil {
		t.Fatal("catalog repositories should not be nil for memory storage")
	}
	if deps.carts == nil || deps.orders == nil || deps.history == nil {
		t.Fatal("order repositories should not be nil for memory storage")
	}
	if deps.reviews == nil || deps.idempotency == nil {
		t.Fatal("review and idempotency repositories should not be nil for memory storage")
	}
	if deps.store != nil {
		t.Fatal("store must be nil for memory storage")
	}
	if err := deps.Close(); err != nil {
		t.Fatalf("close memory dependencies: %v", err)
	}
}

func TestInitRuntimeDependencies_EmptyStorageDefaultsToMemory(t *testing.T) {
	t.Parallel()

	deps, err := initRuntimeDependencies(context.Background(), config.Config{},
		log.WithField("test", "default-storage"))
	if err != nil {
		t.Fatalf("initRuntimeDependencies(default) failed: %v", err)
	}
	if deps.store != nil {
		t.Fatal("store must be nil for default storage")
	}
}

func TestInitRuntimeDependencies_PostgresRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := initRuntimeDependencies(context.Background(), config.Config{
		Storage: config.StoragePostgres,
	}, log.WithField("test", "postgres-missing-dsn"))
	if err == nil {
		t.Fatal("expected error when postgres storage is selected without DSN")
	}
}

func TestInitRuntimeDependencies_UnknownStorage(t *testing.T) {
	t.Parallel()

	_, err := initRuntimeDependencies(context.Background(), config.Config{
		Storage: "cassandra",
	}, log.WithField("test", "unknown-storage"))
	if err == nil {
		t.Fatal("expected error for unknown storage driver")
	}
}

func TestRuntimeDependencies_CloseNil(t *testing.T) {
	t.Parallel()

	var deps *runtimeDependencies
	if err := deps.Close(); err != nil {
		t.Fatalf("close nil dependencies should not fail: %v", err)
	}
}
