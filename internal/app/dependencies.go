package app

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/config"
	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
	"github.com/vladislavdragonenkov/shop/internal/storage/postgres"
)

// runtimeDependencies содержит репозитории, выбранные по конфигурации хранилища.
type runtimeDependencies struct {
	users       domain.UserRepository
	products    domain.ProductRepository
	categories  domain.CategoryRepository
	carts       domain.CartRepository
	orders      domain.OrderRepository
	history     domain.StatusEventRepository
	reviews     domain.ReviewRepository
	idempotency domain.IdempotencyRepository

	// store не nil только для postgres-хранилища.
	store *postgres.Store
}

// Close освобождает ресурсы хранилища.
func (d *runtimeDependencies) Close() error {
	if d == nil || d.store == nil {
		return nil
	}
	return d.store.Close()
}

// initRuntimeDependencies собирает репозитории по cfg.Storage.
// Для postgres применяются миграции схемы.
func initRuntimeDependencies(ctx context.Context, cfg config.Config, logger *log.Entry) (*runtimeDependencies, error) {
	switch cfg.Storage {
	case "", config.StorageMemory:
		logger.Info("using in-memory storage")
		products := memory.NewProductRepository()
		return &runtimeDependencies{
			users:       memory.NewUserRepository(),
			products:    products,
			categories:  memory.NewCategoryRepository(products),
			carts:       memory.NewCartRepository(),
			orders:      memory.NewOrderRepository(products),
			history:     memory.NewStatusEventRepository(),
			reviews:     memory.NewReviewRepository(),
			idempotency: memory.NewIdempotencyRepository(),
		}, nil
	case config.StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("postgres storage requires database url")
		}
		store, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := store.MigrateUp(ctx, 0); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("using postgres storage")
		return &runtimeDependencies{
			users:       postgres.NewUserRepository(store),
			products:    postgres.NewProductRepository(store),
			categories:  postgres.NewCategoryRepository(store),
			carts:       postgres.NewCartRepository(store),
			orders:      postgres.NewOrderRepository(store),
			history:     postgres.NewStatusEventRepository(store),
			reviews:     postgres.NewReviewRepository(store),
			idempotency: postgres.NewIdempotencyRepository(store),
			store:       store,
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage)
	}
}
