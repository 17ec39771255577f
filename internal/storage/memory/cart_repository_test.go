package memory_test

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
)

func TestCartRepository_GetOrCreateIsLazy(t *testing.T) {
	repo := memory.NewCartRepository()

	if _, err := repo.Get("user-1"); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound before first access, got %v", err)
	}

	cart, err := repo.GetOrCreate("user-1")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if cart.UserID != "user-1" || len(cart.Items) != 0 {
		t.Fatalf("unexpected cart: %+v", cart)
	}

	again, err := repo.GetOrCreate("user-1")
	if err != nil {
		t.Fatalf("second get or create: %v", err)
	}
	if again.ID != cart.ID {
		t.Fatal("repeated GetOrCreate must return the same cart")
	}
}

func TestCartRepository_AddItemUpserts(t *testing.T) {
	repo := memory.NewCartRepository()

	first, err := repo.AddItem("user-1", "product-1", 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	second, err := repo.AddItem("user-1", "product-1", 3)
	if err != nil {
		t.Fatalf("add item again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("adding the same product must update the existing line")
	}
	if second.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", second.Quantity)
	}

	cart, _ := repo.Get("user-1")
	if len(cart.Items) != 1 {
		t.Fatalf("expected a single line, got %d", len(cart.Items))
	}
	if cart.ItemCount() != 5 {
		t.Fatalf("expected item count 5, got %d", cart.ItemCount())
	}
}

func TestCartRepository_UpdateRemoveClear(t *testing.T) {
	repo := memory.NewCartRepository()

	item, err := repo.AddItem("user-1", "product-1", 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	updated, err := repo.UpdateItemQuantity("user-1", item.ID, 7)
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if updated.Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", updated.Quantity)
	}

	// Чужая позиция неотличима от несуществующей.
	if _, err := repo.UpdateItemQuantity("user-2", item.ID, 1); !errors.Is(err, domain.ErrCartItemNotFound) {
		t.Fatalf("foreign update must look like not found, got %v", err)
	}

	if err := repo.RemoveItem("user-1", item.ID); err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if err := repo.RemoveItem("user-1", item.ID); !errors.Is(err, domain.ErrCartItemNotFound) {
		t.Fatalf("double remove must fail, got %v", err)
	}

	if _, err := repo.AddItem("user-1", "product-2", 1); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := repo.Clear("user-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	cart, _ := repo.Get("user-1")
	if len(cart.Items) != 0 {
		t.Fatalf("cart must be empty after clear, got %d items", len(cart.Items))
	}

	if err := repo.Clear("user-2"); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("clearing a missing cart must fail, got %v", err)
	}
}
