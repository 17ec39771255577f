package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
)

func seedProduct(t *testing.T, products *memory.ProductRepository, id string, inventory int64) domain.Product {
	t.Helper()
	p := domain.Product{
		ID:        id,
		Title:     "product " + id,
		Slug:      "product-" + id,
		Price:     decimal.RequireFromString("99.99"),
		Inventory: inventory,
		CreatedAt: time.Now().UTC(),
	}
	if err := products.Create(p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func testOrder(productID string, qty int32) domain.Order {
	now := time.Now().UTC()
	price := decimal.RequireFromString("99.99")
	return domain.Order{
		ID:            "order-1",
		UserID:        "user-1",
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusUnpaid,
		TotalAmount:   price.Mul(decimal.NewFromInt32(qty)),
		Items: []domain.OrderItem{
			{
				ID:        "item-1",
				OrderID:   "order-1",
				ProductID: productID,
				Quantity:  qty,
				UnitPrice: price,
				Subtotal:  price.Mul(decimal.NewFromInt32(qty)),
				CreatedAt: now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderRepository_CreateDeductsInventory(t *testing.T) {
	products := memory.NewProductRepository()
	seedProduct(t, products, "product-1", 10)
	repo := memory.NewOrderRepository(products)

	if err := repo.Create(testOrder("product-1", 2)); err != nil {
		t.Fatalf("create order: %v", err)
	}

	p, err := products.Get("product-1")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if p.Inventory != 8 {
		t.Fatalf("expected inventory 8 after creation, got %d", p.Inventory)
	}
}

func TestOrderRepository_CreateInsufficientStock(t *testing.T) {
	products := memory.NewProductRepository()
	seedProduct(t, products, "product-1", 1)
	repo := memory.NewOrderRepository(products)

	err := repo.Create(testOrder("product-1", 2))
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// Ни заказа, ни списания быть не должно.
	if _, err := repo.Get("order-1"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("order must not be persisted, got %v", err)
	}
	p, _ := products.Get("product-1")
	if p.Inventory != 1 {
		t.Fatalf("inventory must be untouched, got %d", p.Inventory)
	}
}

func TestOrderRepository_CancelAndRestock(t *testing.T) {
	products := memory.NewProductRepository()
	seedProduct(t, products, "product-1", 10)
	repo := memory.NewOrderRepository(products)

	if err := repo.Create(testOrder("product-1", 2)); err != nil {
		t.Fatalf("create order: %v", err)
	}

	order, err := repo.Get("order-1")
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if err := order.Cancel(time.Now().UTC()); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := repo.CancelAndRestock(order); err != nil {
		t.Fatalf("cancel and restock: %v", err)
	}

	p, _ := products.Get("product-1")
	if p.Inventory != 10 {
		t.Fatalf("expected inventory back to 10, got %d", p.Inventory)
	}

	// Повторная отмена по устаревшей версии — конфликт, без второго восстановления.
	if err := repo.CancelAndRestock(order); !errors.Is(err, domain.ErrOrderVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
	p, _ = products.Get("product-1")
	if p.Inventory != 10 {
		t.Fatalf("inventory must not be restored twice, got %d", p.Inventory)
	}
}

func TestOrderRepository_GetOwnedMasksForeignOrders(t *testing.T) {
	products := memory.NewProductRepository()
	seedProduct(t, products, "product-1", 10)
	repo := memory.NewOrderRepository(products)

	if err := repo.Create(testOrder("product-1", 1)); err != nil {
		t.Fatalf("create order: %v", err)
	}

	if _, err := repo.GetOwned("order-1", "user-1"); err != nil {
		t.Fatalf("owner must see the order: %v", err)
	}
	if _, err := repo.GetOwned("order-1", "user-2"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("foreign order must look nonexistent, got %v", err)
	}
}

func TestOrderRepository_SaveVersionConflict(t *testing.T) {
	products := memory.NewProductRepository()
	seedProduct(t, products, "product-1", 10)
	repo := memory.NewOrderRepository(products)

	if err := repo.Create(testOrder("product-1", 1)); err != nil {
		t.Fatalf("create order: %v", err)
	}

	first, _ := repo.Get("order-1")
	second, _ := repo.Get("order-1")

	first.Status = domain.OrderStatusPaid
	if err := repo.Save(first); err != nil {
		t.Fatalf("first save: %v", err)
	}

	second.Status = domain.OrderStatusProcessing
	if err := repo.Save(second); !errors.Is(err, domain.ErrOrderVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
}

func TestOrderRepository_GetItemOwned(t *testing.T) {
	products := memory.NewProductRepository()
	seedProduct(t, products, "product-1", 10)
	repo := memory.NewOrderRepository(products)

	if err := repo.Create(testOrder("product-1", 2)); err != nil {
		t.Fatalf("create order: %v", err)
	}

	item, order, err := repo.GetItemOwned("item-1", "user-1")
	if err != nil {
		t.Fatalf("get item owned: %v", err)
	}
	if item.ProductID != "product-1" || order.ID != "order-1" {
		t.Fatalf("unexpected item/order: %+v / %+v", item, order)
	}

	if _, _, err := repo.GetItemOwned("item-1", "user-2"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("foreign item must look nonexistent, got %v", err)
	}
}
