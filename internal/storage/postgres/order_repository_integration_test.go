package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

type orderIntegrationFixture struct {
	store    *Store
	orders   domain.OrderRepository
	products domain.ProductRepository
	users    domain.UserRepository

	userID    string
	productID string
}

func newOrderIntegrationFixture(t *testing.T) *orderIntegrationFixture {
	t.Helper()

	store := openPostgresStoreForIntegrationTest(t)
	f := &orderIntegrationFixture{
		store:    store,
		orders:   NewOrderRepository(store),
		products: NewProductRepository(store),
		users:    NewUserRepository(store),
	}

	now := time.Now().UTC().Round(time.Microsecond)

	f.userID = uuid.NewString()
	if err := f.users.Create(domain.User{
		ID:           f.userID,
		Email:        "buyer-" + f.userID[:8] + "@example.com",
		Username:     "buyer-" + f.userID[:8],
		PasswordHash: "x",
		CreatedAt:    now,
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	f.productID = uuid.NewString()
	if err := f.products.Create(domain.Product{
		ID:        f.productID,
		Title:     "Integration Widget",
		Slug:      "integration-widget-" + f.productID[:8],
		Price:     decimal.RequireFromString("19.99"),
		Inventory: 10,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	return f
}

func (f *orderIntegrationFixture) sampleOrder(qty int32, createdAt time.Time) domain.Order {
	unit := decimal.RequireFromString("19.99")
	subtotal := unit.Mul(decimal.NewFromInt32(qty))
	orderID := uuid.NewString()

	return domain.Order{
		ID:            orderID,
		UserID:        f.userID,
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusUnpaid,
		TotalAmount:   subtotal,
		Items: []domain.OrderItem{{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			ProductID: f.productID,
			Quantity:  qty,
			UnitPrice: unit,
			Subtotal:  subtotal,
			CreatedAt: createdAt,
		}},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func (f *orderIntegrationFixture) inventory(t *testing.T) int64 {
	t.Helper()

	p, err := f.products.Get(f.productID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	return p.Inventory
}

func TestOrderRepository_PostgresCreateGetListAndSave(t *testing.T) {
	f := newOrderIntegrationFixture(t)

	now := time.Now().UTC().Round(time.Microsecond)
	order1 := f.sampleOrder(2, now.Add(-2*time.Minute))
	order2 := f.sampleOrder(1, now.Add(-time.Minute))

	if err := f.orders.Create(order1); err != nil {
		t.Fatalf("create order1: %v", err)
	}
	if err := f.orders.Create(order2); err != nil {
		t.Fatalf("create order2: %v", err)
	}
	if got := f.inventory(t); got != 7 {
		t.Fatalf("unexpected inventory after create: got=%d want=7", got)
	}

	got, err := f.orders.Get(order1.ID)
	if err != nil {
		t.Fatalf("get order1: %v", err)
	}
	if got.UserID != f.userID || got.Status != domain.OrderStatusPending {
		t.Fatalf("unexpected order payload: %+v", got)
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
	if !got.TotalAmount.Equal(decimal.RequireFromString("39.98")) {
		t.Fatalf("unexpected total amount: %s", got.TotalAmount)
	}

	listed, err := f.orders.ListByUser(f.userID, 1)
	if err != nil {
		t.Fatalf("list by user with limit: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != order2.ID {
		t.Fatalf("unexpected list result with limit: %+v", listed)
	}

	all, err := f.orders.ListByUser(f.userID, 0)
	if err != nil {
		t.Fatalf("list by user without limit: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(all))
	}

	got.Status = domain.OrderStatusPaid
	got.PaymentStatus = domain.PaymentStatusPaid
	got.UpdatedAt = now.Add(time.Minute)
	if err := f.orders.Save(got); err != nil {
		t.Fatalf("save order: %v", err)
	}

	updated, err := f.orders.Get(order1.ID)
	if err != nil {
		t.Fatalf("get updated order: %v", err)
	}
	if updated.Status != domain.OrderStatusPaid || updated.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("unexpected state after save: %+v", updated)
	}
	if updated.Version != got.Version+1 {
		t.Fatalf("unexpected version after save: got=%d want=%d", updated.Version, got.Version+1)
	}

	// Save со старой версией проигрывает конкурентному обновлению.
	if err := f.orders.Save(got); !errors.Is(err, domain.ErrOrderVersionConflict) {
		t.Fatalf("expected ErrOrderVersionConflict, got %v", err)
	}
}

func TestOrderRepository_PostgresInsufficientStockRollsBack(t *testing.T) {
	f := newOrderIntegrationFixture(t)

	now := time.Now().UTC().Round(time.Microsecond)
	if err := f.orders.Create(f.sampleOrder(11, now)); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if got := f.inventory(t); got != 10 {
		t.Fatalf("inventory must stay untouched after rollback: got=%d", got)
	}

	orders, err := f.orders.ListByUser(f.userID, 0)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected no orders after rollback, got %d", len(orders))
	}
}

func TestOrderRepository_PostgresCancelAndRestock(t *testing.T) {
	f := newOrderIntegrationFixture(t)

	now := time.Now().UTC().Round(time.Microsecond)
	order := f.sampleOrder(4, now)
	if err := f.orders.Create(order); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if got := f.inventory(t); got != 6 {
		t.Fatalf("unexpected inventory after create: got=%d want=6", got)
	}

	stored, err := f.orders.Get(order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if err := stored.Cancel(now.Add(time.Minute)); err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if err := f.orders.CancelAndRestock(stored); err != nil {
		t.Fatalf("cancel and restock: %v", err)
	}
	if got := f.inventory(t); got != 10 {
		t.Fatalf("inventory must be restored: got=%d want=10", got)
	}

	// Повторная отмена с устаревшей версией не проходит и не возвращает
	// остатки второй раз.
	if err := f.orders.CancelAndRestock(stored); !errors.Is(err, domain.ErrOrderVersionConflict) {
		t.Fatalf("expected ErrOrderVersionConflict, got %v", err)
	}
	if got := f.inventory(t); got != 10 {
		t.Fatalf("inventory must not be restored twice: got=%d", got)
	}

	cancelled, err := f.orders.Get(order.ID)
	if err != nil {
		t.Fatalf("get cancelled order: %v", err)
	}
	if cancelled.Status != domain.OrderStatusCancelled {
		t.Fatalf("unexpected status: %s", cancelled.Status)
	}
}

func TestOrderRepository_PostgresOwnershipMasking(t *testing.T) {
	f := newOrderIntegrationFixture(t)

	now := time.Now().UTC().Round(time.Microsecond)
	order := f.sampleOrder(1, now)
	if err := f.orders.Create(order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	if _, err := f.orders.Get(uuid.NewString()); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for missing order, got %v", err)
	}

	stranger := uuid.NewString()
	if _, err := f.orders.GetOwned(order.ID, stranger); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("foreign order must look missing, got %v", err)
	}

	owned, err := f.orders.GetOwned(order.ID, f.userID)
	if err != nil {
		t.Fatalf("get owned order: %v", err)
	}

	item, parent, err := f.orders.GetItemOwned(owned.Items[0].ID, f.userID)
	if err != nil {
		t.Fatalf("get owned item: %v", err)
	}
	if item.ProductID != f.productID || parent.ID != order.ID {
		t.Fatalf("unexpected item payload: item=%+v order=%+v", item, parent)
	}

	if _, _, err := f.orders.GetItemOwned(owned.Items[0].ID, stranger); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("foreign item must look missing, got %v", err)
	}
}
