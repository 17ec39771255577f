package orders

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/payment"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type engineFixture struct {
	engine    *Engine
	orders    domain.OrderRepository
	products  *memory.ProductRepository
	carts     domain.CartRepository
	processor *payment.MockProcessor
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	products := memory.NewProductRepository()
	orders := memory.NewOrderRepository(products)
	carts := memory.NewCartRepository()
	users := memory.NewUserRepository()
	history := memory.NewStatusEventRepository()
	processor := payment.NewMockProcessor()

	engine := NewEngine(orders, products, carts, users, history, processor, nil,
		WithClock(func() time.Time { return testNow }),
	)

	require.NoError(t, products.Create(domain.Product{
		ID:        "prod-1",
		Title:     "Mechanical Keyboard",
		Slug:      "mechanical-keyboard",
		Price:     decimal.RequireFromString("99.99"),
		Inventory: 10,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}))
	require.NoError(t, products.Create(domain.Product{
		ID:        "prod-2",
		Title:     "USB Hub",
		Slug:      "usb-hub",
		Price:     decimal.RequireFromString("25.50"),
		Inventory: 3,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}))

	return &engineFixture{
		engine:    engine,
		orders:    orders,
		products:  products,
		carts:     carts,
		processor: processor,
	}
}

func validCard(total string) payment.Request {
	return payment.Request{
		PaymentMethod: "card",
		CardNumber:    "4111111111111111",
		ExpiryMonth:   "12",
		ExpiryYear:    "2030",
		CVV:           "123",
		Amount:        decimal.RequireFromString(total),
	}
}

func TestEngineCreate_FromItems(t *testing.T) {
	f := newEngineFixture(t)

	order, err := f.engine.Create("user-1", []ItemInput{{ProductID: "prod-1", Quantity: 2}}, "")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, domain.PaymentStatusUnpaid, order.PaymentStatus)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("199.98")),
		"total = %s", order.TotalAmount)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.RequireFromString("99.99")))

	product, err := f.products.Get("prod-1")
	require.NoError(t, err)
	assert.Equal(t, int64(8), product.Inventory, "inventory must be deducted at creation")
}

func TestEngineCreate_FromCart(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.carts.AddItem("user-1", "prod-1", 1)
	require.NoError(t, err)
	_, err = f.carts.AddItem("user-1", "prod-2", 2)
	require.NoError(t, err)

	order, err := f.engine.Create("user-1", nil, "")
	require.NoError(t, err)

	require.Len(t, order.Items, 2)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("150.99")),
		"total = %s", order.TotalAmount)

	// Корзина очищается после оформления.
	_, err = f.carts.Get("user-1")
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestEngineCreate_EmptyCart(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.Create("user-1", nil, "")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["items"], "Order must contain at least one item.")
}

func TestEngineCreate_ValidationErrors(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.Create("user-1", []ItemInput{
		{ProductID: "prod-1", Quantity: 0},
		{ProductID: "no-such-product", Quantity: 1},
		{ProductID: "prod-2", Quantity: 50},
	}, "")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["items"], "Quantity must be greater than 0.")
	assert.Contains(t, verr.Fields["items"], "Product with id no-such-product does not exist.")
	assert.Contains(t, verr.Fields["items"], "Insufficient inventory for product prod-2.")

	// Ошибки валидации не меняют остатки.
	product, err := f.products.Get("prod-2")
	require.NoError(t, err)
	assert.Equal(t, int64(3), product.Inventory)
}

func TestEngineCancel_RestoresInventory(t *testing.T) {
	f := newEngineFixture(t)

	order, err := f.engine.Create("user-1", []ItemInput{{ProductID: "prod-1", Quantity: 2}}, "")
	require.NoError(t, err)

	cancelled, err := f.engine.Cancel(order.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
	assert.False(t, cancelled.RefundDue)

	product, err := f.products.Get("prod-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), product.Inventory, "cancel must restore inventory")
}

func TestEngineCancel_Twice(t *testing.T) {
	f := newEngineFixture(t)

	order, err := f.engine.Create("user-1", []ItemInput{{ProductID: "prod-1", Quantity: 2}}, "")
	require.NoError(t, err)

	_, err = f.engine.Cancel(order.ID, "user-1")
	require.NoError(t, err)

	_, err = f.engine.Cancel(order.ID, "user-1")
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)

	// Повторная отмена не восстанавливает остатки второй раз.
	product, err := f.products.Get("prod-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), product.Inventory)
}

func TestEngineCancel_PaidOrderFlagsRefund(t *testing.T) {
	f := newEngineFixture(t)

	order, err := f.engine.Create("user-1", []ItemInput{{ProductID: "prod-1", Quantity: 2}}, "")
	require.NoError(t, err)

	_, err = f.engine.Pay(order.ID, "user-1", validCard("199.98"))
	require.NoError(t, err)

	cancelled, err := f.engine.Cancel(order.ID, "user-1")
	require.NoError(t, err)
	assert.True(t, cancelled.RefundDue, "cancelling a paid order must flag a refund")
}

func TestEngineCancel_ForeignOrderMasked(t *testing.T) {
	f := newEngineFixture(t)

	order, err := f.engine.Create("user-1", []ItemInput{{ProductID: "prod-1", Quantity: 1}}, "")
	require.NoError(t, err)

	_, err = f.engine.Cancel(order.ID, "user-2")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestEnginePay_MarksOrderPaid(t *testing.T) {
	f := newEngineFixture(t)

	order, err := f.engine.Create("user-1", []ItemInput{{ProductID: "prod-1", Quantity: 2}}, "")
	require.NoError(t, err)

	paid, err := f.engine.Pay(order.ID, "user-1", validCard("199.98"))
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPaid, paid.Status)
	assert.Equal(t, domain.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, 1, f.processor.ChargeCalls)
}

func TestEnginePay_AmountMismatchLeavesOrderUntouched(t *testing.T) {
	f := newEngineFixture(t)

	order, err := f.engine.Create("user-1", []ItemInput{{ProductID: "prod-1", Quantity: 2}}, "")
	require.NoError(t, err)

	_, err = f.engine.Pay(order.ID, "user-1", validCard("100.00"))

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["amount"], "Amount does not match order total 199.98.")
	assert.Zero(t, f.processor.ChargeCalls, "gateway must not be called on validation failure")

	fresh, err := f.engine.Get(order.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, fresh.Status)
	assert.Equal(t, domain.PaymentStatusUnpaid, fresh.PaymentStatus)
}

func TestEnginePay_Declined(t *testing.T) {
	f := newEngineFixture(t)
	f.processor.ChargeResult = payment.Result{Approved: false, Reason: "insufficient funds"}

	order, err := f.engine.Create("user-1", []ItemInput{{ProductID: "prod-1", Quantity: 1}}, "")
	require.NoError(t, err)

	_, err = f.engine.Pay(order.ID, "user-1", validCard("99.99"))
	assert.ErrorIs(t, err, domain.ErrPaymentDeclined)

	fresh, err := f.engine.Get(order.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusUnpaid, fresh.PaymentStatus, "declined payment must not change state")
}

func TestEnginePay_Twice(t *testing.T) {
	f := newEngineFixture(t)

	order, err := f.engine.Create("user-1", []ItemInput{{ProductID: "prod-1", Quantity: 1}}, "")
	require.NoError(t, err)

	_, err = f.engine.Pay(order.ID, "user-1", validCard("99.99"))
	require.NoError(t, err)

	_, err = f.engine.Pay(order.ID, "user-1", validCard("99.99"))
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)
	assert.Equal(t, 1, f.processor.ChargeCalls)
}

func TestEngineTrack_ReturnsHistory(t *testing.T) {
	f := newEngineFixture(t)

	order, err := f.engine.Create("user-1", []ItemInput{{ProductID: "prod-1", Quantity: 1}}, "")
	require.NoError(t, err)

	_, err = f.engine.Pay(order.ID, "user-1", validCard("99.99"))
	require.NoError(t, err)
	_, err = f.engine.Cancel(order.ID, "user-1")
	require.NoError(t, err)

	tracked, events, err := f.engine.Track(order.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, tracked.Status)
	require.Len(t, events, 3)
	assert.Equal(t, domain.OrderStatusPending, events[0].Status)
	assert.Equal(t, domain.OrderStatusPaid, events[1].Status)
	assert.Equal(t, domain.OrderStatusCancelled, events[2].Status)
}

func TestEngineList_NewestFirst(t *testing.T) {
	f := newEngineFixture(t)

	first, err := f.engine.Create("user-1", []ItemInput{{ProductID: "prod-1", Quantity: 1}}, "")
	require.NoError(t, err)
	second, err := f.engine.Create("user-1", []ItemInput{{ProductID: "prod-2", Quantity: 1}}, "")
	require.NoError(t, err)
	_, err = f.engine.Create("user-2", []ItemInput{{ProductID: "prod-1", Quantity: 1}}, "")
	require.NoError(t, err)

	orders, err := f.engine.List("user-1", 0)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	ids := []string{orders[0].ID, orders[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}

func TestEngineUpdateStatus(t *testing.T) {
	f := newEngineFixture(t)

	order, err := f.engine.Create("user-1", []ItemInput{{ProductID: "prod-1", Quantity: 1}}, "")
	require.NoError(t, err)

	updated, err := f.engine.UpdateStatus(order.ID, domain.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, updated.Status)

	_, err = f.engine.UpdateStatus(order.ID, domain.OrderStatus("bogus"))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["status"], "Invalid status.")
}

func TestEngineUpdateStatus_BackwardsTransitionRejected(t *testing.T) {
	f := newEngineFixture(t)

	order, err := f.engine.Create("user-1", []ItemInput{{ProductID: "prod-1", Quantity: 1}}, "")
	require.NoError(t, err)

	_, err = f.engine.UpdateStatus(order.ID, domain.OrderStatusShipped)
	require.NoError(t, err)

	_, err = f.engine.UpdateStatus(order.ID, domain.OrderStatusProcessing)
	assert.ErrorIs(t, err, domain.ErrTransitionNotAllowed)

	_, err = f.engine.UpdateStatus(order.ID, domain.OrderStatusDelivered)
	require.NoError(t, err)

	// delivered терминален.
	_, err = f.engine.UpdateStatus(order.ID, domain.OrderStatusShipped)
	assert.ErrorIs(t, err, domain.ErrTransitionNotAllowed)
}

func TestEngineUpdateStatus_CancelledCannotReopen(t *testing.T) {
	f := newEngineFixture(t)

	order, err := f.engine.Create("user-1", []ItemInput{{ProductID: "prod-1", Quantity: 2}}, "")
	require.NoError(t, err)

	_, err = f.engine.Cancel(order.ID, "user-1")
	require.NoError(t, err)

	product, err := f.products.Get("prod-1")
	require.NoError(t, err)
	require.Equal(t, int64(10), product.Inventory)

	// Отменённый заказ нельзя вернуть в активный статус.
	_, err = f.engine.UpdateStatus(order.ID, domain.OrderStatusPending)
	assert.ErrorIs(t, err, domain.ErrTransitionNotAllowed)

	// Повторная отмена по-прежнему невозможна, остатки не удваиваются.
	_, err = f.engine.Cancel(order.ID, "user-1")
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)

	product, err = f.products.Get("prod-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), product.Inventory, "inventory must be restored exactly once")
}

func TestEngineUpdateStatus_CancelOnlyViaCancelFlow(t *testing.T) {
	f := newEngineFixture(t)

	order, err := f.engine.Create("user-1", []ItemInput{{ProductID: "prod-1", Quantity: 2}}, "")
	require.NoError(t, err)

	// Прямая установка cancelled обошла бы возврат остатков.
	_, err = f.engine.UpdateStatus(order.ID, domain.OrderStatusCancelled)
	assert.ErrorIs(t, err, domain.ErrTransitionNotAllowed)

	fresh, err := f.engine.Get(order.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, fresh.Status)

	product, err := f.products.Get("prod-1")
	require.NoError(t, err)
	assert.Equal(t, int64(8), product.Inventory)
}

func TestEngineUpdateStatus_RefundSettlement(t *testing.T) {
	f := newEngineFixture(t)

	order, err := f.engine.Create("user-1", []ItemInput{{ProductID: "prod-1", Quantity: 1}}, "")
	require.NoError(t, err)
	_, err = f.engine.Pay(order.ID, "user-1", validCard("99.99"))
	require.NoError(t, err)
	cancelled, err := f.engine.Cancel(order.ID, "user-1")
	require.NoError(t, err)
	require.True(t, cancelled.RefundDue)

	refunded, err := f.engine.UpdateStatus(order.ID, domain.OrderStatusRefunded)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusRefunded, refunded.Status)
	assert.False(t, refunded.RefundDue, "settled refund must clear the flag")

	_, err = f.engine.Cancel(order.ID, "user-1")
	assert.ErrorIs(t, err, domain.ErrCancelRefunded)
}

func TestEngineCancel_ShippedOrder(t *testing.T) {
	f := newEngineFixture(t)

	order, err := f.engine.Create("user-1", []ItemInput{{ProductID: "prod-1", Quantity: 1}}, "")
	require.NoError(t, err)

	_, err = f.engine.UpdateStatus(order.ID, domain.OrderStatusShipped)
	require.NoError(t, err)

	_, err = f.engine.Cancel(order.ID, "user-1")
	assert.ErrorIs(t, err, domain.ErrCancelShipped)
}
