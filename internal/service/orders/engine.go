package orders

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/metrics"
	"github.com/vladislavdragonenkov/shop/internal/payment"
)

// ItemInput — запрошенная позиция заказа: (товар, количество).
type ItemInput struct {
	ProductID string
	Quantity  int32
}

// Engine реализует жизненный цикл заказа: создание из корзины или явного
// списка позиций, оплату через платёжный симулятор и отмену с возвратом
// остатков на склад.
type Engine struct {
	orders    domain.OrderRepository
	products  domain.ProductRepository
	carts     domain.CartRepository
	users     domain.UserRepository
	history   domain.StatusEventRepository
	publisher domain.OrderEventPublisher
	processor payment.Processor
	metrics   *metrics.OrderMetrics
	logger    *log.Entry
	now       func() time.Time
}

// Option настраивает Engine.
type Option func(*Engine)

// WithPublisher задаёт издателя событий заказов (например, Kafka).
func WithPublisher(publisher domain.OrderEventPublisher) Option {
	return func(e *Engine) {
		e.publisher = publisher
	}
}

// WithMetrics подключает метрики движка.
func WithMetrics(m *metrics.OrderMetrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithClock заменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine создаёт движок заказов.
func NewEngine(
	orders domain.OrderRepository,
	products domain.ProductRepository,
	carts domain.CartRepository,
	users domain.UserRepository,
	history domain.StatusEventRepository,
	processor payment.Processor,
	logger *log.Entry,
	options ...Option,
) *Engine {
	if logger == nil {
		logger = log.WithField("component", "order-engine")
	}

	e := &Engine{
		orders:    orders,
		products:  products,
		carts:     carts,
		users:     users,
		history:   history,
		processor: processor,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Create оформляет заказ. Пустой список позиций означает оформление текущей
// корзины пользователя. Вся валидация выполняется до каких-либо изменений
// состояния; заказ, его позиции и списание остатков сохраняются атомарно,
// после чего корзина очищается.
func (e *Engine) Create(userID string, items []ItemInput, shippingAddressID string) (domain.Order, error) {
	start := e.now()
	defer func() {
		e.metrics.ObserveOperation("create", e.now().Sub(start))
	}()

	fromCart := false
	if len(items) == 0 {
		cartItems, err := e.cartItems(userID)
		if err != nil {
			return domain.Order{}, err
		}
		items = cartItems
		fromCart = true
	}

	verr := domain.NewValidationError()
	if len(items) == 0 {
		verr.Add("items", "Order must contain at least one item.")
		return domain.Order{}, verr
	}

	if shippingAddressID != "" {
		if _, err := e.users.GetAddress(shippingAddressID, userID); err != nil {
			if errors.Is(err, domain.ErrAddressNotFound) {
				verr.Add("shipping_address", "Address does not exist.")
			} else {
				return domain.Order{}, fmt.Errorf("check shipping address: %w", err)
			}
		}
	}

	now := e.now()
	order := domain.Order{
		ID:                uuid.NewString(),
		UserID:            userID,
		Status:            domain.OrderStatusPending,
		PaymentStatus:     domain.PaymentStatusUnpaid,
		TotalAmount:       decimal.Zero,
		ShippingAddressID: shippingAddressID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	for _, input := range items {
		if input.Quantity <= 0 {
			verr.Add("items", "Quantity must be greater than 0.")
			continue
		}
		product, err := e.products.Get(input.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				verr.Add("items", fmt.Sprintf("Product with id %s does not exist.", input.ProductID))
				continue
			}
			return domain.Order{}, fmt.Errorf("lookup product: %w", err)
		}
		if product.Inventory < int64(input.Quantity) {
			verr.Add("items", fmt.Sprintf("Insufficient inventory for product %s.", input.ProductID))
			continue
		}

		// Цена фиксируется на момент оформления.
		subtotal := product.Price.Mul(decimal.NewFromInt32(input.Quantity))
		order.Items = append(order.Items, domain.OrderItem{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  input.Quantity,
			UnitPrice: product.Price,
			Subtotal:  subtotal,
			CreatedAt: now,
		})
		order.TotalAmount = order.TotalAmount.Add(subtotal)
	}

	if !verr.Empty() {
		return domain.Order{}, verr
	}
	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, fmt.Errorf("order invariants violated: %v", errs)
	}

	if err := e.orders.Create(order); err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			// Конкурентное списание опередило нас между проверкой и транзакцией.
			verr.Add("items", "Insufficient inventory.")
			return domain.Order{}, verr
		}
		return domain.Order{}, fmt.Errorf("persist order: %w", err)
	}

	if fromCart {
		if err := e.carts.Clear(userID); err != nil && !errors.Is(err, domain.ErrCartNotFound) {
			e.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to clear cart after checkout")
		}
	}

	e.recordEvent(order, "Your order has been placed successfully.")
	e.publish(string(order.Status), kafkaEventOrderCreated, order)
	e.metrics.RecordOrderCreated()

	e.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"user_id":  userID,
		"total":    order.TotalAmount.StringFixed(2),
		"items":    len(order.Items),
	}).Info("order created")

	return order, nil
}

// Cancel отменяет заказ владельца согласно таблице переходов.
// Остатки по каждой позиции восстанавливаются в той же атомарной операции,
// что и смена статуса; у оплаченного заказа помечается возврат средств.
func (e *Engine) Cancel(orderID, userID string) (domain.Order, error) {
	start := e.now()
	defer func() {
		e.metrics.ObserveOperation("cancel", e.now().Sub(start))
	}()

	order, err := e.orders.GetOwned(orderID, userID)
	if err != nil {
		return domain.Order{}, err
	}

	if err := order.Cancel(e.now()); err != nil {
		return domain.Order{}, err
	}

	if err := e.orders.CancelAndRestock(order); err != nil {
		if domain.IsVersionConflict(err) {
			// Кто-то успел изменить заказ первым: перечитываем и отдаём
			// актуальную причину отказа, остатки не трогались второй раз.
			fresh, ferr := e.orders.GetOwned(orderID, userID)
			if ferr != nil {
				return domain.Order{}, ferr
			}
			if terr := fresh.CancelError(); terr != nil {
				return domain.Order{}, terr
			}
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("cancel order: %w", err)
	}
	order.Version++

	e.recordEvent(order, "Your order has been cancelled and inventory was restored.")
	e.publish(string(order.Status), kafkaEventOrderCancelled, order)
	e.metrics.RecordOrderCancelled()
	if order.RefundDue {
		e.publish(string(order.Status), kafkaEventRefundRequested, order)
		e.metrics.RecordRefundFlagged()
	}

	e.logger.WithFields(log.Fields{
		"order_id":   order.ID,
		"user_id":    userID,
		"refund_due": order.RefundDue,
	}).Info("order cancelled")

	return order, nil
}

// Pay проводит оплату заказа через платёжный симулятор.
// Валидация payload выполняется до любых изменений; отклонённый платёж
// оставляет заказ нетронутым и возвращает восстановимую ошибку.
func (e *Engine) Pay(orderID, userID string, req payment.Request) (domain.Order, error) {
	start := e.now()
	defer func() {
		e.metrics.ObserveOperation("pay", e.now().Sub(start))
	}()

	order, err := e.orders.GetOwned(orderID, userID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.PaymentStatus == domain.PaymentStatusPaid {
		return domain.Order{}, domain.ErrAlreadyPaid
	}

	if fieldErrs := payment.Validate(req, order.TotalAmount, e.now()); !fieldErrs.Empty() {
		e.metrics.RecordPaymentDeclined()
		verr := domain.NewValidationError()
		for field, msgs := range fieldErrs {
			for _, msg := range msgs {
				verr.Add(field, msg)
			}
		}
		return domain.Order{}, verr
	}

	result, err := e.processor.Charge(order.ID, order.TotalAmount, req)
	if err != nil {
		return domain.Order{}, fmt.Errorf("charge payment: %w", err)
	}
	if !result.Approved {
		e.metrics.RecordPaymentDeclined()
		e.logger.WithFields(log.Fields{
			"order_id": order.ID,
			"reason":   result.Reason,
		}).Warn("payment declined")
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrPaymentDeclined, result.Reason)
	}

	if err := order.MarkPaid(e.now()); err != nil {
		return domain.Order{}, err
	}
	if err := e.orders.Save(order); err != nil {
		if domain.IsVersionConflict(err) {
			return domain.Order{}, domain.ErrAlreadyPaid
		}
		return domain.Order{}, fmt.Errorf("save paid order: %w", err)
	}
	order.Version++

	e.recordEvent(order, "Payment was processed successfully.")
	e.publish(string(order.Status), kafkaEventOrderPaid, order)
	e.metrics.RecordPaymentCompleted()

	e.logger.WithFields(log.Fields{
		"order_id":       order.ID,
		"user_id":        userID,
		"transaction_id": result.TransactionID,
	}).Info("payment completed")

	return order, nil
}

// Get возвращает заказ владельца.
func (e *Engine) Get(orderID, userID string) (domain.Order, error) {
	return e.orders.GetOwned(orderID, userID)
}

// List возвращает заказы пользователя, новые первыми.
func (e *Engine) List(userID string, limit int) ([]domain.Order, error) {
	return e.orders.ListByUser(userID, limit)
}

// Track возвращает историю статусов заказа владельца.
func (e *Engine) Track(orderID, userID string) (domain.Order, []domain.StatusEvent, error) {
	order, err := e.orders.GetOwned(orderID, userID)
	if err != nil {
		return domain.Order{}, nil, err
	}
	events, err := e.history.List(orderID)
	if err != nil {
		return domain.Order{}, nil, fmt.Errorf("list status events: %w", err)
	}
	return order, events, nil
}

// UpdateStatus — административная смена статуса (staff-only на уровне API).
// Переходы ограничены таблицей domain.Order.CanTransitionTo; перевод в
// cancelled отклоняется всегда, отмена с возвратом остатков идёт через Cancel.
func (e *Engine) UpdateStatus(orderID string, status domain.OrderStatus) (domain.Order, error) {
	if !domain.ValidStatus(status) {
		verr := domain.NewValidationError()
		verr.Add("status", "Invalid status.")
		return domain.Order{}, verr
	}

	order, err := e.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}

	if err := order.ApplyStatus(status, e.now()); err != nil {
		return domain.Order{}, err
	}
	if err := e.orders.Save(order); err != nil {
		return domain.Order{}, fmt.Errorf("save order status: %w", err)
	}
	order.Version++

	e.recordEvent(order, fmt.Sprintf("Order status changed to %s.", status))
	e.publish(string(order.Status), kafkaEventStatusChanged, order)

	return order, nil
}

func (e *Engine) cartItems(userID string) ([]ItemInput, error) {
	cart, err := e.carts.Get(userID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}

	items := make([]ItemInput, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, ItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return items, nil
}

func (e *Engine) recordEvent(order domain.Order, description string) {
	if e.history == nil {
		return
	}
	err := e.history.Append(domain.StatusEvent{
		OrderID:     order.ID,
		Status:      order.Status,
		Description: description,
		Occurred:    e.now(),
	})
	if err != nil {
		e.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to record status event")
		return
	}
	e.metrics.RecordStatusEvent()
}

const (
	kafkaEventOrderCreated    = "order.created"
	kafkaEventOrderPaid       = "order.paid"
	kafkaEventOrderCancelled  = "order.cancelled"
	kafkaEventRefundRequested = "order.refund_requested"
	kafkaEventStatusChanged   = "order.status_changed"
)

// publish отправляет событие best-effort: ошибка логируется и не влияет
// на результат операции.
func (e *Engine) publish(status, eventType string, order domain.Order) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.PublishOrderEvent(eventType, order); err != nil {
		e.logger.WithError(err).WithFields(log.Fields{
			"order_id": order.ID,
			"event":    eventType,
			"status":   status,
		}).Warn("failed to publish order event")
	}
}
