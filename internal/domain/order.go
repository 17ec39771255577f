package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан, оплата ещё не выполнена.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusPaid — оплата подтверждена платёжным симулятором.
	OrderStatusPaid OrderStatus = "paid"
	// OrderStatusProcessing — заказ собирается на складе.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped — заказ передан в доставку.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered — заказ доставлен покупателю.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled — заказ отменён до отгрузки.
	OrderStatusCancelled OrderStatus = "cancelled"
	// OrderStatusRefunded — деньги за заказ возвращены клиенту.
	OrderStatusRefunded OrderStatus = "refunded"
)

// PaymentStatus описывает состояние оплаты заказа.
type PaymentStatus string

const (
	// PaymentStatusUnpaid — оплата ещё не проводилась.
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	// PaymentStatusPaid — оплата прошла успешно.
	PaymentStatusPaid PaymentStatus = "paid"
)

// OrderItem представляет одну позицию заказа.
// Позиция неизменяема после создания: unit price фиксируется в момент оформления
// и не зависит от последующих изменений цены в каталоге.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	// Quantity — количество единиц товара, строго > 0.
	Quantity int32
	// UnitPrice — цена за единицу на момент оформления заказа.
	UnitPrice decimal.Decimal
	// Subtotal = Quantity * UnitPrice.
	Subtotal  decimal.Decimal
	CreatedAt time.Time
}

// Order агрегирует состояние заказа и его позиции.
// Заказ и его позиции образуют единицу консистентности: создаются атомарно,
// заказ никогда не удаляется физически — отмена выражается статусом.
type Order struct {
	ID            string
	UserID        string
	Status        OrderStatus
	PaymentStatus PaymentStatus
	TotalAmount   decimal.Decimal
	// RefundDue выставляется при отмене уже оплаченного заказа:
	// деньги нужно вернуть клиенту.
	RefundDue         bool
	ShippingAddressID string
	Items             []OrderItem
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.UserID == "" {
		errs = append(errs, ErrUserRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.TotalAmount.IsNegative() {
		errs = append(errs, ErrAmountNegative)
	}

	// Сверяем сумму заказа с суммой позиций: qty * unit_price.
	calc := decimal.Zero
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.UnitPrice.IsNegative() {
			errs = append(errs, ErrItemPriceInvalid)
		}
		if !item.Subtotal.Equal(item.UnitPrice.Mul(decimal.NewFromInt32(item.Quantity))) {
			errs = append(errs, ErrSubtotalMismatch)
		}
		calc = calc.Add(item.Subtotal)
	}
	if !calc.Equal(o.TotalAmount) {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}

// cancellable перечисляет статусы, из которых разрешена отмена.
var cancellable = map[OrderStatus]bool{
	OrderStatusPending:    true,
	OrderStatusPaid:       true,
	OrderStatusProcessing: true,
}

// Cancellable сообщает, разрешена ли отмена из текущего статуса.
func (o *Order) Cancellable() bool {
	return cancellable[o.Status]
}

// CancelError возвращает nil, если отмена разрешена, либо ошибку перехода,
// объясняющую отказ для текущего статуса.
func (o *Order) CancelError() error {
	switch o.Status {
	case OrderStatusPending, OrderStatusPaid, OrderStatusProcessing:
		return nil
	case OrderStatusShipped:
		return ErrCancelShipped
	case OrderStatusDelivered:
		return ErrCancelDelivered
	case OrderStatusCancelled:
		return ErrAlreadyCancelled
	case OrderStatusRefunded:
		return ErrCancelRefunded
	default:
		return ErrTransitionNotAllowed
	}
}

// Cancel переводит заказ в статус cancelled.
// Для уже оплаченного заказа дополнительно помечает необходимость возврата денег.
// Восстановление остатков по позициям выполняет хранилище в той же транзакции.
func (o *Order) Cancel(now time.Time) error {
	if err := o.CancelError(); err != nil {
		return err
	}

	if o.PaymentStatus == PaymentStatusPaid {
		o.RefundDue = true
	}
	o.Status = OrderStatusCancelled
	o.UpdatedAt = now
	return nil
}

// MarkPaid фиксирует успешную оплату.
// Повторная оплата запрещена — возвращает ErrAlreadyPaid.
func (o *Order) MarkPaid(now time.Time) error {
	if o.PaymentStatus == PaymentStatusPaid {
		return ErrAlreadyPaid
	}
	o.PaymentStatus = PaymentStatusPaid
	o.Status = OrderStatusPaid
	o.UpdatedAt = now
	return nil
}

// statusTransitions — таблица допустимых административных переходов статуса.
// Заказ движется по жизненному циклу только вперёд; delivered и refunded
// терминальны. Перехода в cancelled здесь намеренно нет: отмена идёт через
// Cancel, где хранилище восстанавливает остатки в той же операции.
var statusTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending: {
		OrderStatusPaid:       true,
		OrderStatusProcessing: true,
		OrderStatusShipped:    true,
		OrderStatusDelivered:  true,
	},
	OrderStatusPaid: {
		OrderStatusProcessing: true,
		OrderStatusShipped:    true,
		OrderStatusDelivered:  true,
	},
	OrderStatusProcessing: {
		OrderStatusShipped:   true,
		OrderStatusDelivered: true,
	},
	OrderStatusShipped: {
		OrderStatusDelivered: true,
	},
	OrderStatusCancelled: {
		OrderStatusRefunded: true,
	},
}

// CanTransitionTo сообщает, разрешён ли административный переход в статус next.
func (o *Order) CanTransitionTo(next OrderStatus) bool {
	return statusTransitions[o.Status][next]
}

// ApplyStatus выполняет административный переход статуса по таблице переходов.
// Переход cancelled -> refunded закрывает помеченный возврат денег.
func (o *Order) ApplyStatus(next OrderStatus, now time.Time) error {
	if !o.CanTransitionTo(next) {
		return ErrTransitionNotAllowed
	}
	if next == OrderStatusRefunded {
		o.RefundDue = false
	}
	o.Status = next
	o.UpdatedAt = now
	return nil
}

// ValidStatus проверяет, что значение относится к известным статусам заказа.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	default:
		return false
	}
}
