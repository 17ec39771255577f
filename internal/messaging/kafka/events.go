package kafka

import "time"

// EventType определяет тип события жизненного цикла заказа.
type EventType string

const (
	EventTypeOrderCreated    EventType = "order.created"
	EventTypeOrderPaid       EventType = "order.paid"
	EventTypeOrderCancelled  EventType = "order.cancelled"
	EventTypeRefundRequested EventType = "order.refund_requested"
	EventTypeStatusChanged   EventType = "order.status_changed"
)

// TopicOrderEvents — topic для событий заказов.
const TopicOrderEvents = "shop.order.events"

// OrderEvent представляет публикуемое событие заказа.
type OrderEvent struct {
	EventType     EventType `json:"event_type"`
	OrderID       string    `json:"order_id"`
	UserID        string    `json:"user_id"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	TotalAmount   string    `json:"total_amount"`
	Timestamp     time.Time `json:"timestamp"`
}
