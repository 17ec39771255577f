package domain

import "time"

// StatusEvent описывает событие в жизненном цикле заказа.
// История событий append-only и отдаётся эндпоинтом трекинга.
type StatusEvent struct {
	OrderID     string
	Status      OrderStatus
	Description string
	Occurred    time.Time
}
