package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики операций движка заказов.
type OrderMetrics struct {
	// Счётчики операций
	ordersCreated     prometheus.Counter
	ordersCancelled   prometheus.Counter
	paymentsCompleted prometheus.Counter
	paymentsDeclined  prometheus.Counter
	refundsFlagged    prometheus.Counter

	// Гистограммы времени выполнения
	operationDuration *prometheus.HistogramVec

	// Счётчик событий истории статусов
	statusEvents prometheus.Counter
}

// NewOrderMetrics создаёт метрики движка заказов в default registerer.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_orders_created_total",
			Help: "Total number of orders created",
		}),
		ordersCancelled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_orders_cancelled_total",
			Help: "Total number of orders cancelled",
		}),
		paymentsCompleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_payments_completed_total",
			Help: "Total number of successfully completed payments",
		}),
		paymentsDeclined: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_payments_declined_total",
			Help: "Total number of declined or invalid payments",
		}),
		refundsFlagged: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_refunds_flagged_total",
			Help: "Total number of cancellations that flagged a refund",
		}),
		operationDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "shop_order_operation_duration_seconds",
			Help:    "Duration of order engine operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
		statusEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_order_status_events_total",
			Help: "Total number of order status events recorded",
		}),
	}
}

// RecordOrderCreated фиксирует успешное создание заказа.
func (m *OrderMetrics) RecordOrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// RecordOrderCancelled фиксирует успешную отмену заказа.
func (m *OrderMetrics) RecordOrderCancelled() {
	if m == nil {
		return
	}
	m.ordersCancelled.Inc()
}

// RecordPaymentCompleted фиксирует успешную оплату.
func (m *OrderMetrics) RecordPaymentCompleted() {
	if m == nil {
		return
	}
	m.paymentsCompleted.Inc()
}

// RecordPaymentDeclined фиксирует отклонённый или невалидный платёж.
func (m *OrderMetrics) RecordPaymentDeclined() {
	if m == nil {
		return
	}
	m.paymentsDeclined.Inc()
}

// RecordRefundFlagged фиксирует отмену, потребовавшую возврата средств.
func (m *OrderMetrics) RecordRefundFlagged() {
	if m == nil {
		return
	}
	m.refundsFlagged.Inc()
}

// RecordStatusEvent фиксирует запись события истории статусов.
func (m *OrderMetrics) RecordStatusEvent() {
	if m == nil {
		return
	}
	m.statusEvents.Inc()
}

// ObserveOperation фиксирует длительность операции движка.
func (m *OrderMetrics) ObserveOperation(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}
