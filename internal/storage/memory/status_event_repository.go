package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// statusEventRepositoryInMemory хранит историю статусов в памяти (для разработки/тестов).
type statusEventRepositoryInMemory struct {
	mu     sync.RWMutex
	events map[string][]domain.StatusEvent
}

// NewStatusEventRepository создаёт in-memory реализацию StatusEventRepository.
func NewStatusEventRepository() domain.StatusEventRepository {
	return &statusEventRepositoryInMemory{events: make(map[string][]domain.StatusEvent)}
}

// Append добавляет событие в историю заказа.
func (r *statusEventRepositoryInMemory) Append(event domain.StatusEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[event.OrderID] = append(r.events[event.OrderID], event)

	sort.SliceStable(r.events[event.OrderID], func(i, j int) bool {
		return r.events[event.OrderID][i].Occurred.Before(r.events[event.OrderID][j].Occurred)
	})

	return nil
}

// List возвращает события заказа в хронологическом порядке.
func (r *statusEventRepositoryInMemory) List(orderID string) ([]domain.StatusEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := r.events[orderID]
	result := make([]domain.StatusEvent, len(events))
	copy(result, events)
	return result, nil
}

var _ domain.StatusEventRepository = (*statusEventRepositoryInMemory)(nil)
