package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// orderRepositoryInMemory — in-memory реализация OrderRepository.
// Держит ссылку на каталог, чтобы списание и восстановление остатков
// проходили в одной критической секции с изменением заказа.
type orderRepositoryInMemory struct {
	mu       sync.RWMutex
	items    map[string]domain.Order
	products *ProductRepository
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository(products *ProductRepository) domain.OrderRepository {
	return &orderRepositoryInMemory{
		items:    make(map[string]domain.Order),
		products: products,
	}
}

// Create сохраняет заказ и списывает остатки. Либо применяется всё, либо ничего.
func (r *orderRepositoryInMemory) Create(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return domain.ErrOrderVersionConflict
	}

	deltas := make(map[string]int64, len(order.Items))
	for _, item := range order.Items {
		deltas[item.ProductID] -= int64(item.Quantity)
	}
	if err := r.products.adjustAll(deltas); err != nil {
		return err
	}

	// Сохраняем копию, чтобы избежать непредсказуемых мутаций извне.
	r.items[order.ID] = cloneOrder(order)
	return nil
}

// Get возвращает заказ или ErrOrderNotFound.
func (r *orderRepositoryInMemory) Get(id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// GetOwned возвращает заказ владельца; чужой заказ неотличим от несуществующего.
func (r *orderRepositoryInMemory) GetOwned(id, userID string) (domain.Order, error) {
	order, err := r.Get(id)
	if err != nil {
		return domain.Order{}, err
	}
	if order.UserID != userID {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// ListByUser возвращает заказы пользователя, новые первыми.
func (r *orderRepositoryInMemory) ListByUser(userID string, limit int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		if order.UserID != userID {
			continue
		}
		result = append(result, cloneOrder(order))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// Save перезаписывает заказ, проверяя версию (optimistic locking).
func (r *orderRepositoryInMemory) Save(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saveLocked(order)
}

// CancelAndRestock сохраняет отменённый заказ и возвращает остатки атомарно.
// Конкурентная отмена упирается в проверку версии и не восстанавливает
// остатки второй раз.
func (r *orderRepositoryInMemory) CancelAndRestock(order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if current.Version != order.Version {
		return domain.ErrOrderVersionConflict
	}

	deltas := make(map[string]int64, len(order.Items))
	for _, item := range order.Items {
		deltas[item.ProductID] += int64(item.Quantity)
	}
	if err := r.products.adjustAll(deltas); err != nil {
		return err
	}

	return r.saveLocked(order)
}

// GetItemOwned возвращает позицию заказа владельца вместе с заказом.
func (r *orderRepositoryInMemory) GetItemOwned(itemID, userID string) (domain.OrderItem, domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.items {
		if order.UserID != userID {
			continue
		}
		for _, item := range order.Items {
			if item.ID == itemID {
				return item, cloneOrder(order), nil
			}
		}
	}
	return domain.OrderItem{}, domain.Order{}, domain.ErrOrderNotFound
}

func (r *orderRepositoryInMemory) saveLocked(order domain.Order) error {
	current, ok := r.items[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if current.Version != order.Version {
		return domain.ErrOrderVersionConflict
	}
	// Инкрементируем версию перед сохранением.
	order.Version++
	r.items[order.ID] = cloneOrder(order)
	return nil
}

func cloneOrder(src domain.Order) domain.Order {
	dst := src
	dst.Items = append([]domain.OrderItem(nil), src.Items...)
	return dst
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
