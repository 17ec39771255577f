package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// ProductRepository — in-memory реализация каталога для локальной разработки и тестов.
// Тип экспортирован: репозиторий заказов использует его для атомарного
// списания и восстановления остатков.
type ProductRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository возвращает пустой in-memory каталог.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{items: make(map[string]domain.Product)}
}

// Create сохраняет товар; занятый slug возвращает ErrSlugTaken.
func (r *ProductRepository) Create(p domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Slug != "" && existing.Slug == p.Slug {
			return domain.ErrSlugTaken
		}
	}
	r.items[p.ID] = p
	return nil
}

// Get возвращает товар или ErrProductNotFound.
func (r *ProductRepository) Get(id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

// GetBySlug возвращает товар по slug.
func (r *ProductRepository) GetBySlug(slug string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.items {
		if p.Slug == slug {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrProductNotFound
}

// List возвращает товары с фильтрацией по категории и сортировкой по цене.
func (r *ProductRepository) List(f domain.ProductFilter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, p := range r.items {
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		result = append(result, p)
	}

	switch f.PriceOrdering {
	case "price":
		sort.Slice(result, func(i, j int) bool {
			return result[i].Price.LessThan(result[j].Price)
		})
	case "-price":
		sort.Slice(result, func(i, j int) bool {
			return result[i].Price.GreaterThan(result[j].Price)
		})
	default:
		sort.Slice(result, func(i, j int) bool {
			if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
				return result[i].CreatedAt.After(result[j].CreatedAt)
			}
			return result[i].ID > result[j].ID
		})
	}

	if f.Limit > 0 && len(result) > f.Limit {
		result = result[:f.Limit]
	}

	return result, nil
}

// Update перезаписывает товар.
func (r *ProductRepository) Update(p domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	r.items[p.ID] = p
	return nil
}

// Delete удаляет товар.
func (r *ProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.items, id)
	return nil
}

// adjustAll применяет пакет изменений остатков атомарно: либо все позиции
// проходят проверку inventory >= 0, либо ни одно изменение не применяется.
func (r *ProductRepository) adjustAll(deltas map[string]int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, delta := range deltas {
		p, ok := r.items[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		if p.Inventory+delta < 0 {
			return domain.ErrInsufficientStock
		}
	}

	now := time.Now().UTC()
	for id, delta := range deltas {
		p := r.items[id]
		p.Inventory += delta
		p.UpdatedAt = now
		r.items[id] = p
	}

	return nil
}

var _ domain.ProductRepository = (*ProductRepository)(nil)
