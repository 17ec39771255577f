package memory

import (
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// categoryRepositoryInMemory — in-memory реализация CategoryRepository.
type categoryRepositoryInMemory struct {
	mu       sync.RWMutex
	items    map[string]domain.Category
	products *ProductRepository
}

// NewCategoryRepository возвращает in-memory хранилище категорий.
// products нужен для подсчёта товаров категории.
func NewCategoryRepository(products *ProductRepository) domain.CategoryRepository {
	return &categoryRepositoryInMemory{
		items:    make(map[string]domain.Category),
		products: products,
	}
}

func (r *categoryRepositoryInMemory) Create(c domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Slug != "" && existing.Slug == c.Slug {
			return domain.ErrSlugTaken
		}
	}
	r.items[c.ID] = c
	return nil
}

func (r *categoryRepositoryInMemory) Get(id string) (domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[id]
	if !ok {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	return c, nil
}

func (r *categoryRepositoryInMemory) List() ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Category, 0, len(r.items))
	for _, c := range r.items {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *categoryRepositoryInMemory) ProductCount(categoryID string) (int64, error) {
	products, err := r.products.List(domain.ProductFilter{CategoryID: categoryID})
	if err != nil {
		return 0, err
	}
	return int64(len(products)), nil
}

var _ domain.CategoryRepository = (*categoryRepositoryInMemory)(nil)
