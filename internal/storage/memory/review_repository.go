package memory

import (
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// reviewRepositoryInMemory — in-memory реализация ReviewRepository.
type reviewRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Review
}

// NewReviewRepository возвращает in-memory хранилище отзывов.
func NewReviewRepository() domain.ReviewRepository {
	return &reviewRepositoryInMemory{items: make(map[string]domain.Review)}
}

// Create сохраняет отзыв, воспроизводя уникальный констрейнт (user, product).
func (r *reviewRepositoryInMemory) Create(review domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.UserID == review.UserID && existing.ProductID == review.ProductID {
			return domain.ErrAlreadyReviewed
		}
	}
	r.items[review.ID] = review
	return nil
}

func (r *reviewRepositoryInMemory) Get(id string) (domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	review, ok := r.items[id]
	if !ok {
		return domain.Review{}, domain.ErrReviewNotFound
	}
	return review, nil
}

// Update применяет изменения только к отзыву владельца.
func (r *reviewRepositoryInMemory) Update(review domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[review.ID]
	if !ok || current.UserID != review.UserID {
		return domain.ErrReviewNotFound
	}
	review.CreatedAt = current.CreatedAt
	review.UpdatedAt = time.Now().UTC()
	r.items[review.ID] = review
	return nil
}

// Delete удаляет только отзыв владельца.
func (r *reviewRepositoryInMemory) Delete(id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[id]
	if !ok || current.UserID != userID {
		return domain.ErrReviewNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *reviewRepositoryInMemory) ListByProduct(productID string) ([]domain.Review, error) {
	return r.list(func(review domain.Review) bool {
		return review.ProductID == productID
	}), nil
}

func (r *reviewRepositoryInMemory) ListByUser(userID string) ([]domain.Review, error) {
	return r.list(func(review domain.Review) bool {
		return review.UserID == userID
	}), nil
}

// Stats считает агрегаты явной редукцией по отзывам товара: O(n) по строкам.
func (r *reviewRepositoryInMemory) Stats(productID string) (domain.ReviewStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := domain.EmptyReviewStats()
	var sum int64
	for _, review := range r.items {
		if review.ProductID != productID {
			continue
		}
		stats.TotalReviews++
		sum += int64(review.Rating)
		stats.RatingDistribution[strconv.Itoa(int(review.Rating))]++
	}

	if stats.TotalReviews > 0 {
		avg := float64(sum) / float64(stats.TotalReviews)
		stats.AverageRating = math.Round(avg*100) / 100
	}

	return stats, nil
}

func (r *reviewRepositoryInMemory) Exists(userID, productID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, review := range r.items {
		if review.UserID == userID && review.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (r *reviewRepositoryInMemory) list(match func(domain.Review) bool) []domain.Review {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Review, 0)
	for _, review := range r.items {
		if match(review) {
			result = append(result, review)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result
}

var _ domain.ReviewRepository = (*reviewRepositoryInMemory)(nil)
