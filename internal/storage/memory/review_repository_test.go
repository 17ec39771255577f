package memory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
)

func seedReview(t *testing.T, repo domain.ReviewRepository, id, userID, productID string, rating int32) {
	t.Helper()
	err := repo.Create(domain.Review{
		ID:        id,
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed review: %v", err)
	}
}

func TestReviewRepository_UniquePerUserProduct(t *testing.T) {
	repo := memory.NewReviewRepository()
	seedReview(t, repo, "review-1", "user-1", "product-1", 5)

	err := repo.Create(domain.Review{
		ID:        "review-2",
		UserID:    "user-1",
		ProductID: "product-1",
		Rating:    1,
	})
	if !errors.Is(err, domain.ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}

	// Другой пользователь того же товара — без конфликта.
	seedReview(t, repo, "review-3", "user-2", "product-1", 3)
}

func TestReviewRepository_Stats(t *testing.T) {
	repo := memory.NewReviewRepository()
	seedReview(t, repo, "review-1", "user-1", "product-1", 5)
	seedReview(t, repo, "review-2", "user-2", "product-1", 4)
	seedReview(t, repo, "review-3", "user-3", "product-1", 4)
	seedReview(t, repo, "review-4", "user-1", "product-2", 1)

	stats, err := repo.Stats("product-1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.TotalReviews != 3 {
		t.Fatalf("expected 3 reviews, got %d", stats.TotalReviews)
	}
	if stats.AverageRating != 4.33 {
		t.Fatalf("expected average 4.33, got %v", stats.AverageRating)
	}
	if stats.RatingDistribution["4"] != 2 || stats.RatingDistribution["5"] != 1 {
		t.Fatalf("unexpected distribution: %v", stats.RatingDistribution)
	}
	if stats.RatingDistribution["1"] != 0 || stats.RatingDistribution["2"] != 0 || stats.RatingDistribution["3"] != 0 {
		t.Fatalf("empty buckets must be zero-filled: %v", stats.RatingDistribution)
	}
}

func TestReviewRepository_StatsEmpty(t *testing.T) {
	repo := memory.NewReviewRepository()

	stats, err := repo.Stats("product-1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalReviews != 0 || stats.AverageRating != 0 {
		t.Fatalf("expected empty stats, got %+v", stats)
	}
	if len(stats.RatingDistribution) != 5 {
		t.Fatalf("expected zero-filled buckets, got %v", stats.RatingDistribution)
	}
}

func TestReviewRepository_OwnerScopedMutations(t *testing.T) {
	repo := memory.NewReviewRepository()
	seedReview(t, repo, "review-1", "user-1", "product-1", 4)

	review, err := repo.Get("review-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	review.UserID = "user-2"
	review.Rating = 1
	if err := repo.Update(review); !errors.Is(err, domain.ErrReviewNotFound) {
		t.Fatalf("foreign update must look like not found, got %v", err)
	}

	if err := repo.Delete("review-1", "user-2"); !errors.Is(err, domain.ErrReviewNotFound) {
		t.Fatalf("foreign delete must look like not found, got %v", err)
	}
	if err := repo.Delete("review-1", "user-1"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}
