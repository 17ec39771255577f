package domain_test

import (
	"testing"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

func TestReviewValidate_RatingBounds(t *testing.T) {
	cases := []struct {
		rating int32
		valid  bool
	}{
		{-1, false},
		{0, false},
		{1, true},
		{3, true},
		{5, true},
		{6, false},
		{10, false},
	}

	for _, tc := range cases {
		review := domain.Review{
			UserID:    "user-1",
			ProductID: "product-1",
			Rating:    tc.rating,
		}
		errs := review.Validate()
		if tc.valid && len(errs) != 0 {
			t.Fatalf("rating %d: expected valid, got %v", tc.rating, errs)
		}
		if !tc.valid && len(errs) == 0 {
			t.Fatalf("rating %d: expected validation error", tc.rating)
		}
	}
}

func TestEmptyReviewStats(t *testing.T) {
	stats := domain.EmptyReviewStats()

	if stats.TotalReviews != 0 || stats.AverageRating != 0 {
		t.Fatalf("unexpected empty stats: %+v", stats)
	}
	if len(stats.RatingDistribution) != 5 {
		t.Fatalf("expected 5 zero-filled buckets, got %d", len(stats.RatingDistribution))
	}
	for key, count := range stats.RatingDistribution {
		if count != 0 {
			t.Fatalf("bucket %s must be zero, got %d", key, count)
		}
	}
}
