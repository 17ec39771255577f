package domain

import (
	"strconv"
	"time"
)

// Review — отзыв пользователя о товаре.
// Пара (user, product) уникальна; право на отзыв подтверждается позицией
// доставленного заказа (provenance).
type Review struct {
	ID        string
	UserID    string
	ProductID string
	// OrderItemID — позиция доставленного заказа, подтверждающая покупку.
	OrderItemID string
	// Rating — целочисленная оценка в диапазоне [1, 5].
	Rating    int32
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет поля отзыва.
func (r *Review) Validate() []error {
	var errs []error

	if r.UserID == "" {
		errs = append(errs, ErrUserRequired)
	}
	if r.ProductID == "" {
		errs = append(errs, ErrProductNotFound)
	}
	if r.Rating < 1 || r.Rating > 5 {
		errs = append(errs, ErrRatingOutOfRange)
	}

	return errs
}

// ReviewStats — агрегированная статистика отзывов товара.
type ReviewStats struct {
	TotalReviews int64
	// AverageRating — среднее арифметическое, округлённое до 2 знаков; 0 без отзывов.
	AverageRating float64
	// RatingDistribution — гистограмма по значениям оценки "1".."5",
	// пустые корзины заполняются нулями.
	RatingDistribution map[string]int64
}

// EmptyReviewStats возвращает статистику товара без отзывов.
func EmptyReviewStats() ReviewStats {
	dist := make(map[string]int64, 5)
	for i := 1; i <= 5; i++ {
		dist[strconv.Itoa(i)] = 0
	}
	return ReviewStats{RatingDistribution: dist}
}
