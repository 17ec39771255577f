package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository создаёт PostgreSQL-реализацию ReviewRepository.
func NewReviewRepository(store *Store) domain.ReviewRepository {
	return &reviewRepository{db: store.DB()}
}

func (r *reviewRepository) Create(review domain.Review) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reviews (id, user_id, product_id, order_item_id, rating, comment, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		review.ID, review.UserID, review.ProductID, nullIfEmpty(review.OrderItemID),
		review.Rating, review.Comment, review.CreatedAt, review.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyReviewed
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

const reviewColumns = `id, user_id, product_id, COALESCE(order_item_id::text, ''), rating, comment, created_at, updated_at`

func (r *reviewRepository) Get(id string) (domain.Review, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var review domain.Review
	err := r.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id,
	).Scan(
		&review.ID, &review.UserID, &review.ProductID, &review.OrderItemID,
		&review.Rating, &review.Comment, &review.CreatedAt, &review.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Review{}, domain.ErrReviewNotFound
		}
		return domain.Review{}, fmt.Errorf("select review: %w", err)
	}
	return review, nil
}

func (r *reviewRepository) Update(review domain.Review) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE reviews
		SET rating = $1, comment = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5
	`, review.Rating, review.Comment, review.UpdatedAt, review.ID, review.UserID)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) Delete(id, userID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM reviews WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) ListByProduct(productID string) ([]domain.Review, error) {
	return r.list(`product_id = $1`, productID)
}

func (r *reviewRepository) ListByUser(userID string) ([]domain.Review, error) {
	return r.list(`user_id = $1`, userID)
}

func (r *reviewRepository) list(where string, arg interface{}) ([]domain.Review, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE `+where+` ORDER BY created_at DESC, id DESC`, arg)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(
			&review.ID, &review.UserID, &review.ProductID, &review.OrderItemID,
			&review.Rating, &review.Comment, &review.CreatedAt, &review.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, nil
}

// Stats агрегирует отзывы товара на стороне базы.
func (r *reviewRepository) Stats(productID string) (domain.ReviewStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	stats := domain.EmptyReviewStats()

	rows, err := r.db.QueryContext(ctx, `
		SELECT rating, COUNT(*)
		FROM reviews
		WHERE product_id = $1
		GROUP BY rating
	`, productID)
	if err != nil {
		return domain.ReviewStats{}, fmt.Errorf("review stats: %w", err)
	}
	defer rows.Close()

	var sum int64
	for rows.Next() {
		var rating int
		var count int64
		if err := rows.Scan(&rating, &count); err != nil {
			return domain.ReviewStats{}, fmt.Errorf("scan review stats: %w", err)
		}
		stats.TotalReviews += count
		sum += int64(rating) * count
		if rating >= 1 && rating <= 5 {
			stats.RatingDistribution[strconv.Itoa(rating)] = count
		}
	}
	if err := rows.Err(); err != nil {
		return domain.ReviewStats{}, fmt.Errorf("iterate review stats: %w", err)
	}

	if stats.TotalReviews > 0 {
		avg := float64(sum) / float64(stats.TotalReviews)
		stats.AverageRating = math.Round(avg*100) / 100
	}
	return stats, nil
}

func (r *reviewRepository) Exists(userID, productID string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM reviews WHERE user_id = $1 AND product_id = $2`, userID, productID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check review exists: %w", err)
	}
	return true, nil
}

var _ domain.ReviewRepository = (*reviewRepository)(nil)
