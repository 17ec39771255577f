package reviews

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// Service управляет отзывами: право на отзыв подтверждается позицией
// доставленного заказа, пара (пользователь, товар) уникальна.
type Service struct {
	reviews  domain.ReviewRepository
	orders   domain.OrderRepository
	products domain.ProductRepository
	logger   *log.Entry
	now      func() time.Time
}

// NewService создаёт сервис отзывов.
func NewService(
	reviews domain.ReviewRepository,
	orders domain.OrderRepository,
	products domain.ProductRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "reviews")
	}
	return &Service{
		reviews:  reviews,
		orders:   orders,
		products: products,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create публикует отзыв. orderItemID должен указывать на позицию
// доставленного заказа автора с тем же товаром.
func (s *Service) Create(userID, productID, orderItemID string, rating int32, comment string) (domain.Review, error) {
	if _, err := s.products.Get(productID); err != nil {
		return domain.Review{}, err
	}

	already, err := s.reviews.Exists(userID, productID)
	if err != nil {
		return domain.Review{}, fmt.Errorf("check existing review: %w", err)
	}
	if already {
		return domain.Review{}, domain.ErrAlreadyReviewed
	}

	if err := s.checkProvenance(userID, productID, orderItemID); err != nil {
		return domain.Review{}, err
	}

	now := s.now()
	review := domain.Review{
		ID:          uuid.NewString(),
		UserID:      userID,
		ProductID:   productID,
		OrderItemID: orderItemID,
		Rating:      rating,
		Comment:     comment,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if verr := validationError(review.Validate()); verr != nil {
		return domain.Review{}, verr
	}

	if err := s.reviews.Create(review); err != nil {
		return domain.Review{}, err
	}

	s.logger.WithFields(log.Fields{
		"review_id":  review.ID,
		"product_id": productID,
		"rating":     rating,
	}).Info("review created")

	return review, nil
}

// Update изменяет оценку и комментарий отзыва владельца.
func (s *Service) Update(reviewID, userID string, rating int32, comment string) (domain.Review, error) {
	review, err := s.reviews.Get(reviewID)
	if err != nil {
		return domain.Review{}, err
	}
	if review.UserID != userID {
		// Чужой отзыв неотличим от несуществующего.
		return domain.Review{}, domain.ErrReviewNotFound
	}

	review.Rating = rating
	review.Comment = comment
	review.UpdatedAt = s.now()
	if verr := validationError(review.Validate()); verr != nil {
		return domain.Review{}, verr
	}

	if err := s.reviews.Update(review); err != nil {
		return domain.Review{}, err
	}
	return review, nil
}

// Delete удаляет отзыв владельца.
func (s *Service) Delete(reviewID, userID string) error {
	return s.reviews.Delete(reviewID, userID)
}

// ListByProduct возвращает отзывы товара.
func (s *Service) ListByProduct(productID string) ([]domain.Review, error) {
	if _, err := s.products.Get(productID); err != nil {
		return nil, err
	}
	return s.reviews.ListByProduct(productID)
}

// ListByUser возвращает отзывы пользователя.
func (s *Service) ListByUser(userID string) ([]domain.Review, error) {
	return s.reviews.ListByUser(userID)
}

// Stats возвращает агрегаты отзывов товара: число, среднее и гистограмму.
func (s *Service) Stats(productID string) (domain.ReviewStats, error) {
	if _, err := s.products.Get(productID); err != nil {
		return domain.ReviewStats{}, err
	}
	return s.reviews.Stats(productID)
}

// checkProvenance проверяет право на отзыв: позиция принадлежит заказу
// автора, заказ доставлен, товар позиции совпадает с рецензируемым.
func (s *Service) checkProvenance(userID, productID, orderItemID string) error {
	if orderItemID == "" {
		return domain.ErrReviewProvenance
	}

	item, order, err := s.orders.GetItemOwned(orderItemID, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.ErrReviewProvenance
		}
		return fmt.Errorf("lookup order item: %w", err)
	}
	if item.ProductID != productID {
		return domain.ErrReviewProvenance
	}
	if order.Status != domain.OrderStatusDelivered {
		return domain.ErrReviewProvenance
	}
	return nil
}

func validationError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	verr := domain.NewValidationError()
	for _, err := range errs {
		switch err {
		case domain.ErrRatingOutOfRange:
			verr.Add("rating", "Rating must be between 1 and 5.")
		default:
			verr.Add("review", err.Error())
		}
	}
	return verr
}
