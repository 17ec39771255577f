package domain

import "errors"

var (
	// Ошибка отсутствующего владельца заказа.
	ErrUserRequired = errors.New("user_id is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("total_amount must be non-negative")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("quantity must be greater than 0")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("unit price must be non-negative")
	// Ошибка несоответствия subtotal позиции произведению qty * unit_price.
	ErrSubtotalMismatch = errors.New("item subtotal does not match quantity * unit_price")
	// Ошибка несоответствия суммы заказа сумме позиций.
	ErrAmountMismatch = errors.New("order total does not match items sum")

	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	// Чужой заказ намеренно неотличим от несуществующего.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderVersionConflict сигнализирует о конфликте версий при сохранении.
	ErrOrderVersionConflict = errors.New("order version conflict")
	// ErrTransitionNotAllowed — переход статуса запрещён политикой жизненного цикла.
	ErrTransitionNotAllowed = errors.New("order status transition not allowed")
	// ErrCancelShipped — отгруженный заказ отменить нельзя.
	ErrCancelShipped = errors.New("order cannot be cancelled, already shipped")
	// ErrCancelDelivered — доставленный заказ отменить нельзя.
	ErrCancelDelivered = errors.New("order cannot be cancelled, already delivered")
	// ErrCancelRefunded — возвращённый заказ отменить нельзя.
	ErrCancelRefunded = errors.New("order cannot be cancelled, already refunded")
	// ErrAlreadyCancelled — повторная отмена запрещена.
	ErrAlreadyCancelled = errors.New("order is already cancelled")
	// ErrAlreadyPaid — повторная оплата запрещена.
	ErrAlreadyPaid = errors.New("order is already paid")
	// ErrPaymentDeclined — платёж отклонён шлюзом (восстановимая бизнес-ошибка).
	ErrPaymentDeclined = errors.New("payment declined")

	// ErrProductNotFound возвращается при отсутствии товара в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrCategoryNotFound возвращается при отсутствии категории.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrInsufficientStock — на складе меньше товара, чем запрошено.
	ErrInsufficientStock = errors.New("insufficient product inventory")
	// ErrSlugTaken — slug товара или категории уже занят.
	ErrSlugTaken = errors.New("slug is already taken")
	// Ошибка отсутствующего названия товара.
	ErrProductTitleRequired = errors.New("title is required")
	// Ошибка неположительной цены товара.
	ErrProductPriceInvalid = errors.New("price must be greater than 0")
	// Ошибка отрицательного остатка товара.
	ErrProductInventoryNegative = errors.New("inventory cannot be negative")

	// ErrCartNotFound возвращается, когда корзина пользователя ещё не создана.
	ErrCartNotFound = errors.New("cart not found")
	// ErrCartItemNotFound возвращается при отсутствии позиции корзины.
	ErrCartItemNotFound = errors.New("cart item not found")

	// ErrReviewNotFound возвращается при отсутствии отзыва.
	ErrReviewNotFound = errors.New("review not found")
	// ErrAlreadyReviewed — пара (user, product) уже имеет отзыв.
	ErrAlreadyReviewed = errors.New("you have already reviewed this product")
	// ErrRatingOutOfRange — оценка вне диапазона 1..5.
	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")
	// ErrReviewProvenance — отзыв требует доставленной покупки товара.
	ErrReviewProvenance = errors.New("review requires a delivered purchase of this product")

	// ErrUserNotFound возвращается при отсутствии пользователя.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken — email уже зарегистрирован.
	ErrEmailTaken = errors.New("email is already registered")
	// ErrInvalidCredentials — неверная пара email/пароль.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAddressNotFound возвращается при отсутствии адреса доставки.
	ErrAddressNotFound = errors.New("address not found")

	// Ошибки контракта идемпотентности.
	ErrIdempotencyKeyRequired         = errors.New("idempotency key is required")
	ErrIdempotencyRequestHashRequired = errors.New("idempotency request hash is required")
	ErrIdempotencyKeyAlreadyExists    = errors.New("idempotency key already exists")
	ErrIdempotencyHashMismatch        = errors.New("idempotency key reused with different request")
	ErrIdempotencyKeyNotFound         = errors.New("idempotency key not found")
)

// IsVersionConflict проверяет, является ли ошибка конфликтом версий.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrOrderVersionConflict)
}

// IsNotFound проверяет, относится ли ошибка к семейству "не найдено".
func IsNotFound(err error) bool {
	switch {
	case errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrCategoryNotFound),
		errors.Is(err, ErrCartNotFound),
		errors.Is(err, ErrCartItemNotFound),
		errors.Is(err, ErrReviewNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrAddressNotFound):
		return true
	default:
		return false
	}
}
