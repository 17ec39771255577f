package domain

import "time"

// OrderRepository описывает требования к хранилищу заказов.
// Операции, совмещающие смену статуса и изменение остатков, обязаны быть
// атомарными: частично созданных заказов и частично восстановленных
// остатков быть не должно.
type OrderRepository interface {
	// Create сохраняет заказ с позициями и списывает остатки товаров одной
	// атомарной операцией. При нехватке остатка возвращает ErrInsufficientStock,
	// и ни одна строка не сохраняется.
	Create(order Order) error
	// Get возвращает заказ по идентификатору или ErrOrderNotFound.
	Get(id string) (Order, error)
	// GetOwned возвращает заказ владельца. Чужой заказ неотличим от
	// несуществующего: в обоих случаях ErrOrderNotFound.
	GetOwned(id, userID string) (Order, error)
	// ListByUser возвращает заказы пользователя, новые первыми.
	ListByUser(userID string, limit int) ([]Order, error)
	// Save применяет обновления к заказу с учётом optimistic locking.
	Save(order Order) error
	// CancelAndRestock сохраняет отменённый заказ и возвращает остатки по каждой
	// позиции одной атомарной операцией. Конкурентная отмена того же заказа
	// завершается ErrOrderVersionConflict, повторного восстановления не происходит.
	CancelAndRestock(order Order) error
	// GetItemOwned возвращает позицию заказа владельца вместе с самим заказом
	// (нужно для проверки provenance отзывов).
	GetItemOwned(itemID, userID string) (OrderItem, Order, error)
}

// ProductRepository описывает хранилище каталога товаров.
type ProductRepository interface {
	Create(p Product) error
	Get(id string) (Product, error)
	GetBySlug(slug string) (Product, error)
	List(f ProductFilter) ([]Product, error)
	Update(p Product) error
	Delete(id string) error
}

// CategoryRepository описывает хранилище категорий каталога.
type CategoryRepository interface {
	Create(c Category) error
	Get(id string) (Category, error)
	List() ([]Category, error)
	// ProductCount возвращает число товаров категории.
	ProductCount(categoryID string) (int64, error)
}

// CartRepository описывает хранилище корзин.
// Все операции скоупированы на владельца: чужая позиция корзины
// неотличима от несуществующей.
type CartRepository interface {
	// GetOrCreate лениво создаёт корзину при первом обращении.
	GetOrCreate(userID string) (Cart, error)
	// Get возвращает корзину с позициями или ErrCartNotFound.
	Get(userID string) (Cart, error)
	// AddItem добавляет товар в корзину; существующая позиция увеличивает количество.
	AddItem(userID, productID string, qty int32) (CartItem, error)
	GetItem(userID, itemID string) (CartItem, error)
	UpdateItemQuantity(userID, itemID string, qty int32) (CartItem, error)
	RemoveItem(userID, itemID string) error
	// Clear удаляет все позиции корзины.
	Clear(userID string) error
}

// ReviewRepository описывает хранилище отзывов.
type ReviewRepository interface {
	// Create сохраняет отзыв; нарушение уникальности (user, product)
	// возвращает ErrAlreadyReviewed.
	Create(r Review) error
	Get(id string) (Review, error)
	// Update применяет изменения только к отзыву владельца.
	Update(r Review) error
	// Delete удаляет только отзыв владельца.
	Delete(id, userID string) error
	ListByProduct(productID string) ([]Review, error)
	ListByUser(userID string) ([]Review, error)
	// Stats считает агрегаты по отзывам товара. O(n) по подходящим строкам,
	// если хранилище не умеет индексно-ускоренные агрегаты.
	Stats(productID string) (ReviewStats, error)
	Exists(userID, productID string) (bool, error)
}

// UserRepository описывает хранилище пользователей и их адресов.
type UserRepository interface {
	Create(u User) error
	Get(id string) (User, error)
	GetByEmail(email string) (User, error)
	CreateAddress(a Address) error
	// GetAddress возвращает адрес владельца или ErrAddressNotFound.
	GetAddress(id, userID string) (Address, error)
}

// StatusEventRepository хранит историю статусов заказа.
type StatusEventRepository interface {
	Append(event StatusEvent) error
	List(orderID string) ([]StatusEvent, error)
}

// IdempotencyRepository хранит состояние обработки запросов по Idempotency-Key.
type IdempotencyRepository interface {
	CreateProcessing(key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(key string) (IdempotencyRecord, error)
	MarkDone(key string, responseBody []byte, httpStatus int) error
	MarkFailed(key string, responseBody []byte, httpStatus int) error
	DeleteExpired(before time.Time, limit int) (int, error)
}

// OrderEventPublisher публикует события жизненного цикла заказа наружу.
// Публикация best-effort: выполняется после коммита и не влияет на результат операции.
type OrderEventPublisher interface {
	PublishOrderEvent(eventType string, order Order) error
}
