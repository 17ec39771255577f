package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// cartRepositoryInMemory — in-memory реализация CartRepository.
type cartRepositoryInMemory struct {
	mu sync.Mutex
	// carts ключуется по userID: у пользователя ровно одна корзина.
	carts map[string]domain.Cart
}

// NewCartRepository возвращает in-memory хранилище корзин.
func NewCartRepository() domain.CartRepository {
	return &cartRepositoryInMemory{carts: make(map[string]domain.Cart)}
}

// GetOrCreate лениво создаёт корзину при первом обращении.
func (r *cartRepositoryInMemory) GetOrCreate(userID string) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return cloneCart(r.getOrCreateLocked(userID)), nil
}

// Get возвращает корзину с позициями или ErrCartNotFound.
func (r *cartRepositoryInMemory) Get(userID string) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[userID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	return cloneCart(cart), nil
}

// AddItem добавляет товар; существующая позиция увеличивает количество.
func (r *cartRepositoryInMemory) AddItem(userID, productID string, qty int32) (domain.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	cart := r.getOrCreateLocked(userID)

	for i, item := range cart.Items {
		if item.ProductID == productID {
			cart.Items[i].Quantity += qty
			cart.Items[i].UpdatedAt = now
			cart.UpdatedAt = now
			r.carts[userID] = cart
			return cart.Items[i], nil
		}
	}

	item := domain.CartItem{
		ID:        uuid.NewString(),
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  qty,
		CreatedAt: now,
		UpdatedAt: now,
	}
	cart.Items = append(cart.Items, item)
	cart.UpdatedAt = now
	r.carts[userID] = cart
	return item, nil
}

func (r *cartRepositoryInMemory) GetItem(userID, itemID string) (domain.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[userID]
	if !ok {
		return domain.CartItem{}, domain.ErrCartItemNotFound
	}
	for _, item := range cart.Items {
		if item.ID == itemID {
			return item, nil
		}
	}
	return domain.CartItem{}, domain.ErrCartItemNotFound
}

func (r *cartRepositoryInMemory) UpdateItemQuantity(userID, itemID string, qty int32) (domain.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[userID]
	if !ok {
		return domain.CartItem{}, domain.ErrCartItemNotFound
	}
	for i, item := range cart.Items {
		if item.ID == itemID {
			cart.Items[i].Quantity = qty
			cart.Items[i].UpdatedAt = time.Now().UTC()
			r.carts[userID] = cart
			return cart.Items[i], nil
		}
	}
	return domain.CartItem{}, domain.ErrCartItemNotFound
}

func (r *cartRepositoryInMemory) RemoveItem(userID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[userID]
	if !ok {
		return domain.ErrCartItemNotFound
	}
	for i, item := range cart.Items {
		if item.ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			r.carts[userID] = cart
			return nil
		}
	}
	return domain.ErrCartItemNotFound
}

// Clear удаляет все позиции корзины.
func (r *cartRepositoryInMemory) Clear(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[userID]
	if !ok {
		return domain.ErrCartNotFound
	}
	cart.Items = nil
	cart.UpdatedAt = time.Now().UTC()
	r.carts[userID] = cart
	return nil
}

func (r *cartRepositoryInMemory) getOrCreateLocked(userID string) domain.Cart {
	if cart, ok := r.carts[userID]; ok {
		return cart
	}
	now := time.Now().UTC()
	cart := domain.Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.carts[userID] = cart
	return cart
}

func cloneCart(src domain.Cart) domain.Cart {
	dst := src
	dst.Items = append([]domain.CartItem(nil), src.Items...)
	sort.Slice(dst.Items, func(i, j int) bool {
		if !dst.Items[i].CreatedAt.Equal(dst.Items[j].CreatedAt) {
			return dst.Items[i].CreatedAt.Before(dst.Items[j].CreatedAt)
		}
		return dst.Items[i].ID < dst.Items[j].ID
	})
	return dst
}

var _ domain.CartRepository = (*cartRepositoryInMemory)(nil)
