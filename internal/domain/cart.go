package domain

import "time"

// CartItem — пара (товар, количество) в корзине.
// Уникальна в рамках (cart, product): повторное добавление товара
// увеличивает количество существующей позиции.
type CartItem struct {
	ID        string
	CartID    string
	ProductID string
	Quantity  int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Cart — корзина пользователя. Создаётся лениво при первом обращении,
// очищается (позиции удаляются) при успешном оформлении заказа.
type Cart struct {
	ID        string
	UserID    string
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ItemCount возвращает суммарное количество единиц товара в корзине.
func (c *Cart) ItemCount() int32 {
	var total int32
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}
