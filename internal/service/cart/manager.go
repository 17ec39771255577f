package cart

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// View — корзина с вычисленными агрегатами для выдачи наружу.
// Цены не хранятся в корзине, а считаются по текущему каталогу.
type View struct {
	Cart       domain.Cart
	TotalItems int32
	TotalPrice decimal.Decimal
	// Prices — текущая цена товара по каждой позиции, ключ — ID позиции.
	Prices map[string]decimal.Decimal
}

// Manager управляет корзиной пользователя.
type Manager struct {
	carts    domain.CartRepository
	products domain.ProductRepository
	logger   *log.Entry
}

// NewManager создаёт менеджер корзин.
func NewManager(carts domain.CartRepository, products domain.ProductRepository, logger *log.Entry) *Manager {
	if logger == nil {
		logger = log.WithField("component", "cart-manager")
	}
	return &Manager{carts: carts, products: products, logger: logger}
}

// Get возвращает корзину пользователя с агрегатами, лениво создавая пустую.
func (m *Manager) Get(userID string) (View, error) {
	cart, err := m.carts.GetOrCreate(userID)
	if err != nil {
		return View{}, fmt.Errorf("load cart: %w", err)
	}
	return m.buildView(cart)
}

// AddItem добавляет товар в корзину. Повторное добавление того же товара
// увеличивает количество существующей позиции.
func (m *Manager) AddItem(userID, productID string, qty int32) (View, error) {
	verr := domain.NewValidationError()
	if qty <= 0 {
		verr.Add("quantity", "Quantity must be greater than 0.")
	}

	product, err := m.products.Get(productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			verr.Add("product_id", fmt.Sprintf("Product with id %s does not exist.", productID))
			return View{}, verr
		}
		return View{}, fmt.Errorf("lookup product: %w", err)
	}
	if !verr.Empty() {
		return View{}, verr
	}
	if product.Inventory < int64(qty) {
		verr.Add("quantity", "Insufficient inventory.")
		return View{}, verr
	}

	if _, err := m.carts.AddItem(userID, productID, qty); err != nil {
		return View{}, fmt.Errorf("add cart item: %w", err)
	}

	cart, err := m.carts.Get(userID)
	if err != nil {
		return View{}, fmt.Errorf("reload cart: %w", err)
	}
	return m.buildView(cart)
}

// SetItemQuantity устанавливает количество позиции. Ноль удаляет позицию.
func (m *Manager) SetItemQuantity(userID, itemID string, qty int32) (View, error) {
	if qty < 0 {
		verr := domain.NewValidationError()
		verr.Add("quantity", "Quantity must not be negative.")
		return View{}, verr
	}
	if qty == 0 {
		if err := m.carts.RemoveItem(userID, itemID); err != nil {
			return View{}, err
		}
	} else {
		if _, err := m.carts.UpdateItemQuantity(userID, itemID, qty); err != nil {
			return View{}, err
		}
	}

	cart, err := m.carts.Get(userID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return m.Get(userID)
		}
		return View{}, fmt.Errorf("reload cart: %w", err)
	}
	return m.buildView(cart)
}

// AdjustItem изменяет количество позиции на delta (+1 / -1).
// Уменьшение до нуля удаляет позицию.
func (m *Manager) AdjustItem(userID, itemID string, delta int32) (View, error) {
	item, err := m.carts.GetItem(userID, itemID)
	if err != nil {
		return View{}, err
	}
	return m.SetItemQuantity(userID, itemID, item.Quantity+delta)
}

// RemoveItem удаляет позицию из корзины владельца.
func (m *Manager) RemoveItem(userID, itemID string) (View, error) {
	if err := m.carts.RemoveItem(userID, itemID); err != nil {
		return View{}, err
	}
	return m.Get(userID)
}

// Clear удаляет все позиции корзины.
func (m *Manager) Clear(userID string) error {
	if err := m.carts.Clear(userID); err != nil && !errors.Is(err, domain.ErrCartNotFound) {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// buildView считает агрегаты по текущим ценам каталога. Товар, удалённый
// из каталога после добавления в корзину, учитывается с нулевой ценой.
func (m *Manager) buildView(cart domain.Cart) (View, error) {
	view := View{
		Cart:       cart,
		TotalPrice: decimal.Zero,
		Prices:     make(map[string]decimal.Decimal, len(cart.Items)),
	}

	for _, item := range cart.Items {
		view.TotalItems += item.Quantity

		product, err := m.products.Get(item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				m.logger.WithField("product_id", item.ProductID).Warn("cart references missing product")
				view.Prices[item.ID] = decimal.Zero
				continue
			}
			return View{}, fmt.Errorf("lookup product: %w", err)
		}

		view.Prices[item.ID] = product.Price
		view.TotalPrice = view.TotalPrice.Add(product.Price.Mul(decimal.NewFromInt32(item.Quantity)))
	}

	return view, nil
}
