package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category группирует товары каталога.
type Category struct {
	ID          string
	Name        string
	Slug        string
	Description string
	CreatedAt   time.Time
}

// Product описывает товар каталога.
// Inventory — разделяемое изменяемое состояние: списывается при создании заказа
// и восстанавливается при его отмене. Инвариант: inventory >= 0 после любой
// закоммиченной транзакции.
type Product struct {
	ID          string
	Title       string
	Slug        string
	Description string
	Price       decimal.Decimal
	Inventory   int64
	CategoryID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate проверяет поля товара перед сохранением.
func (p *Product) Validate() []error {
	var errs []error

	if p.Title == "" {
		errs = append(errs, ErrProductTitleRequired)
	}
	if !p.Price.IsPositive() {
		errs = append(errs, ErrProductPriceInvalid)
	}
	if p.Inventory < 0 {
		errs = append(errs, ErrProductInventoryNegative)
	}

	return errs
}

// ProductFilter задаёт параметры выборки каталога.
type ProductFilter struct {
	CategoryID string
	// PriceOrdering: "price" — по возрастанию, "-price" — по убыванию, "" — по дате создания.
	PriceOrdering string
	Limit         int
}
