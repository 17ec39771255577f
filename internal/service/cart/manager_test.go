package cart

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
)

func newManagerFixture(t *testing.T) (*Manager, *memory.ProductRepository) {
	t.Helper()

	products := memory.NewProductRepository()
	carts := memory.NewCartRepository()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, products.Create(domain.Product{
		ID:        "prod-1",
		Title:     "Mechanical Keyboard",
		Slug:      "mechanical-keyboard",
		Price:     decimal.RequireFromString("99.99"),
		Inventory: 10,
		CreatedAt: now,
		UpdatedAt: now,
	}))
	require.NoError(t, products.Create(domain.Product{
		ID:        "prod-2",
		Title:     "USB Hub",
		Slug:      "usb-hub",
		Price:     decimal.RequireFromString("25.50"),
		Inventory: 3,
		CreatedAt: now,
		UpdatedAt: now,
	}))

	return NewManager(carts, products, nil), products
}

func TestManagerGet_LazyCreate(t *testing.T) {
	m, _ := newManagerFixture(t)

	view, err := m.Get("user-1")
	require.NoError(t, err)

	assert.Equal(t, "user-1", view.Cart.UserID)
	assert.Empty(t, view.Cart.Items)
	assert.Zero(t, view.TotalItems)
	assert.True(t, view.TotalPrice.IsZero())
}

func TestManagerAddItem_Totals(t *testing.T) {
	m, _ := newManagerFixture(t)

	_, err := m.AddItem("user-1", "prod-1", 2)
	require.NoError(t, err)
	view, err := m.AddItem("user-1", "prod-2", 1)
	require.NoError(t, err)

	assert.Equal(t, int32(3), view.TotalItems)
	assert.True(t, view.TotalPrice.Equal(decimal.RequireFromString("225.48")),
		"total = %s", view.TotalPrice)
}

func TestManagerAddItem_MergesDuplicates(t *testing.T) {
	m, _ := newManagerFixture(t)

	_, err := m.AddItem("user-1", "prod-1", 1)
	require.NoError(t, err)
	view, err := m.AddItem("user-1", "prod-1", 2)
	require.NoError(t, err)

	require.Len(t, view.Cart.Items, 1)
	assert.Equal(t, int32(3), view.Cart.Items[0].Quantity)
}

func TestManagerAddItem_Validation(t *testing.T) {
	m, _ := newManagerFixture(t)

	_, err := m.AddItem("user-1", "no-such", 1)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["product_id"], "Product with id no-such does not exist.")

	_, err = m.AddItem("user-1", "prod-1", 0)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["quantity"], "Quantity must be greater than 0.")

	_, err = m.AddItem("user-1", "prod-2", 5)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["quantity"], "Insufficient inventory.")
}

func TestManagerAdjustItem(t *testing.T) {
	m, _ := newManagerFixture(t)

	view, err := m.AddItem("user-1", "prod-1", 1)
	require.NoError(t, err)
	itemID := view.Cart.Items[0].ID

	view, err = m.AdjustItem("user-1", itemID, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), view.Cart.Items[0].Quantity)

	// Уменьшение до нуля удаляет позицию.
	view, err = m.AdjustItem("user-1", itemID, -1)
	require.NoError(t, err)
	view, err = m.AdjustItem("user-1", itemID, -1)
	require.NoError(t, err)
	assert.Empty(t, view.Cart.Items)
}

func TestManagerAdjustItem_ForeignItemMasked(t *testing.T) {
	m, _ := newManagerFixture(t)

	view, err := m.AddItem("user-1", "prod-1", 1)
	require.NoError(t, err)

	_, err = m.AdjustItem("user-2", view.Cart.Items[0].ID, 1)
	assert.ErrorIs(t, err, domain.ErrCartItemNotFound)
}

func TestManagerRemoveAndClear(t *testing.T) {
	m, _ := newManagerFixture(t)

	view, err := m.AddItem("user-1", "prod-1", 1)
	require.NoError(t, err)
	_, err = m.AddItem("user-1", "prod-2", 1)
	require.NoError(t, err)

	view2, err := m.RemoveItem("user-1", view.Cart.Items[0].ID)
	require.NoError(t, err)
	require.Len(t, view2.Cart.Items, 1)

	require.NoError(t, m.Clear("user-1"))
	final, err := m.Get("user-1")
	require.NoError(t, err)
	assert.Empty(t, final.Cart.Items)
}

func TestManagerView_MissingProductPricedZero(t *testing.T) {
	m, products := newManagerFixture(t)

	_, err := m.AddItem("user-1", "prod-1", 2)
	require.NoError(t, err)
	require.NoError(t, products.Delete("prod-1"))

	view, err := m.Get("user-1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), view.TotalItems)
	assert.True(t, view.TotalPrice.IsZero())
}
