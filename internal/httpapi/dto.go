package httpapi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/service/cart"
	"github.com/vladislavdragonenkov/shop/internal/service/catalog"
)

// Денежные суммы сериализуются строками с двумя знаками после запятой.

type productDTO struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description,omitempty"`
	Price         string    `json:"price"`
	Inventory     int64     `json:"inventory"`
	CategoryID    string    `json:"category_id,omitempty"`
	AverageRating float64   `json:"average_rating"`
	ReviewCount   int64     `json:"review_count"`
	CreatedAt     time.Time `json:"created_at"`
}

func toProductDTO(view catalog.ProductView) productDTO {
	p := view.Product
	return productDTO{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		Description:   p.Description,
		Price:         p.Price.StringFixed(2),
		Inventory:     p.Inventory,
		CategoryID:    p.CategoryID,
		AverageRating: view.AverageRating,
		ReviewCount:   view.ReviewCount,
		CreatedAt:     p.CreatedAt,
	}
}

type categoryDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description,omitempty"`
	ProductCount int64  `json:"product_count"`
}

type cartItemDTO struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type cartDTO struct {
	ID         string        `json:"id"`
	Items      []cartItemDTO `json:"items"`
	TotalItems int32         `json:"total_items"`
	TotalPrice string        `json:"total_price"`
}

func toCartDTO(view cart.View) cartDTO {
	dto := cartDTO{
		ID:         view.Cart.ID,
		Items:      make([]cartItemDTO, 0, len(view.Cart.Items)),
		TotalItems: view.TotalItems,
		TotalPrice: view.TotalPrice.StringFixed(2),
	}
	for _, item := range view.Cart.Items {
		price := view.Prices[item.ID]
		dto.Items = append(dto.Items, cartItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: price.StringFixed(2),
			Subtotal:  price.Mul(decimal.NewFromInt32(item.Quantity)).StringFixed(2),
		})
	}
	return dto
}

type orderItemDTO struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type orderDTO struct {
	ID                string         `json:"id"`
	Status            string         `json:"status"`
	PaymentStatus     string         `json:"payment_status"`
	TotalAmount       string         `json:"total_amount"`
	RefundDue         bool           `json:"refund_due,omitempty"`
	ShippingAddressID string         `json:"shipping_address_id,omitempty"`
	Items             []orderItemDTO `json:"items"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func toOrderDTO(order domain.Order) orderDTO {
	dto := orderDTO{
		ID:                order.ID,
		Status:            string(order.Status),
		PaymentStatus:     string(order.PaymentStatus),
		TotalAmount:       order.TotalAmount.StringFixed(2),
		RefundDue:         order.RefundDue,
		ShippingAddressID: order.ShippingAddressID,
		Items:             make([]orderItemDTO, 0, len(order.Items)),
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, orderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Subtotal:  item.Subtotal.StringFixed(2),
		})
	}
	return dto
}

type statusEventDTO struct {
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Occurred    time.Time `json:"occurred_at"`
}

type reviewDTO struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Rating    int32     `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toReviewDTO(r domain.Review) reviewDTO {
	return reviewDTO{
		ID:        r.ID,
		UserID:    r.UserID,
		ProductID: r.ProductID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type userDTO struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	IsStaff  bool   `json:"is_staff"`
}

func toUserDTO(u domain.User) userDTO {
	return userDTO{ID: u.ID, Email: u.Email, Username: u.Username, IsStaff: u.IsStaff}
}

type addressDTO struct {
	ID           string `json:"id"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	PostalCode   string `json:"postal_code,omitempty"`
	Country      string `json:"country"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	IsDefault    bool   `json:"is_default"`
}

func toAddressDTO(a domain.Address) addressDTO {
	return addressDTO{
		ID:           a.ID,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
		PhoneNumber:  a.PhoneNumber,
		IsDefault:    a.IsDefault,
	}
}
