package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// ProductView — товар вместе с агрегатами отзывов для выдачи наружу.
type ProductView struct {
	Product       domain.Product
	AverageRating float64
	ReviewCount   int64
}

// CategoryView — категория с числом товаров.
type CategoryView struct {
	Category     domain.Category
	ProductCount int64
}

// ProductInput — поля для создания и обновления товара.
type ProductInput struct {
	Title       string
	Slug        string
	Description string
	Price       decimal.Decimal
	Inventory   int64
	CategoryID  string
}

// Service реализует операции каталога: публичное чтение и staff-only CRUD.
type Service struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	reviews    domain.ReviewRepository
	logger     *log.Entry
	now        func() time.Time
}

// NewService создаёт сервис каталога.
func NewService(
	products domain.ProductRepository,
	categories domain.CategoryRepository,
	reviews domain.ReviewRepository,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "catalog")
	}
	return &Service{
		products:   products,
		categories: categories,
		reviews:    reviews,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ListProducts возвращает товары по фильтру с агрегатами отзывов.
func (s *Service) ListProducts(filter domain.ProductFilter) ([]ProductView, error) {
	products, err := s.products.List(filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		view, err := s.buildView(p)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// GetProduct возвращает товар по идентификатору или slug.
func (s *Service) GetProduct(idOrSlug string) (ProductView, error) {
	product, err := s.products.Get(idOrSlug)
	if err != nil {
		if product, err = s.products.GetBySlug(idOrSlug); err != nil {
			return ProductView{}, err
		}
	}
	return s.buildView(product)
}

// CreateProduct создаёт товар (staff-only на уровне API).
// Пустой slug генерируется из названия.
func (s *Service) CreateProduct(input ProductInput) (ProductView, error) {
	now := s.now()
	product := domain.Product{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Slug:        input.Slug,
		Description: input.Description,
		Price:       input.Price,
		Inventory:   input.Inventory,
		CategoryID:  input.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if product.Slug == "" {
		product.Slug = Slugify(product.Title)
	}

	if verr := s.validateProduct(product); verr != nil {
		return ProductView{}, verr
	}

	if err := s.products.Create(product); err != nil {
		return ProductView{}, err
	}

	s.logger.WithFields(log.Fields{
		"product_id": product.ID,
		"slug":       product.Slug,
	}).Info("product created")

	return ProductView{Product: product}, nil
}

// UpdateProduct обновляет товар (staff-only на уровне API).
func (s *Service) UpdateProduct(id string, input ProductInput) (ProductView, error) {
	product, err := s.products.Get(id)
	if err != nil {
		return ProductView{}, err
	}

	product.Title = input.Title
	product.Description = input.Description
	product.Price = input.Price
	product.Inventory = input.Inventory
	product.CategoryID = input.CategoryID
	if input.Slug != "" {
		product.Slug = input.Slug
	}
	product.UpdatedAt = s.now()

	if verr := s.validateProduct(product); verr != nil {
		return ProductView{}, verr
	}

	if err := s.products.Update(product); err != nil {
		return ProductView{}, err
	}
	return s.buildView(product)
}

// DeleteProduct удаляет товар (staff-only на уровне API).
func (s *Service) DeleteProduct(id string) error {
	return s.products.Delete(id)
}

// ListCategories возвращает категории с числом товаров.
func (s *Service) ListCategories() ([]CategoryView, error) {
	categories, err := s.categories.List()
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	views := make([]CategoryView, 0, len(categories))
	for _, c := range categories {
		count, err := s.categories.ProductCount(c.ID)
		if err != nil {
			return nil, fmt.Errorf("count category products: %w", err)
		}
		views = append(views, CategoryView{Category: c, ProductCount: count})
	}
	return views, nil
}

// CategoryProducts возвращает товары категории.
func (s *Service) CategoryProducts(categoryID string) ([]ProductView, error) {
	if _, err := s.categories.Get(categoryID); err != nil {
		return nil, err
	}
	return s.ListProducts(domain.ProductFilter{CategoryID: categoryID})
}

// CreateCategory создаёт категорию (staff-only на уровне API).
func (s *Service) CreateCategory(name, slug, description string) (domain.Category, error) {
	if name == "" {
		verr := domain.NewValidationError()
		verr.Add("name", "Name is required.")
		return domain.Category{}, verr
	}
	if slug == "" {
		slug = Slugify(name)
	}

	category := domain.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        slug,
		Description: description,
		CreatedAt:   s.now(),
	}
	if err := s.categories.Create(category); err != nil {
		return domain.Category{}, err
	}
	return category, nil
}

func (s *Service) buildView(product domain.Product) (ProductView, error) {
	stats, err := s.reviews.Stats(product.ID)
	if err != nil {
		return ProductView{}, fmt.Errorf("review stats: %w", err)
	}
	return ProductView{
		Product:       product,
		AverageRating: stats.AverageRating,
		ReviewCount:   stats.TotalReviews,
	}, nil
}

func (s *Service) validateProduct(product domain.Product) error {
	errs := product.Validate()
	if len(errs) == 0 {
		return nil
	}

	verr := domain.NewValidationError()
	for _, err := range errs {
		switch err {
		case domain.ErrProductTitleRequired:
			verr.Add("title", "Title is required.")
		case domain.ErrProductPriceInvalid:
			verr.Add("price", "Price must be greater than 0.")
		case domain.ErrProductInventoryNegative:
			verr.Add("inventory", "Inventory must not be negative.")
		default:
			verr.Add("product", err.Error())
		}
	}
	return verr
}

// Slugify приводит название к URL-виду: строчные буквы, дефисы вместо
// прочих символов.
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
