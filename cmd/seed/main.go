package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/shop/internal/auth"
	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/service/catalog"
	"github.com/vladislavdragonenkov/shop/internal/storage/postgres"
)

const defaultTimeout = 30 * time.Second

type seedProduct struct {
	title       string
	description string
	price       string
	inventory   int64
	category    string
}

var seedCategories = []string{"Electronics", "Books", "Home & Kitchen"}

var seedProducts = []seedProduct{
	{"Wireless Mouse", "Compact 2.4GHz wireless mouse.", "24.90", 120, "Electronics"},
	{"Mechanical Keyboard", "Tenkeyless board with brown switches.", "89.00", 35, "Electronics"},
	{"USB-C Hub", "7-in-1 hub with HDMI and card reader.", "39.50", 80, "Electronics"},
	{"The Go Programming Language", "Donovan & Kernighan, paperback.", "42.99", 15, "Books"},
	{"Designing Data-Intensive Applications", "Kleppmann, paperback.", "49.99", 22, "Books"},
	{"French Press", "1L borosilicate glass french press.", "27.90", 50, "Home & Kitchen"},
	{"Chef Knife", "20cm stainless steel chef knife.", "64.00", 40, "Home & Kitchen"},
}

func main() {
	var (
		dsn        string
		staffEmail string
		staffPass  string
	)

	flag.StringVar(&dsn, "dsn", "", "PostgreSQL DSN (fallback: SHOP_DATABASE_URL)")
	flag.StringVar(&staffEmail, "staff-email", "admin@example.com", "email for the seeded staff account")
	flag.StringVar(&staffPass, "staff-password", "", "password for the seeded staff account (required)")
	flag.Parse()

	if strings.TrimSpace(dsn) == "" {
		dsn = strings.TrimSpace(os.Getenv("SHOP_DATABASE_URL"))
	}
	if dsn == "" {
		fail("SHOP_DATABASE_URL (or -dsn) is required")
	}
	if staffPass == "" {
		fail("-staff-password is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	store, err := postgres.Open(ctx, dsn)
	if err != nil {
		fail("open postgres store: %v", err)
	}
	defer store.Close()

	if err := store.MigrateUp(ctx, 0); err != nil {
		fail("apply migrations: %v", err)
	}

	if err := seed(store, staffEmail, staffPass); err != nil {
		fail("seed failed: %v", err)
	}

	fmt.Println("seed ok")
}

func seed(store *postgres.Store, staffEmail, staffPass string) error {
	users := postgres.NewUserRepository(store)
	categories := postgres.NewCategoryRepository(store)
	products := postgres.NewProductRepository(store)

	now := time.Now().UTC()

	hash, err := auth.HashPassword(staffPass)
	if err != nil {
		return fmt.Errorf("hash staff password: %w", err)
	}
	err = users.Create(domain.User{
		ID:           uuid.NewString(),
		Email:        staffEmail,
		Username:     "admin",
		PasswordHash: hash,
		IsStaff:      true,
		CreatedAt:    now,
	})
	switch {
	case err == nil:
		fmt.Printf("staff user created: %s\n", staffEmail)
	case errors.Is(err, domain.ErrEmailTaken):
		fmt.Printf("staff user already exists: %s\n", staffEmail)
	default:
		return fmt.Errorf("create staff user: %w", err)
	}

	categoryIDs := make(map[string]string, len(seedCategories))
	for _, name := range seedCategories {
		c := domain.Category{
			ID:        uuid.NewString(),
			Name:      name,
			Slug:      catalog.Slugify(name),
			CreatedAt: now,
		}
		if err := categories.Create(c); err != nil {
			if errors.Is(err, domain.ErrSlugTaken) {
				id, err := findCategoryBySlug(categories, c.Slug)
				if err != nil {
					return fmt.Errorf("lookup category %q: %w", name, err)
				}
				categoryIDs[name] = id
				continue
			}
			return fmt.Errorf("create category %q: %w", name, err)
		}
		categoryIDs[name] = c.ID
	}

	var created int
	for _, p := range seedProducts {
		err := products.Create(domain.Product{
			ID:          uuid.NewString(),
			Title:       p.title,
			Slug:        catalog.Slugify(p.title),
			Description: p.description,
			Price:       decimal.RequireFromString(p.price),
			Inventory:   p.inventory,
			CategoryID:  categoryIDs[p.category],
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			if errors.Is(err, domain.ErrSlugTaken) {
				continue
			}
			return fmt.Errorf("create product %q: %w", p.title, err)
		}
		created++
	}

	fmt.Printf("categories: %d, new products: %d\n", len(categoryIDs), created)
	return nil
}

func findCategoryBySlug(categories domain.CategoryRepository, slug string) (string, error) {
	all, err := categories.List()
	if err != nil {
		return "", err
	}
	for _, c := range all {
		if c.Slug == slug {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("category with slug %q not found", slug)
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
