package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/service/catalog"
)

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	filter := domain.ProductFilter{
		CategoryID:    r.URL.Query().Get("category"),
		PriceOrdering: r.URL.Query().Get("ordering"),
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	views, err := s.catalog.ListProducts(filter)
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]productDTO, 0, len(views))
	for _, view := range views {
		dtos = append(dtos, toProductDTO(view))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	view, err := s.catalog.GetProduct(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(view))
}

type productRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Inventory   int64  `json:"inventory"`
	CategoryID  string `json:"category_id"`
}

func (r productRequest) toInput() (catalog.ProductInput, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		verr := domain.NewValidationError()
		verr.Add("price", "Price must be a decimal number.")
		return catalog.ProductInput{}, verr
	}
	return catalog.ProductInput{
		Title:       r.Title,
		Slug:        r.Slug,
		Description: r.Description,
		Price:       price,
		Inventory:   r.Inventory,
		CategoryID:  r.CategoryID,
	}, nil
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := s.catalog.CreateProduct(input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductDTO(view))
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := s.catalog.UpdateProduct(chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(view))
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteProduct(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	views, err := s.catalog.ListCategories()
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]categoryDTO, 0, len(views))
	for _, view := range views {
		dtos = append(dtos, categoryDTO{
			ID:           view.Category.ID,
			Name:         view.Category.Name,
			Slug:         view.Category.Slug,
			Description:  view.Category.Description,
			ProductCount: view.ProductCount,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleCategoryProducts(w http.ResponseWriter, r *http.Request) {
	views, err := s.catalog.CategoryProducts(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]productDTO, 0, len(views))
	for _, view := range views {
		dtos = append(dtos, toProductDTO(view))
	}
	writeJSON(w, http.StatusOK, dtos)
}

type categoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	category, err := s.catalog.CreateCategory(req.Name, req.Slug, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
	})
}
