package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	view, err := s.carts.Get(claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartDTO(view))
}

func (s *Server) handleCartCount(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	view, err := s.carts.Get(claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Count int32 `json:"count"`
	}{view.TotalItems})
}

func (s *Server) handleCartTotal(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	view, err := s.carts.Get(claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Total string `json:"total"`
	}{view.TotalPrice.StringFixed(2)})
}

type cartAddRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

func (s *Server) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req cartAddRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := s.carts.AddItem(claims.UserID, req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCartDTO(view))
}

type cartUpdateRequest struct {
	Quantity int32 `json:"quantity"`
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req cartUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	view, err := s.carts.SetItemQuantity(claims.UserID, chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartDTO(view))
}

func (s *Server) handleIncreaseCartItem(w http.ResponseWriter, r *http.Request) {
	s.adjustCartItem(w, r, 1)
}

func (s *Server) handleDecreaseCartItem(w http.ResponseWriter, r *http.Request) {
	s.adjustCartItem(w, r, -1)
}

func (s *Server) adjustCartItem(w http.ResponseWriter, r *http.Request, delta int32) {
	claims, _ := claimsFrom(r.Context())

	view, err := s.carts.AdjustItem(claims.UserID, chi.URLParam(r, "id"), delta)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCartDTO(view))
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	if _, err := s.carts.RemoveItem(claims.UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	if err := s.carts.Clear(claims.UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
