package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleProductReviews(w http.ResponseWriter, r *http.Request) {
	list, err := s.reviews.ListByProduct(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]reviewDTO, 0, len(list))
	for _, review := range list {
		dtos = append(dtos, toReviewDTO(review))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleProductReviewStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.reviews.Stats(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		TotalReviews       int64            `json:"total_reviews"`
		AverageRating      float64          `json:"average_rating"`
		RatingDistribution map[string]int64 `json:"rating_distribution"`
	}{stats.TotalReviews, stats.AverageRating, stats.RatingDistribution})
}

type createReviewRequest struct {
	ProductID   string `json:"product_id"`
	OrderItemID string `json:"order_item_id"`
	Rating      int32  `json:"rating"`
	Comment     string `json:"comment"`
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req createReviewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	review, err := s.reviews.Create(claims.UserID, req.ProductID, req.OrderItemID, req.Rating, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReviewDTO(review))
}

type updateReviewRequest struct {
	Rating  int32  `json:"rating"`
	Comment string `json:"comment"`
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req updateReviewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	review, err := s.reviews.Update(chi.URLParam(r, "id"), claims.UserID, req.Rating, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewDTO(review))
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	if err := s.reviews.Delete(chi.URLParam(r, "id"), claims.UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUserReviews(w http.ResponseWriter, r *http.Request) {
	list, err := s.reviews.ListByUser(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]reviewDTO, 0, len(list))
	for _, review := range list {
		dtos = append(dtos, toReviewDTO(review))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleMyReviews(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	list, err := s.reviews.ListByUser(claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]reviewDTO, 0, len(list))
	for _, review := range list {
		dtos = append(dtos, toReviewDTO(review))
	}
	writeJSON(w, http.StatusOK, dtos)
}
