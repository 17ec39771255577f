package httpapi

import (
	"net/http"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User  userDTO `json:"user"`
	Token string  `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	session, err := s.auth.Register(req.Email, req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		User:  toUserDTO(session.User),
		Token: session.Token,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	session, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		User:  toUserDTO(session.User),
		Token: session.Token,
	})
}

type addressRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	PhoneNumber  string `json:"phone_number"`
	IsDefault    bool   `json:"is_default"`
}

func (s *Server) handleCreateAddress(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req addressRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	address, err := s.auth.CreateAddress(claims.UserID, domain.Address{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		PhoneNumber:  req.PhoneNumber,
		IsDefault:    req.IsDefault,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAddressDTO(address))
}
