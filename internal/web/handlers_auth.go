package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"course-admin/internal/auth"
	"course-admin/internal/logging"
	"course-admin/internal/store"
)

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type adminView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type authResponse struct {
	Message string    `json:"message"`
	User    adminView `json:"user"`
	Token   string    `json:"token"`
}

// handleRegister creates a new admin account and returns a session
// token.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "email, name and a password of at least 8 characters are required", "VALIDATION")
		return
	}

	hash, err := auth.HashPassword(req.Password, s.cfg.Auth.BcryptCost)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	admin, err := s.admins.Create(r.Context(), req.Email, req.Name, hash)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	token, err := s.tokens.Issue(admin.ID.String(), admin.Email)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("admin registered", "admin_id", admin.ID)

	writeJSON(w, http.StatusCreated, authResponse{
		Message: "registered successfully",
		User:    adminView{ID: admin.ID.String(), Email: admin.Email, Name: admin.Name},
		Token:   token,
	})
}

// handleLogin verifies credentials and returns a session token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "email and password are required", "VALIDATION")
		return
	}

	admin, err := s.admins.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrAdminNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid credentials", "AUTH_INVALID_CREDENTIALS")
			return
		}
		s.respondError(w, r, err)
		return
	}

	if !auth.CheckPassword(admin.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials", "AUTH_INVALID_CREDENTIALS")
		return
	}

	token, err := s.tokens.Issue(admin.ID.String(), admin.Email)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Message: "logged in successfully",
		User:    adminView{ID: admin.ID.String(), Email: admin.Email, Name: admin.Name},
		Token:   token,
	})
}
