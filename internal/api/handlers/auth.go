package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nwade/leadvault/internal/api/dto"
	"github.com/nwade/leadvault/internal/api/middleware"
	"github.com/nwade/leadvault/internal/auth"
	"github.com/nwade/leadvault/internal/database/models"
)

type AuthHandler struct {
	authService  *auth.Service
	jwtService   *auth.JWTService
	revocations  auth.RevocationStore
	cookieSecure bool
}

func NewAuthHandler(authService *auth.Service, jwtService *auth.JWTService, revocations auth.RevocationStore, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		jwtService:   jwtService,
		revocations:  revocations,
		cookieSecure: cookieSecure,
	}
}

func userToDTO(user *models.User) dto.UserDTO {
	return dto.UserDTO{
		ID:        user.ID.String(),
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	resp, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})

	if err != nil {
		switch err {
		case auth.ErrUserExists:
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "User with this email already exists"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Registration failed"})
		}
		return
	}

	auth.SetSessionCookie(w, resp.Token, int(h.jwtService.Expiry().Seconds()), h.cookieSecure)

	writeJSON(w, http.StatusCreated, dto.AuthResponse{
		Message: "User registered successfully",
		User:    userToDTO(resp.User),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})

	if err != nil {
		switch err {
		case auth.ErrInvalidCredentials:
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid email or password"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Login failed"})
		}
		return
	}

	auth.SetSessionCookie(w, resp.Token, int(h.jwtService.Expiry().Seconds()), h.cookieSecure)

	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Message: "Login successful",
		User:    userToDTO(resp.User),
	})
}

// Logout clears the session cookie. With a revocation store configured the
// presented token is also denied for its remaining lifetime; without one the
// token stays cryptographically valid until expiry.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.revocations != nil {
		if cookie, err := r.Cookie(auth.SessionCookieName); err == nil && cookie.Value != "" {
			if claims, err := h.jwtService.ValidateToken(cookie.Value); err == nil && claims.ExpiresAt != nil {
				_ = h.revocations.Revoke(r.Context(), claims.ID, time.Until(claims.ExpiresAt.Time))
			}
		}
	}

	auth.ClearSessionCookie(w, h.cookieSecure)

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Logout successful"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": userToDTO(user)})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
