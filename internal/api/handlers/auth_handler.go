package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/stockroom-be/internal/auth"
	"github.com/isdelr/stockroom-be/internal/models"
	"github.com/isdelr/stockroom-be/internal/services"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	users services.UserServiceProvider
	authn *auth.Authenticator
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, authn *auth.Authenticator) *AuthHandler {
	return &AuthHandler{users: users, authn: authn}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is the body returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(payload); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.users.CreateUser(payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			http.Error(w, "Email already registered", http.StatusConflict)
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		http.Error(w, "Failed to register user", http.StatusInternalServerError)
		return
	}

	user.Items = []models.Item{}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

// Login verifies credentials and mints an access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(payload); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.users.AuthenticateUser(payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "Incorrect email or password", http.StatusUnauthorized)
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to authenticate user")
		http.Error(w, "Failed to authenticate", http.StatusInternalServerError)
		return
	}

	token, err := h.authn.GenerateToken(user)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to generate token")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TokenResponse{AccessToken: token, TokenType: "bearer"})
}
