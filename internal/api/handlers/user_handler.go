package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/stockroom-be/internal/auth"
	"github.com/isdelr/stockroom-be/internal/models"
	"github.com/isdelr/stockroom-be/internal/services"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	users services.UserServiceProvider
	items services.ItemServiceProvider
}

// NewUserHandler creates a new UserHandler. The item service is needed to
// attach a user's owned items when building the response.
func NewUserHandler(users services.UserServiceProvider, items services.ItemServiceProvider) *UserHandler {
	return &UserHandler{users: users, items: items}
}

// withItems fills in the user's owned items before serialization. The
// relationship is resolved with an explicit query, not stored on the record.
func (h *UserHandler) withItems(user *models.User) error {
	items, err := h.items.ListItemsByOwner(user.ID, 0, -1)
	if err != nil {
		return err
	}
	user.Items = items
	return nil
}

// GetMe returns the authenticated caller's own record.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user from request context")
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	if err := h.withItems(user); err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to load user items")
		http.Error(w, "Failed to retrieve user", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// Get handles retrieving a user by their ID. No authentication required.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	user, err := h.users.GetUserByID(id)
	if err != nil {
		log.Error().Err(err).Int64("user_id", id).Msg("Failed to get user")
		http.Error(w, "Failed to retrieve user", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	if err := h.withItems(user); err != nil {
		log.Error().Err(err).Int64("user_id", id).Msg("Failed to load user items")
		http.Error(w, "Failed to retrieve user", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// UpdateMe partially updates the caller's own record. Only fields present in
// the body are touched.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user from request context")
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	var upd models.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(upd); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.users.UpdateUser(user.ID, upd)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			http.Error(w, "Email already registered", http.StatusConflict)
			return
		}
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to update user")
		http.Error(w, "Failed to update user", http.StatusInternalServerError)
		return
	}
	// The record can vanish between authentication and the update.
	if updated == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	if err := h.withItems(updated); err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to load user items")
		http.Error(w, "Failed to retrieve user", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}
