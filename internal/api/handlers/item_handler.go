package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/stockroom-be/internal/auth"
	"github.com/isdelr/stockroom-be/internal/models"
	"github.com/isdelr/stockroom-be/internal/services"
)

var validate = validator.New()

const defaultListLimit = 100

// ItemHandler handles HTTP requests for item management.
type ItemHandler struct {
	items services.ItemServiceProvider
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(items services.ItemServiceProvider) *ItemHandler {
	return &ItemHandler{items: items}
}

// Create handles the request to create an item owned by the caller.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user from request context")
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	var in models.ItemCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(in); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.items.CreateItem(in, user.ID)
	if err != nil {
		log.Error().Err(err).Int64("owner_id", user.ID).Msg("Failed to create item")
		http.Error(w, "Failed to create item", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

// List handles the paginated, unauthenticated item listing.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", defaultListLimit)

	items, err := h.items.ListItems(skip, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list items")
		http.Error(w, "Failed to retrieve items", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

// Get handles retrieving a single item by ID. No authentication required.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	item, err := h.items.GetItemByID(id)
	if err != nil {
		log.Error().Err(err).Int64("item_id", id).Msg("Failed to get item")
		http.Error(w, "Failed to retrieve item", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

// Update partially updates an item. Existence is checked before ownership, so
// a missing item is a 404 even for a non-owner.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user from request context")
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	var upd models.ItemUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(upd); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.items.GetItemByID(id)
	if err != nil {
		log.Error().Err(err).Int64("item_id", id).Msg("Failed to get item")
		http.Error(w, "Failed to retrieve item", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}
	if item.OwnerID != user.ID {
		http.Error(w, "Not enough permissions", http.StatusForbidden)
		return
	}

	updated, err := h.items.UpdateItem(id, upd)
	if err != nil {
		log.Error().Err(err).Int64("item_id", id).Msg("Failed to update item")
		http.Error(w, "Failed to update item", http.StatusInternalServerError)
		return
	}
	if updated == nil {
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// Delete removes an item, with the same existence and ownership gating as
// Update, and returns the deleted record.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user from request context")
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	item, err := h.items.GetItemByID(id)
	if err != nil {
		log.Error().Err(err).Int64("item_id", id).Msg("Failed to get item")
		http.Error(w, "Failed to retrieve item", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}
	if item.OwnerID != user.ID {
		http.Error(w, "Not enough permissions", http.StatusForbidden)
		return
	}

	deleted, err := h.items.DeleteItem(id)
	if err != nil {
		log.Error().Err(err).Int64("item_id", id).Msg("Failed to delete item")
		http.Error(w, "Failed to delete item", http.StatusInternalServerError)
		return
	}
	if deleted == nil {
		http.Error(w, "Item not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(deleted)
}

// queryInt parses a non-negative integer query parameter, falling back to a
// default on absence or garbage.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
