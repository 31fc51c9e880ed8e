package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/saveagri/saveagri-backend/internal/middleware"
	"github.com/saveagri/saveagri-backend/internal/models"
	"github.com/saveagri/saveagri-backend/internal/store"
)

// FavoriteHandler owns user bookmarks. Listing is public; mutations require
// the token subject to match the user in the path.
type FavoriteHandler struct {
	favorites store.FavoriteStore
	farmers   store.FarmerStore
}

func NewFavoriteHandler(favorites store.FavoriteStore, farmers store.FarmerStore) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, farmers: farmers}
}

// List handles GET /users/{id}/favorites.
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	farmers, err := h.favorites.ListByUser(r.Context(), userID)
	if err != nil {
		writeServerError(w, "list favorites", err)
		return
	}

	results := make([]models.Farmer, 0, len(farmers))
	for _, f := range farmers {
		results = append(results, f.Located())
	}
	writeJSON(w, http.StatusOK, results)
}

type favoriteRequest struct {
	FarmerID int64 `json:"farmerId"`
}

// Add handles POST /users/{id}/favorites.
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizedUser(w, r)
	if !ok {
		return
	}

	var req favoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FarmerID <= 0 {
		writeError(w, http.StatusBadRequest, `the "farmerId" field is required`)
		return
	}

	if _, err := h.farmers.GetByID(r.Context(), req.FarmerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "farmer not found")
			return
		}
		writeServerError(w, "get farmer", err)
		return
	}

	if err := h.favorites.Add(r.Context(), userID, req.FarmerID); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "farmer already in favorites")
			return
		}
		writeServerError(w, "add favorite", err)
		return
	}

	writeJSON(w, http.StatusCreated, models.Favorite{UserID: userID, FarmerID: req.FarmerID})
}

// Remove handles DELETE /users/{id}/favorites/{farmerId}.
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizedUser(w, r)
	if !ok {
		return
	}
	farmerID, ok := urlID(r, "farmerId")
	if !ok {
		writeError(w, http.StatusNotFound, "favorite not found")
		return
	}

	if err := h.favorites.Remove(r.Context(), userID, farmerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "favorite not found")
			return
		}
		writeServerError(w, "remove favorite", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// authorizedUser resolves the {id} path segment and checks it against the
// token subject. Favorites can only be mutated by their owner.
func (h *FavoriteHandler) authorizedUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	tokenUserID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication token missing")
		return 0, false
	}
	pathUserID, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return 0, false
	}
	if pathUserID != tokenUserID {
		writeError(w, http.StatusForbidden, "you can only manage your own favorites")
		return 0, false
	}
	return pathUserID, true
}
