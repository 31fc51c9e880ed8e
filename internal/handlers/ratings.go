package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/saveagri/saveagri-backend/internal/middleware"
	"github.com/saveagri/saveagri-backend/internal/models"
	"github.com/saveagri/saveagri-backend/internal/store"
)

// RatingHandler owns reviews. The author is taken from the token; update and
// delete use the same existence-then-ownership gate as farmers.
type RatingHandler struct {
	ratings store.RatingStore
	farmers store.FarmerStore
}

func NewRatingHandler(ratings store.RatingStore, farmers store.FarmerStore) *RatingHandler {
	return &RatingHandler{ratings: ratings, farmers: farmers}
}

type createRatingRequest struct {
	FarmerID int64  `json:"farmerId"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

type updateRatingRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Create handles POST /ratings.
func (h *RatingHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication token missing")
		return
	}

	var req createRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FarmerID <= 0 {
		writeError(w, http.StatusBadRequest, `the "farmerId" field is required`)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "rating must be between 1 and 5")
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

	rating, err := h.ratings.Create(r.Context(), models.Rating{
		UserID:   userID,
		FarmerID: req.FarmerID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "you have already rated this farmer")
			return
		}
		writeServerError(w, "create rating", err)
		return
	}

	writeJSON(w, http.StatusCreated, rating)
}

// Update handles PUT /ratings/{id}.
func (h *RatingHandler) Update(w http.ResponseWriter, r *http.Request) {
	rating, ok := h.ownedRating(w, r)
	if !ok {
		return
	}

	var req updateRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	updated, err := h.ratings.Update(r.Context(), rating.ID, req.Rating, req.Comment)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "rating not found")
			return
		}
		writeServerError(w, "update rating", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /ratings/{id}.
func (h *RatingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	rating, ok := h.ownedRating(w, r)
	if !ok {
		return
	}

	if err := h.ratings.Delete(r.Context(), rating.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "rating not found")
			return
		}
		writeServerError(w, "delete rating", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedRating loads the rating from the path and enforces the
// existence-then-ownership order.
func (h *RatingHandler) ownedRating(w http.ResponseWriter, r *http.Request) (models.Rating, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication token missing")
		return models.Rating{}, false
	}
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "rating not found")
		return models.Rating{}, false
	}

	rating, err := h.ratings.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "rating not found")
			return models.Rating{}, false
		}
		writeServerError(w, "get rating", err)
		return models.Rating{}, false
	}
	if rating.UserID != userID {
		writeError(w, http.StatusForbidden, "you do not own this rating")
		return models.Rating{}, false
	}
	return rating, true
}
