package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saveagri/saveagri-backend/internal/geo"
	"github.com/saveagri/saveagri-backend/internal/models"
)

func TestRatingCreate(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.addUser(t, "eater")
	owner, _ := env.addUser(t, "grower")
	farmer := env.addFarmer(t, owner.ID, "Ferme A", geo.Point{Lat: 48.86, Lon: 2.35})

	w := env.do(t, http.MethodPost, "/ratings", token, map[string]any{
		"farmerId": farmer.ID,
		"rating":   4,
		"comment":  "Très bons légumes",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	rating := decodeBody[models.Rating](t, w)
	assert.NotZero(t, rating.ID)
	assert.Equal(t, user.ID, rating.UserID)
	assert.Equal(t, farmer.ID, rating.FarmerID)
	assert.Equal(t, 4, rating.Rating)
	assert.Equal(t, "Très bons légumes", rating.Comment)
}

func TestRatingCreate_Validation(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.addUser(t, "eater")
	farmer := env.addFarmer(t, user.ID, "Ferme A", geo.Point{Lat: 48.86, Lon: 2.35})

	// Missing farmer id.
	w := env.do(t, http.MethodPost, "/ratings", token, map[string]any{"rating": 4})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Rating outside 1..5.
	for _, value := range []int{0, 6, -1} {
		w = env.do(t, http.MethodPost, "/ratings", token, map[string]any{
			"farmerId": farmer.ID,
			"rating":   value,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "rating must be between 1 and 5", errorMessage(t, w))
	}

	// Unknown farmer.
	w = env.do(t, http.MethodPost, "/ratings", token, map[string]any{"farmerId": 999, "rating": 3})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRatingCreate_OncePerFarmer(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.addUser(t, "eater")
	farmer := env.addFarmer(t, user.ID, "Ferme A", geo.Point{Lat: 48.86, Lon: 2.35})

	body := map[string]any{"farmerId": farmer.ID, "rating": 5}
	w := env.do(t, http.MethodPost, "/ratings", token, body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/ratings", token, body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "you have already rated this farmer", errorMessage(t, w))
}

func TestRatingUpdate(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.addUser(t, "eater")
	farmer := env.addFarmer(t, user.ID, "Ferme A", geo.Point{Lat: 48.86, Lon: 2.35})

	w := env.do(t, http.MethodPost, "/ratings", token, map[string]any{"farmerId": farmer.ID, "rating": 2})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPut, "/ratings/1", token, map[string]any{"rating": 5, "comment": "Ils se sont améliorés"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rating := decodeBody[models.Rating](t, w)
	assert.Equal(t, 5, rating.Rating)
	assert.Equal(t, "Ils se sont améliorés", rating.Comment)
}

func TestRatingUpdate_NotOwner(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.addUser(t, "eater")
	_, otherToken := env.addUser(t, "intruder")
	farmer := env.addFarmer(t, user.ID, "Ferme A", geo.Point{Lat: 48.86, Lon: 2.35})

	w := env.do(t, http.MethodPost, "/ratings", token, map[string]any{"farmerId": farmer.ID, "rating": 2})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPut, "/ratings/1", otherToken, map[string]any{"rating": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "you do not own this rating", errorMessage(t, w))
}

func TestRatingUpdate_NotFound(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.addUser(t, "eater")

	w := env.do(t, http.MethodPut, "/ratings/999", token, map[string]any{"rating": 3})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRatingDelete(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.addUser(t, "eater")
	farmer := env.addFarmer(t, user.ID, "Ferme A", geo.Point{Lat: 48.86, Lon: 2.35})

	w := env.do(t, http.MethodPost, "/ratings", token, map[string]any{"farmerId": farmer.ID, "rating": 2})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodDelete, "/ratings/1", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, "/ratings/1", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRating_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/ratings", "", map[string]any{"farmerId": 1, "rating": 3})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPut, "/ratings/1", "", map[string]any{"rating": 3})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodDelete, "/ratings/1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
