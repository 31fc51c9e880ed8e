package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/saveagri/saveagri-backend/internal/auth"
	"github.com/saveagri/saveagri-backend/internal/geo"
	"github.com/saveagri/saveagri-backend/internal/handlers"
	"github.com/saveagri/saveagri-backend/internal/models"
	"github.com/saveagri/saveagri-backend/internal/routes"
	"github.com/saveagri/saveagri-backend/internal/store"
)

// In-memory stores backing the handler tests. They honor the same sentinel
// errors as the Postgres implementations.

type fakeUserStore struct {
	nextID int64
	users  map[int64]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]models.User)}
}

func (s *fakeUserStore) Create(_ context.Context, username, email, passwordHash string) (models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return models.User{}, store.ErrDuplicateUsername
		}
		if u.Email == email {
			return models.User{}, store.ErrDuplicateEmail
		}
	}
	s.nextID++
	user := models.User{
		ID:           s.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, store.ErrNotFound
}

func (s *fakeUserStore) FindByID(_ context.Context, id int64) (models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) Conflicts(_ context.Context, username, email string) (bool, bool, error) {
	var usernameTaken, emailTaken bool
	for _, u := range s.users {
		if u.Username == username {
			usernameTaken = true
		}
		if u.Email == email {
			emailTaken = true
		}
	}
	return usernameTaken, emailTaken, nil
}

type fakeFarmerStore struct {
	nextID  int64
	farmers map[int64]models.Farmer
}

func newFakeFarmerStore() *fakeFarmerStore {
	return &fakeFarmerStore{farmers: make(map[int64]models.Farmer)}
}

func (s *fakeFarmerStore) Create(_ context.Context, farmer models.Farmer) (models.Farmer, error) {
	s.nextID++
	farmer.ID = s.nextID
	farmer.Location = nil
	farmer.Distance = nil
	s.farmers[farmer.ID] = farmer
	return farmer, nil
}

func (s *fakeFarmerStore) GetByID(_ context.Context, id int64) (models.Farmer, error) {
	f, ok := s.farmers[id]
	if !ok {
		return models.Farmer{}, store.ErrNotFound
	}
	return f, nil
}

func (s *fakeFarmerStore) All(_ context.Context) ([]models.Farmer, error) {
	out := make([]models.Farmer, 0, len(s.farmers))
	for _, f := range s.farmers {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeFarmerStore) Update(_ context.Context, id int64, patch models.FarmerPatch) (models.Farmer, error) {
	f, ok := s.farmers[id]
	if !ok {
		return models.Farmer{}, store.ErrNotFound
	}
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&f.Name, patch.Name)
	apply(&f.Description, patch.Description)
	apply(&f.Address, patch.Address)
	apply(&f.City, patch.City)
	apply(&f.ZipCode, patch.ZipCode)
	apply(&f.Phone, patch.Phone)
	apply(&f.Website, patch.Website)
	apply(&f.ImageURL, patch.ImageURL)
	if patch.Latitude != nil {
		f.Latitude = *patch.Latitude
	}
	if patch.Longitude != nil {
		f.Longitude = *patch.Longitude
	}
	s.farmers[id] = f
	return f, nil
}

func (s *fakeFarmerStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.farmers[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.farmers, id)
	return nil
}

type fakeProductStore struct {
	nextID   int64
	products map[int64]models.Product
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: make(map[int64]models.Product)}
}

func (s *fakeProductStore) All(_ context.Context) ([]models.Product, error) {
	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeProductStore) GetByID(_ context.Context, id int64) (models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, store.ErrNotFound
	}
	return p, nil
}

func (s *fakeProductStore) Create(_ context.Context, product models.Product) (models.Product, error) {
	s.nextID++
	product.ID = s.nextID
	s.products[product.ID] = product
	return product, nil
}

type fakeFavoriteStore struct {
	farmers *fakeFarmerStore
	pairs   map[[2]int64]bool
}

func newFakeFavoriteStore(farmers *fakeFarmerStore) *fakeFavoriteStore {
	return &fakeFavoriteStore{farmers: farmers, pairs: make(map[[2]int64]bool)}
}

func (s *fakeFavoriteStore) ListByUser(ctx context.Context, userID int64) ([]models.Farmer, error) {
	var out []models.Farmer
	all, _ := s.farmers.All(ctx)
	for _, f := range all {
		if s.pairs[[2]int64{userID, f.ID}] {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *fakeFavoriteStore) Add(_ context.Context, userID, farmerID int64) error {
	key := [2]int64{userID, farmerID}
	if s.pairs[key] {
		return store.ErrDuplicate
	}
	s.pairs[key] = true
	return nil
}

func (s *fakeFavoriteStore) Remove(_ context.Context, userID, farmerID int64) error {
	key := [2]int64{userID, farmerID}
	if !s.pairs[key] {
		return store.ErrNotFound
	}
	delete(s.pairs, key)
	return nil
}

type fakeRatingStore struct {
	nextID  int64
	ratings map[int64]models.Rating
}

func newFakeRatingStore() *fakeRatingStore {
	return &fakeRatingStore{ratings: make(map[int64]models.Rating)}
}

func (s *fakeRatingStore) Create(_ context.Context, rating models.Rating) (models.Rating, error) {
	for _, existing := range s.ratings {
		if existing.UserID == rating.UserID && existing.FarmerID == rating.FarmerID {
			return models.Rating{}, store.ErrDuplicate
		}
	}
	s.nextID++
	rating.ID = s.nextID
	rating.CreatedAt = time.Now()
	s.ratings[rating.ID] = rating
	return rating, nil
}

func (s *fakeRatingStore) GetByID(_ context.Context, id int64) (models.Rating, error) {
	r, ok := s.ratings[id]
	if !ok {
		return models.Rating{}, store.ErrNotFound
	}
	return r, nil
}

func (s *fakeRatingStore) Update(_ context.Context, id int64, value int, comment string) (models.Rating, error) {
	r, ok := s.ratings[id]
	if !ok {
		return models.Rating{}, store.ErrNotFound
	}
	r.Rating = value
	r.Comment = comment
	s.ratings[id] = r
	return r, nil
}

func (s *fakeRatingStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.ratings[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.ratings, id)
	return nil
}

// fakeGeocoder resolves from fixed tables. Keys for Resolve are
// "address|city|zip"; unknown full addresses fall back to "city|zip".
type fakeGeocoder struct {
	cities    map[string]geo.Point
	addresses map[string]geo.Point
	err       error
}

func newFakeGeocoder() *fakeGeocoder {
	return &fakeGeocoder{
		cities: map[string]geo.Point{
			"Paris":     {Lat: 48.8566, Lon: 2.3522},
			"Lyon":      {Lat: 45.7640, Lon: 4.8357},
			"Marseille": {Lat: 43.2965, Lon: 5.3698},
		},
		addresses: make(map[string]geo.Point),
	}
}

func (g *fakeGeocoder) Resolve(_ context.Context, address, city, zip string) (geo.Point, error) {
	if g.err != nil {
		return geo.Point{}, g.err
	}
	if address == "" || city == "" || zip == "" {
		return geo.Point{}, geo.ErrIncompleteAddress
	}
	if p, ok := g.addresses[address+"|"+city+"|"+zip]; ok {
		return p, nil
	}
	if p, ok := g.addresses[city+"|"+zip]; ok {
		return p, nil
	}
	if p, ok := g.cities[city]; ok {
		return p, nil
	}
	return geo.Point{}, geo.ErrNotFound
}

func (g *fakeGeocoder) ResolveCity(_ context.Context, city string) (geo.Point, error) {
	if g.err != nil {
		return geo.Point{}, g.err
	}
	if p, ok := g.cities[city]; ok {
		return p, nil
	}
	return geo.Point{}, geo.ErrNotFound
}

// testEnv wires the full router over the in-memory stores.
type testEnv struct {
	router    *chi.Mux
	users     *fakeUserStore
	farmers   *fakeFarmerStore
	products  *fakeProductStore
	favorites *fakeFavoriteStore
	ratings   *fakeRatingStore
	geocoder  *fakeGeocoder
	tokens    *auth.TokenManager
	throttle  *auth.LoginThrottle
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		users:    newFakeUserStore(),
		farmers:  newFakeFarmerStore(),
		products: newFakeProductStore(),
		ratings:  newFakeRatingStore(),
		geocoder: newFakeGeocoder(),
		tokens:   auth.NewTokenManager("test-secret", time.Hour),
		throttle: auth.NewLoginThrottle(),
	}
	env.favorites = newFakeFavoriteStore(env.farmers)

	env.router = chi.NewRouter()
	routes.SetupRoutes(env.router, routes.Handlers{
		Users:     handlers.NewUserHandler(env.users, env.tokens, env.throttle),
		Farmers:   handlers.NewFarmerHandler(env.farmers, env.users, env.geocoder, nil),
		Products:  handlers.NewProductHandler(env.products, env.farmers, nil),
		Favorites: handlers.NewFavoriteHandler(env.favorites, env.farmers),
		Ratings:   handlers.NewRatingHandler(env.ratings, env.farmers),
		Tokens:    env.tokens,
	})
	return env
}

// addUser seeds an account directly and returns it with a valid token.
func (env *testEnv) addUser(t *testing.T, username string) (models.User, string) {
	t.Helper()
	user, err := env.users.Create(context.Background(), username, username+"@example.com", "$2a$10$fakefakefakefakefakefake")
	require.NoError(t, err)
	token, err := env.tokens.Issue(user.ID)
	require.NoError(t, err)
	return user, token
}

// addFarmer seeds a listing owned by userID.
func (env *testEnv) addFarmer(t *testing.T, userID int64, name string, p geo.Point) models.Farmer {
	t.Helper()
	farmer, err := env.farmers.Create(context.Background(), models.Farmer{
		Name:      name,
		Address:   "1 rue du Marché",
		City:      "Paris",
		ZipCode:   "75001",
		Latitude:  p.Lat,
		Longitude: p.Lon,
		UserID:    userID,
	})
	require.NoError(t, err)
	return farmer
}

// do sends a request through the router. A non-empty token becomes a bearer
// Authorization header; a non-nil body is encoded as JSON.
func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	r := httptest.NewRequest(method, path, reader)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, r)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody[map[string]string](t, w)
	return body["message"]
}
