package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/saveagri/saveagri-backend/internal/geo"
	"github.com/saveagri/saveagri-backend/internal/middleware"
	"github.com/saveagri/saveagri-backend/internal/models"
	"github.com/saveagri/saveagri-backend/internal/services"
	"github.com/saveagri/saveagri-backend/internal/store"
)

// maxUploadSize caps multipart bodies (form fields plus one image).
const maxUploadSize = 10 << 20

// FarmerHandler owns the producer listing endpoints: proximity search, CRUD
// with geocoding, and the ownership gate on mutations.
type FarmerHandler struct {
	farmers  store.FarmerStore
	users    store.UserStore
	geocoder geo.Geocoder
	uploads  services.Uploader // nil when image uploads are not configured
}

func NewFarmerHandler(farmers store.FarmerStore, users store.UserStore, geocoder geo.Geocoder, uploads services.Uploader) *FarmerHandler {
	return &FarmerHandler{farmers: farmers, users: users, geocoder: geocoder, uploads: uploads}
}

// Search handles GET /farmers?city&radius: resolves the city to coordinates,
// then ranks stored farmers by great-circle distance.
func (h *FarmerHandler) Search(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		writeError(w, http.StatusBadRequest, `the "city" parameter is required`)
		return
	}

	origin, err := h.geocoder.ResolveCity(r.Context(), city)
	if err != nil {
		if errors.Is(err, geo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "city not found")
			return
		}
		writeServerError(w, "geocode city", err)
		return
	}

	h.searchAround(w, r, origin)
}

// SearchByCoordinates handles GET /farmers/coordinates?latitude&longitude&radius
// for clients that already have a precise origin.
func (h *FarmerHandler) SearchByCoordinates(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	lat, latErr := strconv.ParseFloat(query.Get("latitude"), 64)
	lon, lonErr := strconv.ParseFloat(query.Get("longitude"), 64)
	if latErr != nil || lonErr != nil {
		writeError(w, http.StatusBadRequest, `the "latitude" and "longitude" parameters are required`)
		return
	}

	h.searchAround(w, r, geo.Point{Lat: lat, Lon: lon})
}

func (h *FarmerHandler) searchAround(w http.ResponseWriter, r *http.Request, origin geo.Point) {
	radiusKm := float64(geo.DefaultRadiusKm)
	if raw := r.URL.Query().Get("radius"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, `the "radius" parameter must be a positive number`)
			return
		}
		radiusKm = parsed
	}

	farmers, err := h.farmers.All(r.Context())
	if err != nil {
		writeServerError(w, "list farmers", err)
		return
	}

	byID := make(map[int64]models.Farmer, len(farmers))
	candidates := make([]geo.Candidate, 0, len(farmers))
	for _, f := range farmers {
		byID[f.ID] = f
		candidates = append(candidates, geo.Candidate{ID: f.ID, Point: f.Point()})
	}

	results := make([]models.Farmer, 0, len(candidates))
	for _, match := range geo.Nearby(candidates, origin, radiusKm) {
		farmer := byID[match.ID].Located()
		distance := match.DistanceKm
		farmer.Distance = &distance
		results = append(results, farmer)
	}

	writeJSON(w, http.StatusOK, results)
}

// Get handles GET /farmers/{id}.
func (h *FarmerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "farmer not found")
		return
	}

	farmer, err := h.farmers.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "farmer not found")
			return
		}
		writeServerError(w, "get farmer", err)
		return
	}

	writeJSON(w, http.StatusOK, farmer.Located())
}

type farmerForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	City        string `json:"city"`
	ZipCode     string `json:"zip_code"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
}

// Create handles POST /farmers. The caller must be authenticated; ownership
// is assigned from the token. Coordinates are always derived from the posted
// address, never read from the body.
func (h *FarmerHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication token missing")
		return
	}

	form, imageURL, ok := h.readFarmerForm(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(form.Name) == "" {
		writeError(w, http.StatusBadRequest, `the "name" field is required`)
		return
	}

	if _, err := h.users.FindByID(r.Context(), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "user does not exist")
			return
		}
		writeServerError(w, "find user", err)
		return
	}

	point, err := h.geocoder.Resolve(r.Context(), form.Address, form.City, form.ZipCode)
	if err != nil {
		switch {
		case errors.Is(err, geo.ErrIncompleteAddress):
			writeError(w, http.StatusBadRequest, "address, city and zip code are all required")
		case errors.Is(err, geo.ErrNotFound):
			writeError(w, http.StatusBadRequest, "address could not be located")
		default:
			writeServerError(w, "geocode address", err)
		}
		return
	}

	farmer, err := h.farmers.Create(r.Context(), models.Farmer{
		Name:        form.Name,
		Description: form.Description,
		Address:     form.Address,
		City:        form.City,
		ZipCode:     form.ZipCode,
		Latitude:    point.Lat,
		Longitude:   point.Lon,
		Phone:       form.Phone,
		Website:     form.Website,
		ImageURL:    imageURL,
		UserID:      userID,
	})
	if err != nil {
		writeServerError(w, "create farmer", err)
		return
	}

	writeJSON(w, http.StatusCreated, farmer.Located())
}

// Update handles PUT /farmers/{id}. Existence is checked before ownership so
// unknown ids stay indistinguishable from never-existed ones.
func (h *FarmerHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication token missing")
		return
	}
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "farmer not found")
		return
	}

	farmer, err := h.farmers.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "farmer not found")
			return
		}
		writeServerError(w, "get farmer", err)
		return
	}
	if farmer.UserID != userID {
		writeError(w, http.StatusForbidden, "you do not own this farmer")
		return
	}

	patch, ok := h.readFarmerPatch(w, r)
	if !ok {
		return
	}

	if patch.TouchesAddress() {
		// Re-derive coordinates from the patched address, merged over the
		// stored row so partial address updates still geocode the full
		// address.
		address := valueOr(patch.Address, farmer.Address)
		city := valueOr(patch.City, farmer.City)
		zip := valueOr(patch.ZipCode, farmer.ZipCode)

		point, err := h.geocoder.Resolve(r.Context(), address, city, zip)
		if err != nil {
			switch {
			case errors.Is(err, geo.ErrIncompleteAddress):
				writeError(w, http.StatusBadRequest, "address, city and zip code are all required")
			case errors.Is(err, geo.ErrNotFound):
				writeError(w, http.StatusBadRequest, "address could not be located")
			default:
				writeServerError(w, "geocode address", err)
			}
			return
		}
		patch.Latitude = &point.Lat
		patch.Longitude = &point.Lon
	}

	updated, err := h.farmers.Update(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "farmer not found")
			return
		}
		writeServerError(w, "update farmer", err)
		return
	}

	writeJSON(w, http.StatusOK, updated.Located())
}

// Delete handles DELETE /farmers/{id}. Requires the owner's token.
func (h *FarmerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication token missing")
		return
	}
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "farmer not found")
		return
	}

	farmer, err := h.farmers.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "farmer not found")
			return
		}
		writeServerError(w, "get farmer", err)
		return
	}
	if farmer.UserID != userID {
		writeError(w, http.StatusForbidden, "you do not own this farmer")
		return
	}

	if err := h.farmers.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "farmer not found")
			return
		}
		writeServerError(w, "delete farmer", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// readFarmerForm decodes a create request, which may be JSON or multipart
// form data with an optional image. On failure it writes the response and
// returns ok=false.
func (h *FarmerHandler) readFarmerForm(w http.ResponseWriter, r *http.Request) (farmerForm, string, bool) {
	if !isMultipart(r) {
		var form farmerForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return farmerForm{}, "", false
		}
		return form, "", true
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return farmerForm{}, "", false
	}
	form := farmerForm{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Address:     r.FormValue("address"),
		City:        r.FormValue("city"),
		ZipCode:     r.FormValue("zip_code"),
		Phone:       r.FormValue("phone"),
		Website:     r.FormValue("website"),
	}

	imageURL, ok := h.uploadFormImage(w, r)
	if !ok {
		return farmerForm{}, "", false
	}
	return form, imageURL, true
}

// readFarmerPatch decodes an update request. Absent fields stay nil.
func (h *FarmerHandler) readFarmerPatch(w http.ResponseWriter, r *http.Request) (models.FarmerPatch, bool) {
	if !isMultipart(r) {
		var patch models.FarmerPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return models.FarmerPatch{}, false
		}
		return patch, true
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return models.FarmerPatch{}, false
	}

	var patch models.FarmerPatch
	field := func(name string) *string {
		if values, ok := r.MultipartForm.Value[name]; ok && len(values) > 0 {
			return &values[0]
		}
		return nil
	}
	patch.Name = field("name")
	patch.Description = field("description")
	patch.Address = field("address")
	patch.City = field("city")
	patch.ZipCode = field("zip_code")
	patch.Phone = field("phone")
	patch.Website = field("website")

	imageURL, ok := h.uploadFormImage(w, r)
	if !ok {
		return models.FarmerPatch{}, false
	}
	if imageURL != "" {
		patch.ImageURL = &imageURL
	}
	return patch, true
}

// uploadFormImage uploads the optional "image" part and returns its URL.
func (h *FarmerHandler) uploadFormImage(w http.ResponseWriter, r *http.Request) (string, bool) {
	headers := r.MultipartForm.File["image"]
	if len(headers) == 0 {
		return "", true
	}
	if h.uploads == nil {
		writeError(w, http.StatusBadRequest, "image uploads are not available")
		return "", false
	}

	file, err := headers[0].Open()
	if err != nil {
		writeServerError(w, "open uploaded image", err)
		return "", false
	}
	defer file.Close()

	imageURL, err := h.uploads.UploadImage(r.Context(), file, headers[0])
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedImageType) {
			writeError(w, http.StatusBadRequest, err.Error())
			return "", false
		}
		writeServerError(w, "upload image", err)
		return "", false
	}
	return imageURL, true
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

func valueOr(v *string, fallback string) string {
	if v != nil {
		return *v
	}
	return fallback
}
