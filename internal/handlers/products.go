package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/saveagri/saveagri-backend/internal/middleware"
	"github.com/saveagri/saveagri-backend/internal/models"
	"github.com/saveagri/saveagri-backend/internal/services"
	"github.com/saveagri/saveagri-backend/internal/store"
)

// ProductHandler owns the product catalog endpoints. Reads are public;
// creating a product requires owning the farmer it belongs to.
type ProductHandler struct {
	products store.ProductStore
	farmers  store.FarmerStore
	uploads  services.Uploader
}

func NewProductHandler(products store.ProductStore, farmers store.FarmerStore, uploads services.Uploader) *ProductHandler {
	return &ProductHandler{products: products, farmers: farmers, uploads: uploads}
}

// List handles GET /products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.All(r.Context())
	if err != nil {
		writeServerError(w, "list products", err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// Get handles GET /products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	product, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeServerError(w, "get product", err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

type productForm struct {
	FarmerID    int64  `json:"farmer_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// Create handles POST /products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication token missing")
		return
	}

	form, ok := h.readProductForm(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(form.Name) == "" || form.FarmerID <= 0 {
		writeError(w, http.StatusBadRequest, `the "name" and "farmer_id" fields are required`)
		return
	}

	farmer, err := h.farmers.GetByID(r.Context(), form.FarmerID)
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

	product, err := h.products.Create(r.Context(), models.Product{
		FarmerID:    form.FarmerID,
		Name:        form.Name,
		Description: form.Description,
		ImageURL:    form.ImageURL,
	})
	if err != nil {
		writeServerError(w, "create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) readProductForm(w http.ResponseWriter, r *http.Request) (productForm, bool) {
	if !isMultipart(r) {
		var form productForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return productForm{}, false
		}
		return form, true
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return productForm{}, false
	}
	farmerID, _ := strconv.ParseInt(r.FormValue("farmer_id"), 10, 64)
	form := productForm{
		FarmerID:    farmerID,
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}

	headers := r.MultipartForm.File["image"]
	if len(headers) > 0 {
		if h.uploads == nil {
			writeError(w, http.StatusBadRequest, "image uploads are not available")
			return productForm{}, false
		}
		file, err := headers[0].Open()
		if err != nil {
			writeServerError(w, "open uploaded image", err)
			return productForm{}, false
		}
		defer file.Close()

		imageURL, err := h.uploads.UploadImage(r.Context(), file, headers[0])
		if err != nil {
			if errors.Is(err, services.ErrUnsupportedImageType) {
				writeError(w, http.StatusBadRequest, err.Error())
				return productForm{}, false
			}
			writeServerError(w, "upload image", err)
			return productForm{}, false
		}
		form.ImageURL = imageURL
	}
	return form, true
}
