package store

import (
	"context"
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/saveagri/saveagri-backend/internal/models"
)

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicate indicates a uniqueness conflict that is not attributable
	// to a single field (or whose field is unknown).
	ErrDuplicate = errors.New("store: record already exists")
	// ErrDuplicateUsername and ErrDuplicateEmail pin the conflicting field so
	// handlers can name it in the 409 response.
	ErrDuplicateUsername = errors.New("store: username already exists")
	ErrDuplicateEmail    = errors.New("store: email already exists")
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	// Conflicts reports which of username/email are already taken, for
	// field-specific conflict messages. The unique constraints remain the
	// authority under concurrent registration.
	Conflicts(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)
}

// FarmerStore persists producer listings.
type FarmerStore interface {
	Create(ctx context.Context, farmer models.Farmer) (models.Farmer, error)
	GetByID(ctx context.Context, id int64) (models.Farmer, error)
	All(ctx context.Context) ([]models.Farmer, error)
	Update(ctx context.Context, id int64, patch models.FarmerPatch) (models.Farmer, error)
	Delete(ctx context.Context, id int64) error
}

// ProductStore persists farmer products.
type ProductStore interface {
	All(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id int64) (models.Product, error)
	Create(ctx context.Context, product models.Product) (models.Product, error)
}

// FavoriteStore persists user bookmarks of farmers.
type FavoriteStore interface {
	ListByUser(ctx context.Context, userID int64) ([]models.Farmer, error)
	Add(ctx context.Context, userID, farmerID int64) error
	Remove(ctx context.Context, userID, farmerID int64) error
}

// RatingStore persists reviews.
type RatingStore interface {
	Create(ctx context.Context, rating models.Rating) (models.Rating, error)
	GetByID(ctx context.Context, id int64) (models.Rating, error)
	Update(ctx context.Context, id int64, rating int, comment string) (models.Rating, error)
	Delete(ctx context.Context, id int64) error
}

// uniqueViolation maps a Postgres 23505 error to the sentinel for the
// violated constraint, or nil when err is something else.
func uniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}
	constraint := strings.ToLower(pqErr.Constraint)
	switch {
	case strings.Contains(constraint, "username"):
		return ErrDuplicateUsername
	case strings.Contains(constraint, "email"):
		return ErrDuplicateEmail
	default:
		return ErrDuplicate
	}
}
