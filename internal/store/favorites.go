package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/saveagri/saveagri-backend/internal/models"
)

// PostgresFavoriteStore implements FavoriteStore on a shared *sql.DB handle.
type PostgresFavoriteStore struct {
	db *sql.DB
}

var _ FavoriteStore = (*PostgresFavoriteStore)(nil)

func NewPostgresFavoriteStore(db *sql.DB) *PostgresFavoriteStore {
	return &PostgresFavoriteStore{db: db}
}

func (s *PostgresFavoriteStore) ListByUser(ctx context.Context, userID int64) ([]models.Farmer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.name, f.description, f.address, f.city, f.zip_code,
			f.latitude, f.longitude, f.phone, f.website, COALESCE(f.image_url, ''), f.user_id
		FROM farmers f
		INNER JOIN favorites fav ON f.id = fav.farmer_id
		WHERE fav.user_id = $1
		ORDER BY f.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var farmers []models.Farmer
	for rows.Next() {
		farmer, err := scanFarmer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		farmers = append(farmers, farmer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return farmers, nil
}

func (s *PostgresFavoriteStore) Add(ctx context.Context, userID, farmerID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO favorites (user_id, farmer_id) VALUES ($1, $2)
	`, userID, farmerID)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return ErrDuplicate
		}
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (s *PostgresFavoriteStore) Remove(ctx context.Context, userID, farmerID int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM favorites WHERE user_id = $1 AND farmer_id = $2
	`, userID, farmerID)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}
