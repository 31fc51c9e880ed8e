package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/saveagri/saveagri-backend/internal/models"
)

const farmerColumns = `id, name, description, address, city, zip_code,
	latitude, longitude, phone, website, COALESCE(image_url, ''), user_id`

// PostgresFarmerStore implements FarmerStore on a shared *sql.DB handle.
type PostgresFarmerStore struct {
	db *sql.DB
}

var _ FarmerStore = (*PostgresFarmerStore)(nil)

func NewPostgresFarmerStore(db *sql.DB) *PostgresFarmerStore {
	return &PostgresFarmerStore{db: db}
}

func (s *PostgresFarmerStore) Create(ctx context.Context, farmer models.Farmer) (models.Farmer, error) {
	var imageURL any
	if farmer.ImageURL != "" {
		imageURL = farmer.ImageURL
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO farmers (name, description, address, city, zip_code,
			phone, website, user_id, latitude, longitude, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+farmerColumns+`
	`, farmer.Name, farmer.Description, farmer.Address, farmer.City, farmer.ZipCode,
		farmer.Phone, farmer.Website, farmer.UserID, farmer.Latitude, farmer.Longitude, imageURL)

	created, err := scanFarmer(row)
	if err != nil {
		return models.Farmer{}, fmt.Errorf("create farmer: %w", err)
	}
	return created, nil
}

func (s *PostgresFarmerStore) GetByID(ctx context.Context, id int64) (models.Farmer, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+farmerColumns+` FROM farmers WHERE id = $1`, id)
	farmer, err := scanFarmer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Farmer{}, ErrNotFound
		}
		return models.Farmer{}, fmt.Errorf("get farmer: %w", err)
	}
	return farmer, nil
}

func (s *PostgresFarmerStore) All(ctx context.Context) ([]models.Farmer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+farmerColumns+` FROM farmers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list farmers: %w", err)
	}
	defer rows.Close()

	var farmers []models.Farmer
	for rows.Next() {
		farmer, err := scanFarmer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan farmer: %w", err)
		}
		farmers = append(farmers, farmer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list farmers: %w", err)
	}
	return farmers, nil
}

// Update applies the present fields of patch to the row. The SET clause is
// assembled from a fixed field list; patch values only ever appear as
// placeholder arguments.
func (s *PostgresFarmerStore) Update(ctx context.Context, id int64, patch models.FarmerPatch) (models.Farmer, error) {
	if patch.Empty() {
		return s.GetByID(ctx, id)
	}

	var set []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Address != nil {
		add("address", *patch.Address)
	}
	if patch.City != nil {
		add("city", *patch.City)
	}
	if patch.ZipCode != nil {
		add("zip_code", *patch.ZipCode)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.Website != nil {
		add("website", *patch.Website)
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}
	if patch.Latitude != nil {
		add("latitude", *patch.Latitude)
	}
	if patch.Longitude != nil {
		add("longitude", *patch.Longitude)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE farmers SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), farmerColumns)

	farmer, err := scanFarmer(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Farmer{}, ErrNotFound
		}
		return models.Farmer{}, fmt.Errorf("update farmer: %w", err)
	}
	return farmer, nil
}

func (s *PostgresFarmerStore) Delete(ctx context.Context, id int64) error {
	var deleted int64
	err := s.db.QueryRowContext(ctx, `DELETE FROM farmers WHERE id = $1 RETURNING id`, id).Scan(&deleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("delete farmer: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFarmer(row rowScanner) (models.Farmer, error) {
	var f models.Farmer
	err := row.Scan(&f.ID, &f.Name, &f.Description, &f.Address, &f.City, &f.ZipCode,
		&f.Latitude, &f.Longitude, &f.Phone, &f.Website, &f.ImageURL, &f.UserID)
	if err != nil {
		return models.Farmer{}, err
	}
	return f, nil
}
