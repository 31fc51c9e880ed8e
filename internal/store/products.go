package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saveagri/saveagri-backend/internal/models"
)

// PostgresProductStore implements ProductStore on a shared *sql.DB handle.
type PostgresProductStore struct {
	db *sql.DB
}

var _ ProductStore = (*PostgresProductStore)(nil)

func NewPostgresProductStore(db *sql.DB) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

func (s *PostgresProductStore) All(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, farmer_id, name, description, COALESCE(image_url, '')
		FROM products ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.FarmerID, &p.Name, &p.Description, &p.ImageURL); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *PostgresProductStore) GetByID(ctx context.Context, id int64) (models.Product, error) {
	var p models.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, farmer_id, name, description, COALESCE(image_url, '')
		FROM products WHERE id = $1
	`, id).Scan(&p.ID, &p.FarmerID, &p.Name, &p.Description, &p.ImageURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Product{}, ErrNotFound
		}
		return models.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *PostgresProductStore) Create(ctx context.Context, product models.Product) (models.Product, error) {
	var imageURL any
	if product.ImageURL != "" {
		imageURL = product.ImageURL
	}
	var created models.Product
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (farmer_id, name, description, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, farmer_id, name, description, COALESCE(image_url, '')
	`, product.FarmerID, product.Name, product.Description, imageURL).
		Scan(&created.ID, &created.FarmerID, &created.Name, &created.Description, &created.ImageURL)
	if err != nil {
		return models.Product{}, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}
