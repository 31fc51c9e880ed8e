package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saveagri/saveagri-backend/internal/models"
)

// PostgresRatingStore implements RatingStore on a shared *sql.DB handle.
type PostgresRatingStore struct {
	db *sql.DB
}

var _ RatingStore = (*PostgresRatingStore)(nil)

func NewPostgresRatingStore(db *sql.DB) *PostgresRatingStore {
	return &PostgresRatingStore{db: db}
}

func (s *PostgresRatingStore) Create(ctx context.Context, rating models.Rating) (models.Rating, error) {
	var created models.Rating
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO ratings (user_id, farmer_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, farmer_id, rating, comment, created_at
	`, rating.UserID, rating.FarmerID, rating.Rating, rating.Comment).
		Scan(&created.ID, &created.UserID, &created.FarmerID, &created.Rating, &created.Comment, &created.CreatedAt)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return models.Rating{}, ErrDuplicate
		}
		return models.Rating{}, fmt.Errorf("create rating: %w", err)
	}
	return created, nil
}

func (s *PostgresRatingStore) GetByID(ctx context.Context, id int64) (models.Rating, error) {
	var r models.Rating
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, farmer_id, rating, comment, created_at
		FROM ratings WHERE id = $1
	`, id).Scan(&r.ID, &r.UserID, &r.FarmerID, &r.Rating, &r.Comment, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Rating{}, ErrNotFound
		}
		return models.Rating{}, fmt.Errorf("get rating: %w", err)
	}
	return r, nil
}

func (s *PostgresRatingStore) Update(ctx context.Context, id int64, rating int, comment string) (models.Rating, error) {
	var r models.Rating
	err := s.db.QueryRowContext(ctx, `
		UPDATE ratings SET rating = $1, comment = $2
		WHERE id = $3
		RETURNING id, user_id, farmer_id, rating, comment, created_at
	`, rating, comment, id).Scan(&r.ID, &r.UserID, &r.FarmerID, &r.Rating, &r.Comment, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Rating{}, ErrNotFound
		}
		return models.Rating{}, fmt.Errorf("update rating: %w", err)
	}
	return r, nil
}

func (s *PostgresRatingStore) Delete(ctx context.Context, id int64) error {
	var deleted int64
	err := s.db.QueryRowContext(ctx, `DELETE FROM ratings WHERE id = $1 RETURNING id`, id).Scan(&deleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("delete rating: %w", err)
	}
	return nil
}
