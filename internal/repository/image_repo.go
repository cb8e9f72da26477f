package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ride-auth/internal/domain"
)

type ImageRepository interface {
	Create(ctx context.Context, image domain.Image) error
	GetByID(ctx context.Context, id string) (domain.Image, error)
}

type PgImageRepository struct {
	pool *pgxpool.Pool
}

func NewPgImageRepository(pool *pgxpool.Pool) *PgImageRepository {
	return &PgImageRepository{pool: pool}
}

func (r *PgImageRepository) Create(ctx context.Context, image domain.Image) error {
	const query = `
		INSERT INTO images (id, path, created_by, width, height, size, image_type, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		image.ID,
		image.Path,
		image.CreatedBy,
		image.Width,
		image.Height,
		image.Size,
		image.ImageType,
		image.CreatedAt,
	)
	return err
}

func (r *PgImageRepository) GetByID(ctx context.Context, id string) (domain.Image, error) {
	const query = `
		SELECT id, path, created_by, width, height, size, image_type, is_active, created_at
		FROM images
		WHERE id = $1
	`
	var img domain.Image
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&img.ID,
		&img.Path,
		&img.CreatedBy,
		&img.Width,
		&img.Height,
		&img.Size,
		&img.ImageType,
		&img.IsActive,
		&img.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Image{}, err
	}
	return img, err
}
