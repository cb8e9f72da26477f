package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"ride-auth/internal/domain"
)

// RequestLogRepository es de solo escritura: auditoría de solicitudes de verificación.
type RequestLogRepository interface {
	Create(ctx context.Context, entry domain.RequestLog) error
}

type PgRequestLogRepository struct {
	pool *pgxpool.Pool
}

func NewPgRequestLogRepository(pool *pgxpool.Pool) *PgRequestLogRepository {
	return &PgRequestLogRepository{pool: pool}
}

func (r *PgRequestLogRepository) Create(ctx context.Context, entry domain.RequestLog) error {
	const query = `
		INSERT INTO request_log_verify_phone (id, phone, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.Phone,
		entry.IPAddress,
		entry.UserAgent,
		entry.CreatedAt,
	)
	return err
}
