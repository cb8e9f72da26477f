package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ride-auth/internal/domain"
)

// AccountRepository define el contrato de persistencia para cuentas.
type AccountRepository interface {
	// GetOrCreate inserta la cuenta o devuelve la existente con el mismo teléfono.
	// Los flags de rol se acumulan, nunca se apagan.
	GetOrCreate(ctx context.Context, account domain.Account) (domain.Account, error)
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByPhone(ctx context.Context, phone string) (domain.Account, error)
	MarkPhoneVerified(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string, verifyPhone bool) error
	MarkDriver(ctx context.Context, id string) error
}

// PgAccountRepository implementa AccountRepository usando pgxpool.
type PgAccountRepository struct {
	pool *pgxpool.Pool
}

func NewPgAccountRepository(pool *pgxpool.Pool) *PgAccountRepository {
	return &PgAccountRepository{pool: pool}
}

const accountColumns = `id, phone, password_hash, is_verify_phone, is_passenger, is_driver, is_staff, is_active, created_at, updated_at`

func scanAccount(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID,
		&a.Phone,
		&a.PasswordHash,
		&a.IsVerifyPhone,
		&a.IsPassenger,
		&a.IsDriver,
		&a.IsStaff,
		&a.IsActive,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, err
	}
	return a, err
}

func (r *PgAccountRepository) GetOrCreate(ctx context.Context, account domain.Account) (domain.Account, error) {
	query := `
		INSERT INTO accounts (id, phone, password_hash, is_verify_phone, is_passenger, is_driver, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, $4, $5, TRUE, $6, $6)
		ON CONFLICT (phone) DO UPDATE
		SET is_passenger = accounts.is_passenger OR EXCLUDED.is_passenger,
		    is_driver = accounts.is_driver OR EXCLUDED.is_driver,
		    updated_at = NOW()
		RETURNING ` + accountColumns
	return scanAccount(r.pool.QueryRow(ctx, query,
		account.ID,
		account.Phone,
		account.PasswordHash,
		account.IsPassenger,
		account.IsDriver,
		account.CreatedAt,
	))
}

func (r *PgAccountRepository) Create(ctx context.Context, account domain.Account) error {
	const query = `
		INSERT INTO accounts (id, phone, password_hash, is_verify_phone, is_passenger, is_driver, is_staff, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.Phone,
		account.PasswordHash,
		account.IsVerifyPhone,
		account.IsPassenger,
		account.IsDriver,
		account.IsStaff,
		account.IsActive,
		account.CreatedAt,
	)
	return mapWriteError(err)
}

func (r *PgAccountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *PgAccountRepository) GetByPhone(ctx context.Context, phone string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE phone = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, phone))
}

func (r *PgAccountRepository) MarkPhoneVerified(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE accounts SET is_verify_phone = TRUE, updated_at = NOW() WHERE id = $1`, id)
}

func (r *PgAccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string, verifyPhone bool) error {
	const query = `
		UPDATE accounts
		SET password_hash = $2,
		    is_verify_phone = is_verify_phone OR $3,
		    updated_at = NOW()
		WHERE id = $1
	`
	return r.exec(ctx, query, id, passwordHash, verifyPhone)
}

func (r *PgAccountRepository) MarkDriver(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE accounts SET is_driver = TRUE, updated_at = NOW() WHERE id = $1`, id)
}

func (r *PgAccountRepository) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
