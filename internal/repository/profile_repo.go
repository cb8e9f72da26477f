package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ride-auth/internal/domain"
)

// ProfileRepository persiste perfiles de pasajero y conductor.
type ProfileRepository interface {
	// EnsurePassenger crea el perfil de pasajero si no existe; es idempotente.
	EnsurePassenger(ctx context.Context, profile domain.PassengerProfile) error
	// CreateDriver inserta el perfil y marca accounts.is_driver en una sola transacción.
	CreateDriver(ctx context.Context, profile domain.DriverProfile) error
	GetDriverByID(ctx context.Context, id string) (domain.DriverProfile, error)
	GetDriverByAccount(ctx context.Context, accountID string) (domain.DriverProfile, error)
	// UpdateDriverStatus solo aplica si el estado actual sigue siendo from.
	UpdateDriverStatus(ctx context.Context, id string, from, to domain.VerificationStatus, note string) (bool, error)
}

type PgProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgProfileRepository(pool *pgxpool.Pool) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

func (r *PgProfileRepository) EnsurePassenger(ctx context.Context, profile domain.PassengerProfile) error {
	const query = `
		INSERT INTO passenger_profiles (id, account_id, first_name, last_name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, $5, $5)
		ON CONFLICT (account_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.AccountID,
		profile.FirstName,
		profile.LastName,
		profile.CreatedAt,
	)
	return err
}

func (r *PgProfileRepository) CreateDriver(ctx context.Context, profile domain.DriverProfile) error {
	const insertProfile = `
		INSERT INTO driver_profiles (
			id, account_id, first_name, last_name, father_name, nation_code, license_number,
			driver_type, province, image_id, verification_status, is_active, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE, $12, $12)
	`
	const markDriver = `UPDATE accounts SET is_driver = TRUE, updated_at = $2 WHERE id = $1`

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertProfile,
			profile.ID,
			profile.AccountID,
			profile.FirstName,
			profile.LastName,
			profile.FatherName,
			profile.NationCode,
			profile.LicenseNumber,
			string(profile.DriverType),
			string(profile.Province),
			profile.ImageID,
			string(profile.VerificationStatus),
			profile.CreatedAt,
		); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, markDriver, profile.AccountID, profile.CreatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
	return mapWriteError(err)
}

const driverColumns = `
	id, account_id, first_name, last_name, father_name, nation_code, license_number,
	driver_type, province, image_id, verification_status, verifier_note, is_active, created_at, updated_at
`

func scanDriver(row pgx.Row) (domain.DriverProfile, error) {
	var (
		p          domain.DriverProfile
		driverType string
		province   string
		status     string
	)
	err := row.Scan(
		&p.ID,
		&p.AccountID,
		&p.FirstName,
		&p.LastName,
		&p.FatherName,
		&p.NationCode,
		&p.LicenseNumber,
		&driverType,
		&province,
		&p.ImageID,
		&status,
		&p.VerifierNote,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.DriverProfile{}, err
	}
	p.DriverType = domain.DriverType(driverType)
	p.Province = domain.Province(province)
	p.VerificationStatus = domain.VerificationStatus(status)
	return p, nil
}

func (r *PgProfileRepository) GetDriverByID(ctx context.Context, id string) (domain.DriverProfile, error) {
	query := `SELECT ` + driverColumns + ` FROM driver_profiles WHERE id = $1`
	return scanDriver(r.pool.QueryRow(ctx, query, id))
}

func (r *PgProfileRepository) GetDriverByAccount(ctx context.Context, accountID string) (domain.DriverProfile, error) {
	query := `SELECT ` + driverColumns + ` FROM driver_profiles WHERE account_id = $1`
	return scanDriver(r.pool.QueryRow(ctx, query, accountID))
}

func (r *PgProfileRepository) UpdateDriverStatus(ctx context.Context, id string, from, to domain.VerificationStatus, note string) (bool, error) {
	const query = `
		UPDATE driver_profiles
		SET verification_status = $3, verifier_note = $4, updated_at = $5
		WHERE id = $1 AND verification_status = $2
	`
	tag, err := r.pool.Exec(ctx, query, id, string(from), string(to), note, time.Now().UTC())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
