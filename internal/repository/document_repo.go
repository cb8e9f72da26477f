package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ride-auth/internal/domain"
)

// DocumentRepository persiste documentos de conductor.
// Create devuelve ErrConflict si ya existe un documento con el mismo (perfil, tipo).
type DocumentRepository interface {
	Create(ctx context.Context, doc domain.DriverDocument) error
	GetByID(ctx context.Context, id string) (domain.DriverDocument, error)
	ListActiveByProfile(ctx context.Context, profileID string) ([]domain.DriverDocument, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.VerificationStatus, note string) (bool, error)
}

type PgDocumentRepository struct {
	pool *pgxpool.Pool
}

func NewPgDocumentRepository(pool *pgxpool.Pool) *PgDocumentRepository {
	return &PgDocumentRepository{pool: pool}
}

func (r *PgDocumentRepository) Create(ctx context.Context, doc domain.DriverDocument) error {
	const query = `
		INSERT INTO driver_documents (id, profile_id, doc_type, image_id, verification_status, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		doc.ID,
		doc.ProfileID,
		string(doc.DocType),
		doc.ImageID,
		string(doc.VerificationStatus),
		doc.CreatedAt,
	)
	return mapWriteError(err)
}

const documentColumns = `id, profile_id, doc_type, image_id, verification_status, verifier_note, is_active, created_at, updated_at`

func scanDocument(row pgx.Row) (domain.DriverDocument, error) {
	var (
		d       domain.DriverDocument
		docType string
		status  string
	)
	err := row.Scan(
		&d.ID,
		&d.ProfileID,
		&docType,
		&d.ImageID,
		&status,
		&d.VerifierNote,
		&d.IsActive,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return domain.DriverDocument{}, err
	}
	d.DocType = domain.DocumentType(docType)
	d.VerificationStatus = domain.VerificationStatus(status)
	return d, nil
}

func (r *PgDocumentRepository) GetByID(ctx context.Context, id string) (domain.DriverDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM driver_documents WHERE id = $1`
	return scanDocument(r.pool.QueryRow(ctx, query, id))
}

func (r *PgDocumentRepository) ListActiveByProfile(ctx context.Context, profileID string) ([]domain.DriverDocument, error) {
	query := `SELECT ` + documentColumns + ` FROM driver_documents WHERE profile_id = $1 AND is_active ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.DriverDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *PgDocumentRepository) UpdateStatus(ctx context.Context, id string, from, to domain.VerificationStatus, note string) (bool, error) {
	const query = `
		UPDATE driver_documents
		SET verification_status = $3, verifier_note = $4, updated_at = $5
		WHERE id = $1 AND verification_status = $2
	`
	tag, err := r.pool.Exec(ctx, query, id, string(from), string(to), note, time.Now().UTC())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
