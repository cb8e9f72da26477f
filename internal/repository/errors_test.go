package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapWriteError(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "driver_documents_profile_doc_type_key"})
	if !errors.Is(mapWriteError(dup), ErrConflict) {
		t.Fatalf("expected unique violation to map to ErrConflict")
	}

	fk := &pgconn.PgError{Code: "23503"}
	if errors.Is(mapWriteError(fk), ErrConflict) {
		t.Fatalf("expected foreign key violation to pass through")
	}

	if mapWriteError(nil) != nil {
		t.Fatalf("expected nil to stay nil")
	}
}
