package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadmarket_backend/platform/apperr"
)

// RecipientRepo resolves campaign targets from the store matching the
// session's source type: a tenant import batch, the tenant's own lead book,
// or the shared pool.
type RecipientRepo struct {
	pool *pgxpool.Pool
}

// NewRecipientRepo creates a new recipient source.
func NewRecipientRepo(pool *pgxpool.Pool) *RecipientRepo {
	return &RecipientRepo{pool: pool}
}

// Compile-time check that RecipientRepo implements RecipientSource.
var _ RecipientSource = (*RecipientRepo)(nil)

// Get resolves one target id to recipient contact data.
func (r *RecipientRepo) Get(ctx context.Context, tenantID uuid.UUID, sourceType string, id uuid.UUID) (Recipient, error) {
	var query string
	var args []interface{}

	switch sourceType {
	case SourceImported:
		query = `SELECT id, full_name, phone, email FROM imported_recipients WHERE id = $1 AND tenant_id = $2`
		args = []interface{}{id, tenantID}
	case SourceTenant:
		query = `SELECT id, full_name, phone, email FROM tenant_leads WHERE id = $1 AND tenant_id = $2`
		args = []interface{}{id, tenantID}
	case SourcePool:
		query = `SELECT id, full_name, phone, email FROM pool_leads WHERE id = $1`
		args = []interface{}{id}
	default:
		return Recipient{}, apperr.BadRequest("unknown recipient source type")
	}

	var rec Recipient
	err := r.pool.QueryRow(ctx, query, args...).Scan(&rec.ID, &rec.FullName, &rec.Phone, &rec.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Recipient{}, apperr.NotFound("recipient not found")
		}
		return Recipient{}, fmt.Errorf("get recipient: %w", err)
	}

	return rec, nil
}
