package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BlockRepo implements the do-not-contact registry with PostgreSQL.
type BlockRepo struct {
	pool *pgxpool.Pool
}

// NewBlockRepo creates a new do-not-contact repository.
func NewBlockRepo(pool *pgxpool.Pool) *BlockRepo {
	return &BlockRepo{pool: pool}
}

// Compile-time check that BlockRepo implements BlockRepository.
var _ BlockRepository = (*BlockRepo)(nil)

// IsBlocked reports whether the identity (phone or email) is on the tenant's
// do-not-contact list. Identities are stored normalized.
func (r *BlockRepo) IsBlocked(ctx context.Context, tenantID uuid.UUID, identity string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM contact_blocks WHERE tenant_id = $1 AND identity = $2)`

	var blocked bool
	if err := r.pool.QueryRow(ctx, query, tenantID, identity).Scan(&blocked); err != nil {
		return false, fmt.Errorf("check contact block: %w", err)
	}

	return blocked, nil
}
