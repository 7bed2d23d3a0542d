package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DeliveryRepo implements DeliveryRepository with PostgreSQL.
type DeliveryRepo struct {
	pool *pgxpool.Pool
}

// NewDeliveryRepo creates a new delivery log repository.
func NewDeliveryRepo(pool *pgxpool.Pool) *DeliveryRepo {
	return &DeliveryRepo{pool: pool}
}

// Compile-time check that DeliveryRepo implements DeliveryRepository.
var _ DeliveryRepository = (*DeliveryRepo)(nil)

// Exists reports whether a delivery entry already exists for (session, target).
func (r *DeliveryRepo) Exists(ctx context.Context, sessionID, targetID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM campaign_deliveries WHERE session_id = $1 AND target_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, sessionID, targetID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check delivery exists: %w", err)
	}

	return exists, nil
}

// Insert writes exactly one delivery entry per (session, target). The unique
// constraint backs the idempotency guard; conflicting duplicates are dropped.
func (r *DeliveryRepo) Insert(ctx context.Context, delivery Delivery) error {
	query := `
		INSERT INTO campaign_deliveries (session_id, target_id, recipient, outcome, error_detail)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id, target_id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		delivery.SessionID, delivery.TargetID, delivery.Recipient, delivery.Outcome, delivery.ErrorDetail,
	)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}

	return nil
}

// ListFailed retrieves the failed deliveries of a session for retry planning.
func (r *DeliveryRepo) ListFailed(ctx context.Context, sessionID uuid.UUID) ([]Delivery, error) {
	query := `
		SELECT id, session_id, target_id, recipient, outcome, error_detail, created_at
		FROM campaign_deliveries
		WHERE session_id = $1 AND outcome = $2
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, sessionID, OutcomeFailed)
	if err != nil {
		return nil, fmt.Errorf("list failed deliveries: %w", err)
	}
	defer rows.Close()

	var results []Delivery
	for rows.Next() {
		var d Delivery
		err := rows.Scan(&d.ID, &d.SessionID, &d.TargetID, &d.Recipient, &d.Outcome, &d.ErrorDetail, &d.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		results = append(results, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deliveries: %w", err)
	}

	return results, nil
}
