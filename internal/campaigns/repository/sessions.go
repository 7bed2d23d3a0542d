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

const sessionNotFoundMessage = "campaign session not found"

const sessionColumns = `
	id, tenant_id, status, channel, source_type, message_template, target_ids,
	current_pointer, processed, succeeded, failed, scheduled_at, failure_reason,
	retry_of_id, created_at, updated_at`

// SessionRepo implements SessionRepository with PostgreSQL.
type SessionRepo struct {
	pool *pgxpool.Pool
}

// NewSessionRepo creates a new campaign session repository.
func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

// Compile-time check that SessionRepo implements SessionRepository.
var _ SessionRepository = (*SessionRepo)(nil)

// Create persists a new session with its immutable target snapshot.
func (r *SessionRepo) Create(ctx context.Context, session Session) (Session, error) {
	query := `
		INSERT INTO campaign_sessions
			(tenant_id, status, channel, source_type, message_template, target_ids, scheduled_at, retry_of_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + sessionColumns

	row := r.pool.QueryRow(ctx, query,
		session.TenantID, session.Status, session.Channel, session.SourceType,
		session.Template, session.TargetIDs, session.ScheduledAt, session.RetryOfID,
	)

	created, err := scanSession(row)
	if err != nil {
		return Session{}, fmt.Errorf("create campaign session: %w", err)
	}

	return created, nil
}

// GetByID retrieves a session scoped to its tenant.
func (r *SessionRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM campaign_sessions WHERE id = $1 AND tenant_id = $2`

	session, err := scanSession(r.pool.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, apperr.NotFound(sessionNotFoundMessage)
		}
		return Session{}, fmt.Errorf("get campaign session: %w", err)
	}

	return session, nil
}

// List retrieves a tenant's sessions, newest first.
func (r *SessionRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]Session, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM campaign_sessions WHERE tenant_id = $1`
	if err := r.pool.QueryRow(ctx, countQuery, tenantID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count campaign sessions: %w", err)
	}

	query := `
		SELECT ` + sessionColumns + `
		FROM campaign_sessions
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list campaign sessions: %w", err)
	}
	defer rows.Close()

	var results []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan campaign session: %w", err)
		}
		results = append(results, session)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate campaign sessions: %w", err)
	}

	return results, total, nil
}

// UpdateStatus flips the session status, optionally guarded by the current status.
func (r *SessionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, allowedFrom []string) (bool, error) {
	var query string
	var args []interface{}

	if len(allowedFrom) == 0 {
		query = `UPDATE campaign_sessions SET status = $2, updated_at = now() WHERE id = $1`
		args = []interface{}{id, status}
	} else {
		query = `UPDATE campaign_sessions SET status = $2, updated_at = now() WHERE id = $1 AND status = ANY($3)`
		args = []interface{}{id, status, allowedFrom}
	}

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update session status: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// MarkFailed forces the session into the terminal failed state with a diagnostic.
func (r *SessionRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	query := `
		UPDATE campaign_sessions
		SET status = $2, failure_reason = $3, updated_at = now()
		WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id, StatusFailed, reason); err != nil {
		return fmt.Errorf("mark session failed: %w", err)
	}

	return nil
}

// AdvancePointer moves the pointer forward and sets the post-slice status.
// GREATEST keeps the pointer monotonic under duplicate worker invocations.
func (r *SessionRepo) AdvancePointer(ctx context.Context, id uuid.UUID, pointer int, status string) error {
	query := `
		UPDATE campaign_sessions
		SET current_pointer = GREATEST(current_pointer, $2), status = $3, updated_at = now()
		WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id, pointer, status); err != nil {
		return fmt.Errorf("advance session pointer: %w", err)
	}

	return nil
}

// IncrementProgress atomically bumps the processed counter plus one outcome counter.
func (r *SessionRepo) IncrementProgress(ctx context.Context, id uuid.UUID, success bool) error {
	query := `
		UPDATE campaign_sessions
		SET processed = processed + 1,
			succeeded = succeeded + CASE WHEN $2 THEN 1 ELSE 0 END,
			failed = failed + CASE WHEN $2 THEN 0 ELSE 1 END,
			updated_at = now()
		WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id, success); err != nil {
		return fmt.Errorf("increment session progress: %w", err)
	}

	return nil
}

func scanSession(row pgx.Row) (Session, error) {
	var s Session
	err := row.Scan(
		&s.ID, &s.TenantID, &s.Status, &s.Channel, &s.SourceType, &s.Template, &s.TargetIDs,
		&s.CurrentPointer, &s.Processed, &s.Succeeded, &s.Failed, &s.ScheduledAt, &s.FailureReason,
		&s.RetryOfID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return Session{}, err
	}
	return s, nil
}
