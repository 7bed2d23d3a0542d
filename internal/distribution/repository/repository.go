package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadmarket_backend/platform/apperr"
)

const tenantNotFoundMessage = "tenant not found"

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new distribution repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetTenant retrieves a tenant's distribution configuration.
func (r *Repo) GetTenant(ctx context.Context, id uuid.UUID) (Tenant, error) {
	query := `
		SELECT id, name, plan_tier, quota_override, force_rotate, is_active
		FROM tenants
		WHERE id = $1`

	var t Tenant
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.PlanTier, &t.QuotaOverride, &t.ForceRotate, &t.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, apperr.NotFound(tenantNotFoundMessage)
		}
		return Tenant{}, fmt.Errorf("get tenant: %w", err)
	}

	return t, nil
}

// ListActiveTenants retrieves all tenants participating in distribution.
func (r *Repo) ListActiveTenants(ctx context.Context) ([]Tenant, error) {
	query := `
		SELECT id, name, plan_tier, quota_override, force_rotate, is_active
		FROM tenants
		WHERE is_active = true
		ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active tenants: %w", err)
	}
	defer rows.Close()

	var results []Tenant
	for rows.Next() {
		var t Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.PlanTier, &t.QuotaOverride, &t.ForceRotate, &t.IsActive); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenants: %w", err)
	}

	return results, nil
}

// ListPlatformLeads retrieves a tenant's platform-sourced lead copies.
func (r *Repo) ListPlatformLeads(ctx context.Context, tenantID uuid.UUID) ([]TenantLead, error) {
	query := `
		SELECT id, tenant_id, source_lead_id, full_name, phone, email, status,
			assigned_user_id, contact_attempts, notes, platform_sourced, assigned_at
		FROM tenant_leads
		WHERE tenant_id = $1 AND platform_sourced = true
		ORDER BY assigned_at ASC NULLS FIRST`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list platform leads: %w", err)
	}
	defer rows.Close()

	var results []TenantLead
	for rows.Next() {
		var tl TenantLead
		err := rows.Scan(
			&tl.ID, &tl.TenantID, &tl.SourceLeadID, &tl.FullName, &tl.Phone, &tl.Email, &tl.Status,
			&tl.AssignedUserID, &tl.ContactAttempts, &tl.Notes, &tl.PlatformSourced, &tl.AssignedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan tenant lead: %w", err)
		}
		results = append(results, tl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenant leads: %w", err)
	}

	return results, nil
}

// CountPlatformLeads returns how many platform-sourced leads a tenant holds.
func (r *Repo) CountPlatformLeads(ctx context.Context, tenantID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM tenant_leads WHERE tenant_id = $1 AND platform_sourced = true`

	var count int
	if err := r.pool.QueryRow(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count platform leads: %w", err)
	}

	return count, nil
}

// DeleteTenantLead removes a tenant's lead copy.
func (r *Repo) DeleteTenantLead(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM tenant_leads WHERE id = $1 AND tenant_id = $2`

	result, err := r.pool.Exec(ctx, query, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete tenant lead: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("tenant lead not found")
	}

	return nil
}

// HarvestNotes copies tenant-private notes into the shared pool lead history.
func (r *Repo) HarvestNotes(ctx context.Context, sourceLeadID, tenantID uuid.UUID, notes string) error {
	query := `
		INSERT INTO pool_lead_history (lead_id, tenant_id, note)
		VALUES ($1, $2, $3)`

	if _, err := r.pool.Exec(ctx, query, sourceLeadID, tenantID, notes); err != nil {
		return fmt.Errorf("harvest notes: %w", err)
	}

	return nil
}

// ClearLeadLock releases an expired lead fully back into the pool.
func (r *Repo) ClearLeadLock(ctx context.Context, leadID uuid.UUID) error {
	query := `
		UPDATE pool_leads
		SET unavailable_until = NULL, last_assigned_to = NULL, updated_at = now()
		WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, leadID); err != nil {
		return fmt.Errorf("clear lead lock: %w", err)
	}

	return nil
}

// MarkLeadTerminal clears the lock but keeps the terminal status visible on
// the pool record. The lead may still be dealt to other tenants.
func (r *Repo) MarkLeadTerminal(ctx context.Context, leadID, tenantID uuid.UUID, status string) error {
	query := `
		UPDATE pool_leads
		SET unavailable_until = NULL, last_assigned_to = NULL, pool_status = $3, updated_at = now()
		WHERE id = $1 AND (last_assigned_to IS NULL OR last_assigned_to = $2)`

	if _, err := r.pool.Exec(ctx, query, leadID, tenantID, status); err != nil {
		return fmt.Errorf("mark lead terminal: %w", err)
	}

	return nil
}

// candidateColumns is shared by both candidate range queries. The store
// cannot express "null or past" in one indexed pass, hence two queries.
const candidateColumns = `
	SELECT id, full_name, phone, email, unavailable_until, last_assigned_to, visited_tenant_ids, pool_status, last_contacted_at
	FROM pool_leads`

// ListUnlockedCandidates returns never-locked leads not already held by the tenant.
func (r *Repo) ListUnlockedCandidates(ctx context.Context, tenantID uuid.UUID, limit int) ([]PoolLead, error) {
	query := candidateColumns + `
		WHERE unavailable_until IS NULL
			AND id NOT IN (
				SELECT source_lead_id FROM tenant_leads
				WHERE tenant_id = $1 AND platform_sourced = true
			)
		ORDER BY id
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list unlocked candidates: %w", err)
	}
	defer rows.Close()

	return scanPoolLeads(rows)
}

// ListExpiredCandidates returns leads whose lock has lapsed.
func (r *Repo) ListExpiredCandidates(ctx context.Context, tenantID uuid.UUID, now time.Time, limit int) ([]PoolLead, error) {
	query := candidateColumns + `
		WHERE unavailable_until IS NOT NULL AND unavailable_until <= $2
			AND id NOT IN (
				SELECT source_lead_id FROM tenant_leads
				WHERE tenant_id = $1 AND platform_sourced = true
			)
		ORDER BY unavailable_until ASC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, tenantID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired candidates: %w", err)
	}
	defer rows.Close()

	return scanPoolLeads(rows)
}

// AssignLead performs the transactional assignment: re-read under a row lock,
// verify eligibility, write the tenant copy and the pool lock in one commit.
// A false return means the candidate should be skipped, not retried.
func (r *Repo) AssignLead(ctx context.Context, leadID, tenantID uuid.UUID, lockUntil time.Time) (bool, error) {
	assigned := false

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var fullName string
		var phone, email *string
		var unavailableUntil *time.Time

		err := tx.QueryRow(ctx, `
			SELECT full_name, phone, email, unavailable_until
			FROM pool_leads
			WHERE id = $1
			FOR UPDATE`, leadID).Scan(&fullName, &phone, &email, &unavailableUntil)
		if errors.Is(err, pgx.ErrNoRows) {
			// Ghost reference: the lead was cleaned up since candidate selection.
			return nil
		}
		if err != nil {
			return fmt.Errorf("reread lead: %w", err)
		}

		if unavailableUntil != nil && unavailableUntil.After(time.Now()) {
			// Lost the race to another tenant.
			return nil
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO tenant_leads (tenant_id, source_lead_id, full_name, phone, email, status, contact_attempts, platform_sourced, assigned_at)
			VALUES ($1, $2, $3, $4, $5, 'new', 0, true, now())`,
			tenantID, leadID, fullName, phone, email,
		)
		if err != nil {
			return fmt.Errorf("insert tenant copy: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE pool_leads
			SET unavailable_until = $2,
				last_assigned_to = $3,
				visited_tenant_ids = CASE
					WHEN $3 = ANY(visited_tenant_ids) THEN visited_tenant_ids
					ELSE array_append(visited_tenant_ids, $3)
				END,
				updated_at = now()
			WHERE id = $1`,
			leadID, lockUntil, tenantID,
		)
		if err != nil {
			return fmt.Errorf("lock pool lead: %w", err)
		}

		assigned = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("assign lead: %w", err)
	}

	return assigned, nil
}

// ApplyOutcomeLock writes the outcome-driven lock. A single-row write is
// enough here: double-locking only ever makes the lock stricter.
func (r *Repo) ApplyOutcomeLock(ctx context.Context, leadID, tenantID uuid.UUID, poolStatus string, until time.Time) error {
	query := `
		UPDATE pool_leads
		SET unavailable_until = $2, last_assigned_to = $3, pool_status = $4, updated_at = now()
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, leadID, until, tenantID, poolStatus)
	if err != nil {
		return fmt.Errorf("apply outcome lock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("lead not found")
	}

	return nil
}

// TouchLastContacted stamps the pool lead after a successful outreach send.
func (r *Repo) TouchLastContacted(ctx context.Context, leadID uuid.UUID, at time.Time) error {
	query := `UPDATE pool_leads SET last_contacted_at = $2, updated_at = now() WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, leadID, at); err != nil {
		return fmt.Errorf("touch last contacted: %w", err)
	}

	return nil
}

// TouchLastContactedByCopy stamps the source lead behind a tenant copy.
func (r *Repo) TouchLastContactedByCopy(ctx context.Context, tenantLeadID uuid.UUID, at time.Time) error {
	query := `
		UPDATE pool_leads
		SET last_contacted_at = $2, updated_at = now()
		WHERE id = (SELECT source_lead_id FROM tenant_leads WHERE id = $1)`

	if _, err := r.pool.Exec(ctx, query, tenantLeadID, at); err != nil {
		return fmt.Errorf("touch last contacted by copy: %w", err)
	}

	return nil
}

func scanPoolLeads(rows pgx.Rows) ([]PoolLead, error) {
	var results []PoolLead

	for rows.Next() {
		var pl PoolLead
		err := rows.Scan(
			&pl.ID, &pl.FullName, &pl.Phone, &pl.Email, &pl.UnavailableUntil,
			&pl.LastAssignedTo, &pl.VisitedTenantIDs, &pl.PoolStatus, &pl.LastContactedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pool lead: %w", err)
		}
		results = append(results, pl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pool leads: %w", err)
	}

	return results, nil
}
