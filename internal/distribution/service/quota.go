package service

import (
	"leadmarket_backend/internal/distribution/repository"
)

// Plan tiers recognized by the quota resolver.
const (
	TierBaseline = "baseline"
	TierElevated = "elevated"
)

// QuotaResolver computes a tenant's daily lead quota from its plan tier and
// an optional explicit override. Pure logic, no side effects.
type QuotaResolver struct {
	baseline int
	elevated int
}

// NewQuotaResolver creates a resolver with the configured tier defaults.
func NewQuotaResolver(baseline, elevated int) *QuotaResolver {
	return &QuotaResolver{baseline: baseline, elevated: elevated}
}

// Resolve returns the tenant's quota. An override only applies when it is
// larger than the tier default. Unknown tiers fail closed to baseline.
func (q *QuotaResolver) Resolve(tenant repository.Tenant) int {
	tierDefault := q.baseline
	if tenant.PlanTier == TierElevated {
		tierDefault = q.elevated
	}

	if tenant.QuotaOverride != nil && *tenant.QuotaOverride > tierDefault {
		return *tenant.QuotaOverride
	}

	return tierDefault
}
