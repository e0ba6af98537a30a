package services

import (
	"context"
	"time"

	"github.com/clarity-health/claimrisk/internal/domain"
)

// Repository interfaces are defined in the services package following the consumer-defined principle
// These interfaces are consumed by services in this package, so they belong here

// UserRepository defines the interface for user persistence operations
// This interface is consumed by AuthService
type UserRepository interface {
	// Create saves a new user to the database
	Create(ctx context.Context, user *domain.User) error

	// GetByEmail retrieves a user by their email address
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByID retrieves a user by their ID
	GetByID(ctx context.Context, userID string) (*domain.User, error)

	// Update modifies an existing user's data
	Update(ctx context.Context, user *domain.User) error

	// UpdateLastLogin updates the last login timestamp for a user
	UpdateLastLogin(ctx context.Context, userID string, loginTime time.Time) error
}

// TokenRepository defines the interface for refresh token persistence operations
// This interface is consumed by AuthService
type TokenRepository interface {
	// SaveRefreshToken stores a refresh token for a user
	SaveRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error

	// GetRefreshToken retrieves a refresh token by the token string
	GetRefreshToken(ctx context.Context, token string) (userID string, err error)

	// RevokeToken marks a refresh token as revoked
	RevokeToken(ctx context.Context, token string) error

	// RevokeAllUserTokens marks all refresh tokens for a user as revoked
	RevokeAllUserTokens(ctx context.Context, userID string) error

	// CleanupExpiredTokens removes expired tokens from the database
	CleanupExpiredTokens(ctx context.Context) error
}

// PayerRepository persists payer identities resolved during ingestion.
type PayerRepository interface {
	GetOrCreateByExternalID(ctx context.Context, payerIDExternal, name string) (domain.Payer, error)
	GetByID(ctx context.Context, id string) (domain.Payer, error)
	List(ctx context.Context) ([]domain.Payer, error)
}

// ProviderRepository persists provider identities keyed by NPI.
type ProviderRepository interface {
	GetOrCreateByNPI(ctx context.Context, npi, name, taxonomyCode string) (domain.Provider, error)
	GetByID(ctx context.Context, id string) (domain.Provider, error)
}

// ClaimRepository persists 837 claims and their lines/diagnoses.
type ClaimRepository interface {
	Save(ctx context.Context, claim domain.Claim) (domain.Claim, error)
	GetByID(ctx context.Context, id string) (domain.Claim, error)
	GetByControlNumber(ctx context.Context, claimControlNumber string) (domain.Claim, error)
	FindCandidatesForLinking(ctx context.Context, patientControlNumberHash string, windowStart, windowEnd time.Time) ([]domain.Claim, error)
	List(ctx context.Context, limit, offset int) ([]domain.Claim, error)
}

// RemittanceRepository persists 835 remittances and their claim details.
type RemittanceRepository interface {
	Save(ctx context.Context, remittance domain.Remittance) (domain.Remittance, error)
	GetByID(ctx context.Context, id string) (domain.Remittance, error)
	List(ctx context.Context, limit, offset int) ([]domain.Remittance, error)
}

// EpisodeRepository persists the claim-to-remittance lifecycle join.
type EpisodeRepository interface {
	GetByClaimID(ctx context.Context, claimID string) (domain.Episode, error)
	Save(ctx context.Context, episode domain.Episode) (domain.Episode, error)
	ListByStatus(ctx context.Context, status domain.EpisodeStatus, limit, offset int) ([]domain.Episode, error)
	CountByStatus(ctx context.Context, status domain.EpisodeStatus) (int64, error)

	// PayerDenialStats supports the payer risk factor's historical denial
	// rate (spec.md §4.9): denied-or-partial episodes vs total episodes
	// for claims of a given payer, observed since `since`.
	PayerDenialStats(ctx context.Context, payerID string, since time.Time) (denied int64, total int64, err error)

	// ListPatternInputs returns one row per (denied/partial episode,
	// adjustment) pair within the window, joined through to the owning
	// claim's payer and procedure/diagnosis codes, for the pattern miner
	// (spec.md §4.8 step 1). When payerID is "", all payers are scanned.
	ListPatternInputs(ctx context.Context, payerID string, windowStart, windowEnd time.Time) ([]PatternInput, error)
}

// PatternInput is one denial/adjustment observation feeding the pattern
// detector's frequency aggregation.
type PatternInput struct {
	PayerID        string
	ReasonCode     string
	ProcedureCodes []string
	DiagnosisCodes []string
}

// PatternRepository persists mined denial patterns, upserted by key.
type PatternRepository interface {
	Upsert(ctx context.Context, pattern domain.DenialPattern) (domain.DenialPattern, error)
	ListByPayer(ctx context.Context, payerID string) ([]domain.DenialPattern, error)
	ListAll(ctx context.Context) ([]domain.DenialPattern, error)
}

// RiskScoreRepository persists versioned per-claim risk scores.
type RiskScoreRepository interface {
	Save(ctx context.Context, score domain.RiskScore) (domain.RiskScore, error)
	GetLatestByClaimID(ctx context.Context, claimID string) (domain.RiskScore, error)
	ListByLevel(ctx context.Context, level domain.RiskLevel, limit, offset int) ([]domain.RiskScore, error)
}

// AuditLogRepository persists request audit trail entries.
type AuditLogRepository interface {
	Create(ctx context.Context, entry domain.AuditLog) error
	List(ctx context.Context, limit, offset int) ([]domain.AuditLog, error)

	// Stats summarizes request volume recorded since `since`, grouped by
	// status code, for the /audit-logs/stats operational endpoint.
	Stats(ctx context.Context, since time.Time) (domain.AuditLogStats, error)
}