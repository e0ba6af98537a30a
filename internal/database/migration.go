package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/clarity-health/claimrisk/internal/models"
)

// RunAllMigrations runs all database migrations in the correct order
func RunAllMigrations(db *gorm.DB) error {
	// Run core system migrations first
	if err := runCoreMigrations(db); err != nil {
		return fmt.Errorf("core migrations failed: %w", err)
	}

	// Run claim-risk domain migrations
	if err := runClaimRiskMigrations(db); err != nil {
		return fmt.Errorf("claim risk migrations failed: %w", err)
	}

	// Add composite indexes for performance
	if err := createCompositeIndexes(db); err != nil {
		return fmt.Errorf("index creation failed: %w", err)
	}

	// Create additional constraints
	if err := createAdditionalConstraints(db); err != nil {
		return fmt.Errorf("constraint creation failed: %w", err)
	}

	return nil
}

// runCoreMigrations runs core system table migrations
func runCoreMigrations(db *gorm.DB) error {
	// Auto-migrate core models in dependency order
	if err := db.AutoMigrate(
		&models.UserModel{},
		&models.RefreshTokenModel{},
	); err != nil {
		return fmt.Errorf("failed to auto-migrate core models: %w", err)
	}

	return nil
}

// runClaimRiskMigrations runs migrations for the claim risk domain: payers,
// providers, claims, remittances, episodes, denial patterns, risk scores,
// and the audit trail.
func runClaimRiskMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.PayerModel{},
		&models.ProviderModel{},
		&models.ClaimModel{},
		&models.ClaimLineModel{},
		&models.DiagnosisModel{},
		&models.RemittanceModel{},
		&models.RemittanceClaimModel{},
		&models.AdjustmentModel{},
		&models.RemittanceServiceLineModel{},
		&models.EpisodeModel{},
		&models.DenialPatternModel{},
		&models.RiskScoreModel{},
		&models.AuditLogModel{},
	); err != nil {
		return fmt.Errorf("claim risk migration failed: %w", err)
	}
	return nil
}

// createCompositeIndexes creates composite indexes required by spec.md §6:
// all foreign keys plus the service-date/status/payer lookups the claim,
// remittance, episode, pattern and risk-score queries rely on.
func createCompositeIndexes(db *gorm.DB) error {
	indexes := []struct {
		name  string
		query string
	}{
		{
			name:  "idx_claims_service_date",
			query: "CREATE INDEX IF NOT EXISTS idx_claims_service_date ON claims(service_date_start)",
		},
		{
			name:  "idx_claims_created_at",
			query: "CREATE INDEX IF NOT EXISTS idx_claims_created_at ON claims(created_at)",
		},
		{
			name:  "idx_claims_updated_at",
			query: "CREATE INDEX IF NOT EXISTS idx_claims_updated_at ON claims(updated_at)",
		},
		{
			name:  "idx_claims_payer_status",
			query: "CREATE INDEX IF NOT EXISTS idx_claims_payer_status ON claims(payer_id, status)",
		},
		// Episode linking: find candidate claims sharing a hashed patient id
		// within a service-date window (spec.md §4.7 rule 2)
		{
			name:  "idx_claims_patient_service_date",
			query: "CREATE INDEX IF NOT EXISTS idx_claims_patient_service_date ON claims(patient_control_number, service_date_start)",
		},
		{
			name:  "idx_remittances_payment_date",
			query: "CREATE INDEX IF NOT EXISTS idx_remittances_payment_date ON remittances(payment_date)",
		},
		{
			name:  "idx_remittances_created_at",
			query: "CREATE INDEX IF NOT EXISTS idx_remittances_created_at ON remittances(created_at)",
		},
		{
			name:  "idx_remittances_payer_created",
			query: "CREATE INDEX IF NOT EXISTS idx_remittances_payer_created ON remittances(payer_id, created_at)",
		},
		// Episode triage by status + denial count, and by remittance
		{
			name:  "idx_episodes_status_denials",
			query: "CREATE INDEX IF NOT EXISTS idx_episodes_status_denials ON episodes(status, denial_count)",
		},
		{
			name:  "idx_episodes_remittance_status",
			query: "CREATE INDEX IF NOT EXISTS idx_episodes_remittance_status ON episodes(remittance_id, status)",
		},
		// Pattern mining lookups scoped to a payer + reason code
		{
			name:  "idx_patterns_payer_reason",
			query: "CREATE INDEX IF NOT EXISTS idx_patterns_payer_reason ON denial_patterns(payer_id, denial_reason_code)",
		},
		// Risk dashboard: latest score per claim, newest first
		{
			name:  "idx_risk_scores_claim_calculated",
			query: "CREATE INDEX IF NOT EXISTS idx_risk_scores_claim_calculated ON risk_scores(claim_id, calculated_at DESC)",
		},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}

// createAdditionalConstraints creates additional database constraints beyond
// what GORM struct tags express directly.
func createAdditionalConstraints(db *gorm.DB) error {
	constraints := []struct {
		name  string
		query string
	}{
		// Payer/provider identity is content-addressed (spec.md §3).
		{
			name:  "unique_payer_external_id",
			query: "ALTER TABLE payers ADD CONSTRAINT unique_payer_external_id UNIQUE (payer_id_external)",
		},
		{
			name:  "unique_provider_npi",
			query: "ALTER TABLE providers ADD CONSTRAINT unique_provider_npi UNIQUE (npi)",
		},
		// Pattern uniqueness key (spec.md §3 DenialPattern).
		{
			name:  "unique_denial_pattern_key",
			query: "ALTER TABLE denial_patterns ADD CONSTRAINT unique_denial_pattern_key UNIQUE (payer_id, denial_reason_code, procedure_code, diagnosis_code)",
		},
		// Scores are bounded [0,100] (spec.md §3 invariants).
		{
			name:  "check_risk_score_bounds",
			query: "ALTER TABLE risk_scores ADD CONSTRAINT check_risk_score_bounds CHECK (overall_score >= 0 AND overall_score <= 100)",
		},
		// Pattern frequency/confidence are bounded [0,1].
		{
			name:  "check_pattern_frequency_bounds",
			query: "ALTER TABLE denial_patterns ADD CONSTRAINT check_pattern_frequency_bounds CHECK (frequency >= 0 AND frequency <= 1)",
		},
		{
			name:  "check_pattern_confidence_bounds",
			query: "ALTER TABLE denial_patterns ADD CONSTRAINT check_pattern_confidence_bounds CHECK (confidence >= 0 AND confidence <= 1)",
		},
	}

	for _, constraint := range constraints {
		if err := db.Exec(constraint.query).Error; err != nil {
			// Many databases don't support IF NOT EXISTS for constraints
			// So we ignore errors for existing constraints
			if !isConstraintExistsError(err) {
				return fmt.Errorf("failed to create constraint %s: %w", constraint.name, err)
			}
		}
	}

	return nil
}

// isConstraintExistsError reports whether err looks like a "constraint
// already exists" error from the underlying driver (MySQL, SQLite, or
// Postgres phrasing), which callers tolerate on repeated migration runs.
func isConstraintExistsError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "duplicate key name")
}

// GetMigrationStatus returns the status of all migrations
func GetMigrationStatus(db *gorm.DB) map[string]bool {
	status := make(map[string]bool)

	tables := []string{
		"users", "refresh_tokens",
		"payers", "providers", "claims", "claim_lines", "diagnoses",
		"remittances", "remittance_claims", "adjustments", "remittance_service_lines",
		"episodes", "denial_patterns", "risk_scores", "audit_logs",
	}
	for _, table := range tables {
		status[table] = db.Migrator().HasTable(table)
	}

	return status
}

// ValidateMigrationIntegrity checks that all expected tables and critical
// columns exist.
func ValidateMigrationIntegrity(db *gorm.DB) error {
	migrator := db.Migrator()

	requiredTables := []string{
		"users", "refresh_tokens",
		"payers", "providers", "claims", "claim_lines", "diagnoses",
		"remittances", "remittance_claims", "adjustments", "remittance_service_lines",
		"episodes", "denial_patterns", "risk_scores", "audit_logs",
	}

	for _, table := range requiredTables {
		if !migrator.HasTable(table) {
			return fmt.Errorf("missing required table: %s", table)
		}
	}

	criticalColumns := map[string][]string{
		"claims":          {"payer_id", "provider_id", "claim_control_number", "patient_control_number", "total_charge_amount", "status"},
		"episodes":        {"claim_id", "remittance_id", "status", "denial_count", "total_paid", "total_adjustment"},
		"denial_patterns": {"payer_id", "denial_reason_code", "frequency", "confidence", "occurrence_count"},
		"risk_scores":     {"claim_id", "overall_score", "level", "calculated_at"},
	}

	for table, columns := range criticalColumns {
		for _, column := range columns {
			if !migrator.HasColumn(table, column) {
				return fmt.Errorf("missing required column %s.%s", table, column)
			}
		}
	}

	return nil
}

// SetupTestDatabase prepares database for testing with clean migrations
func SetupTestDatabase(db *gorm.DB) error {
	// Run fresh migrations
	if err := RunAllMigrations(db); err != nil {
		return fmt.Errorf("failed to run test migrations: %w", err)
	}

	return nil
}
