package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clarity-health/claimrisk/internal/domain"
	"github.com/clarity-health/claimrisk/internal/models"
	"github.com/clarity-health/claimrisk/internal/services"
	"gorm.io/gorm"
)

// episodeRepository implements services.EpisodeRepository using GORM.
type episodeRepository struct {
	db *gorm.DB
}

// NewEpisodeRepository creates a new episode repository instance.
func NewEpisodeRepository(db *gorm.DB) services.EpisodeRepository {
	return &episodeRepository{db: db}
}

// GetByClaimID retrieves the episode for a claim (one-to-one, spec.md §3).
func (r *episodeRepository) GetByClaimID(ctx context.Context, claimID string) (domain.Episode, error) {
	var model models.EpisodeModel
	if err := r.db.WithContext(ctx).First(&model, "claim_id = ?", claimID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Episode{}, domain.ErrEpisodeNotFound
		}
		return domain.Episode{}, fmt.Errorf("failed to get episode: %w", err)
	}
	return model.ToDomain(), nil
}

// Save upserts an episode by claim ID.
func (r *episodeRepository) Save(ctx context.Context, episode domain.Episode) (domain.Episode, error) {
	model := models.NewEpisodeModelFromDomain(episode)

	var existing models.EpisodeModel
	result := r.db.WithContext(ctx).First(&existing, "claim_id = ?", episode.ClaimID)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return domain.Episode{}, fmt.Errorf("failed to check existing episode: %w", result.Error)
		}
		if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
			return domain.Episode{}, fmt.Errorf("failed to create episode: %w", err)
		}
		return model.ToDomain(), nil
	}

	if err := r.db.WithContext(ctx).Model(&existing).Select("*").Updates(model).Error; err != nil {
		return domain.Episode{}, fmt.Errorf("failed to update episode: %w", err)
	}
	return r.GetByClaimID(ctx, episode.ClaimID)
}

// ListByStatus returns episodes in a given status, newest-updated-first.
func (r *episodeRepository) ListByStatus(ctx context.Context, status domain.EpisodeStatus, limit, offset int) ([]domain.Episode, error) {
	var rows []models.EpisodeModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("last_updated_at DESC").Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes by status: %w", err)
	}
	out := make([]domain.Episode, len(rows))
	for i, m := range rows {
		out[i] = m.ToDomain()
	}
	return out, nil
}

// CountByStatus reports how many episodes are currently in a status.
func (r *episodeRepository) CountByStatus(ctx context.Context, status domain.EpisodeStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.EpisodeModel{}).
		Where("status = ?", string(status)).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count episodes by status: %w", err)
	}
	return count, nil
}

// PayerDenialStats joins episodes to their owning claim to compute the
// payer risk factor's historical denial rate (spec.md §4.9).
func (r *episodeRepository) PayerDenialStats(ctx context.Context, payerID string, since time.Time) (denied int64, total int64, err error) {
	base := r.db.WithContext(ctx).Table("episodes AS e").
		Joins("JOIN claims AS c ON c.id = e.claim_id").
		Where("c.payer_id = ? AND e.last_updated_at >= ?", payerID, since)

	if err = base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count total episodes for payer: %w", err)
	}
	deniedQuery := r.db.WithContext(ctx).Table("episodes AS e").
		Joins("JOIN claims AS c ON c.id = e.claim_id").
		Where("c.payer_id = ? AND e.last_updated_at >= ? AND e.status IN ?", payerID, since, []string{
			string(domain.EpisodeStatusDenied), string(domain.EpisodeStatusPartial),
		})
	if err = deniedQuery.Count(&denied).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count denied episodes for payer: %w", err)
	}
	return denied, total, nil
}

// ListPatternInputs joins episodes → claims (for payer/diagnosis/procedure
// codes) → remittance claims (matched by claim_control_number) →
// adjustments, scoped to the denied/partial episodes updated within the
// window (spec.md §4.8 step 1).
func (r *episodeRepository) ListPatternInputs(ctx context.Context, payerID string, windowStart, windowEnd time.Time) ([]services.PatternInput, error) {
	type row struct {
		PayerID       string
		ReasonCode    string
		ProcedureCode string
		DiagnosisCode string
	}
	var rows []row

	q := r.db.WithContext(ctx).Table("episodes AS e").
		Select("c.payer_id AS payer_id, a.reason_code AS reason_code, sl.procedure_code AS procedure_code, d.code AS diagnosis_code").
		Joins("JOIN claims AS c ON c.id = e.claim_id").
		Joins("JOIN remittance_claims AS rc ON rc.claim_control_number = c.claim_control_number").
		Joins("JOIN adjustments AS a ON a.remittance_claim_id = rc.id").
		Joins("LEFT JOIN remittance_service_lines AS sl ON sl.remittance_claim_id = rc.id").
		Joins("LEFT JOIN diagnoses AS d ON d.claim_id = c.id AND d.principal = ?", true).
		Where("e.status IN ? AND e.last_updated_at BETWEEN ? AND ?", []string{
			string(domain.EpisodeStatusDenied), string(domain.EpisodeStatusPartial),
		}, windowStart, windowEnd)
	if payerID != "" {
		q = q.Where("c.payer_id = ?", payerID)
	}

	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list pattern inputs: %w", err)
	}

	grouped := make(map[string]*services.PatternInput)
	order := make([]string, 0, len(rows))
	for _, rr := range rows {
		key := rr.PayerID + "|" + rr.ReasonCode
		pi, ok := grouped[key]
		if !ok {
			pi = &services.PatternInput{PayerID: rr.PayerID, ReasonCode: rr.ReasonCode}
			grouped[key] = pi
			order = append(order, key)
		}
		pi.ProcedureCodes = append(pi.ProcedureCodes, rr.ProcedureCode)
		if rr.DiagnosisCode != "" {
			pi.DiagnosisCodes = append(pi.DiagnosisCodes, rr.DiagnosisCode)
		}
	}

	out := make([]services.PatternInput, 0, len(order))
	for _, key := range order {
		out = append(out, *grouped[key])
	}
	return out, nil
}
