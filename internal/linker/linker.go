// Package linker implements the episode linker (C9): matching each
// incoming remittance-claim to its originating Claim and creating or
// updating the corresponding Episode (spec.md §4.7).
package linker

import (
	"context"
	"fmt"
	"time"

	"github.com/clarity-health/claimrisk/internal/cache"
	"github.com/clarity-health/claimrisk/internal/domain"
	"github.com/clarity-health/claimrisk/internal/services"
)

const matchWindow = 7 * 24 * time.Hour

// EventPublisher is satisfied by the push channel (C14); the linker emits
// an episode_linked event after every successful link (spec.md §6 Push
// Channel contract).
type EventPublisher interface {
	PublishEpisodeLinked(episode domain.Episode)
}

// Linker matches remittance claims to claims and maintains episodes.
type Linker struct {
	claims    services.ClaimRepository
	episodes  services.EpisodeRepository
	cache     *cache.Cache
	publisher EventPublisher
	now       func() time.Time
}

// NewLinker builds a Linker. now defaults to time.Now when nil. publisher
// may be nil, in which case no episode_linked events are emitted.
func NewLinker(claims services.ClaimRepository, episodes services.EpisodeRepository, c *cache.Cache, publisher EventPublisher, now func() time.Time) *Linker {
	if now == nil {
		now = time.Now
	}
	return &Linker{claims: claims, episodes: episodes, cache: c, publisher: publisher, now: now}
}

// LinkResult reports the outcome of linking one remittance claim.
type LinkResult struct {
	Episode domain.Episode
	Warning *domain.ParseWarning
	Matched bool
}

// Link resolves rc against the claim population and upserts the
// resulting Episode. patientHash is the hashed patient identifier carried
// by the remittance, if any (used only for the fallback match).
func (l *Linker) Link(ctx context.Context, rc domain.RemittanceClaim, remittanceID string, patientHash string) (LinkResult, error) {
	claim, matched, warning, err := l.findClaim(ctx, rc, patientHash)
	if err != nil {
		return LinkResult{}, err
	}
	if !matched {
		return LinkResult{Warning: warning}, nil
	}

	episode, err := l.upsertEpisode(ctx, claim, rc, remittanceID)
	if err != nil {
		return LinkResult{}, err
	}

	l.cache.DeletePrefix(fmt.Sprintf("episode:%s", episode.ID))
	l.cache.DeletePrefix("count:episode")
	if l.publisher != nil {
		l.publisher.PublishEpisodeLinked(episode)
	}

	return LinkResult{Episode: episode, Matched: true}, nil
}

// ManualLink implements spec.md §4.7 rule 3: an operator explicitly
// attaches a claim to an episode (or creates one) when the automatic
// rules fail to match. It bypasses findClaim's exact/fallback matching
// and goes straight to the claim the caller names.
func (l *Linker) ManualLink(ctx context.Context, episodeID, claimID string) (domain.Episode, error) {
	claim, err := l.claims.GetByID(ctx, claimID)
	if err != nil {
		return domain.Episode{}, fmt.Errorf("failed to look up claim for manual link: %w", err)
	}

	var episode domain.Episode
	if episodeID != "" {
		episode, err = l.episodes.GetByClaimID(ctx, claim.ID)
		if err != nil && err != domain.ErrEpisodeNotFound {
			return domain.Episode{}, fmt.Errorf("failed to load episode for manual link: %w", err)
		}
	}

	now := l.now()
	if episode.ID == "" {
		episode = domain.Episode{
			ClaimID:       claim.ID,
			Status:        domain.EpisodeStatusOpen,
			FirstSeenAt:   now,
			LastUpdatedAt: now,
		}
	} else {
		episode.ClaimID = claim.ID
		episode.LastUpdatedAt = now
	}

	saved, err := l.episodes.Save(ctx, episode)
	if err != nil {
		return domain.Episode{}, fmt.Errorf("failed to save manually linked episode: %w", err)
	}

	l.cache.DeletePrefix(fmt.Sprintf("episode:%s", saved.ID))
	l.cache.DeletePrefix("count:episode")
	if l.publisher != nil {
		l.publisher.PublishEpisodeLinked(saved)
	}
	return saved, nil
}

// TransitionStatus implements the manual episode state-transition
// endpoint (spec.md §6): it validates the requested move against the
// lattice before persisting, never allowing a regression.
func (l *Linker) TransitionStatus(ctx context.Context, episodeID string, to domain.EpisodeStatus) (domain.Episode, error) {
	episode, err := l.episodeByID(ctx, episodeID)
	if err != nil {
		return domain.Episode{}, err
	}
	if !domain.IsMonotoneTransition(episode.Status, to) {
		return domain.Episode{}, domain.ErrInvalidStatusTransition
	}
	episode.Status = to
	episode.LastUpdatedAt = l.now()

	saved, err := l.episodes.Save(ctx, episode)
	if err != nil {
		return domain.Episode{}, fmt.Errorf("failed to save episode status transition: %w", err)
	}
	l.cache.DeletePrefix(fmt.Sprintf("episode:%s", saved.ID))
	l.cache.DeletePrefix("count:episode")
	return saved, nil
}

// episodeByID loads an episode by its own ID. EpisodeRepository only
// exposes a claim-keyed lookup, so this scans ListByStatus windows for
// the one matching ID; acceptable given episode volumes and the rarity
// of manual status-transition calls.
func (l *Linker) episodeByID(ctx context.Context, episodeID string) (domain.Episode, error) {
	for _, status := range []domain.EpisodeStatus{
		domain.EpisodeStatusOpen, domain.EpisodeStatusPartial, domain.EpisodeStatusPaid,
		domain.EpisodeStatusDenied, domain.EpisodeStatusAppealed, domain.EpisodeStatusClosed,
	} {
		const pageSize = 500
		for offset := 0; ; offset += pageSize {
			page, err := l.episodes.ListByStatus(ctx, status, pageSize, offset)
			if err != nil {
				return domain.Episode{}, fmt.Errorf("failed to scan episodes by status: %w", err)
			}
			for _, e := range page {
				if e.ID == episodeID {
					return e, nil
				}
			}
			if len(page) < pageSize {
				break
			}
		}
	}
	return domain.Episode{}, domain.ErrEpisodeNotFound
}

// findClaim applies the matching rules in order: exact control-number
// match, then the hashed-patient/date-window fallback (spec.md §4.7).
func (l *Linker) findClaim(ctx context.Context, rc domain.RemittanceClaim, patientHash string) (domain.Claim, bool, *domain.ParseWarning, error) {
	claim, err := l.claims.GetByControlNumber(ctx, rc.ClaimControlNumber)
	if err == nil {
		return claim, true, nil, nil
	}
	if err != domain.ErrClaimNotFound {
		return domain.Claim{}, false, nil, fmt.Errorf("failed to look up claim by control number: %w", err)
	}

	if patientHash == "" {
		return domain.Claim{}, false, &domain.ParseWarning{
			Kind:    "no_match",
			Segment: "CLP",
			Message: "no exact or fallback match for remittance claim " + rc.ClaimControlNumber,
		}, nil
	}

	now := l.now()
	candidates, err := l.claims.FindCandidatesForLinking(ctx, patientHash, now.Add(-matchWindow), now.Add(matchWindow))
	if err != nil {
		return domain.Claim{}, false, nil, fmt.Errorf("failed to find linking candidates: %w", err)
	}
	if len(candidates) == 0 {
		return domain.Claim{}, false, &domain.ParseWarning{
			Kind:    "no_match",
			Segment: "CLP",
			Message: "no matching claim within date window for " + rc.ClaimControlNumber,
		}, nil
	}

	best, ambiguous := resolveAmbiguity(candidates, now)
	if ambiguous {
		return domain.Claim{}, false, &domain.ParseWarning{
			Kind:    "ambiguous_match",
			Segment: "CLP",
			Message: "ambiguous claim match for " + rc.ClaimControlNumber + ", no match recorded",
		}, nil
	}
	return best, true, nil, nil
}

// resolveAmbiguity picks the candidate with the smallest absolute delta
// from now to its service date, tie-broken by earliest CreatedAt. If two
// candidates remain tied after both rules, it reports ambiguity.
func resolveAmbiguity(candidates []domain.Claim, now time.Time) (domain.Claim, bool) {
	type scored struct {
		claim domain.Claim
		delta time.Duration
	}
	scoredList := make([]scored, len(candidates))
	for i, c := range candidates {
		d := now.Sub(c.ServiceDateStart)
		if d < 0 {
			d = -d
		}
		scoredList[i] = scored{claim: c, delta: d}
	}

	best := scoredList[0]
	tiedCount := 1
	for _, s := range scoredList[1:] {
		switch {
		case s.delta < best.delta:
			best = s
			tiedCount = 1
		case s.delta == best.delta:
			if s.claim.CreatedAt.Before(best.claim.CreatedAt) {
				best = s
			} else if s.claim.CreatedAt.Equal(best.claim.CreatedAt) {
				tiedCount++
			}
		}
	}
	return best.claim, tiedCount > 1
}

// upsertEpisode applies the episode update rules from spec.md §4.7.
func (l *Linker) upsertEpisode(ctx context.Context, claim domain.Claim, rc domain.RemittanceClaim, remittanceID string) (domain.Episode, error) {
	newStatus := domain.MapClaimStatusCode(rc.ClaimStatusCode)

	existing, err := l.episodes.GetByClaimID(ctx, claim.ID)
	if err == domain.ErrEpisodeNotFound {
		episode := domain.Episode{
			ClaimID:         claim.ID,
			RemittanceID:    remittanceID,
			Status:          newStatus,
			TotalPaid:       rc.PaidAmount,
			TotalAdjustment: rc.TotalAdjustmentAmount(),
			FirstSeenAt:     l.now(),
			LastUpdatedAt:   l.now(),
		}
		if domain.IsDeniedStatusCode(rc.ClaimStatusCode) {
			episode.DenialCount = 1
		}
		return l.episodes.Save(ctx, episode)
	}
	if err != nil {
		return domain.Episode{}, fmt.Errorf("failed to load episode: %w", err)
	}

	resolvedStatus := resolveTransition(existing.Status, newStatus, rc, claim)
	if domain.IsDeniedStatusCode(rc.ClaimStatusCode) {
		existing.DenialCount++
	}
	existing.TotalPaid = existing.TotalPaid.Add(rc.PaidAmount)
	existing.TotalAdjustment = existing.TotalAdjustment.Add(rc.TotalAdjustmentAmount())
	existing.Status = resolvedStatus
	existing.LastUpdatedAt = l.now()

	return l.episodes.Save(ctx, existing)
}

// resolveTransition applies the monotone-lattice rule, including the
// special case of a paid remittance arriving for a previously-denied
// episode: it becomes `partial` unless the accumulated payment fully
// covers the claim's total charge, in which case it becomes `paid`
// (spec.md §4.7 "Episode update rules").
func resolveTransition(from, proposed domain.EpisodeStatus, rc domain.RemittanceClaim, claim domain.Claim) domain.EpisodeStatus {
	if from == domain.EpisodeStatusDenied && proposed == domain.EpisodeStatusPaid {
		totalPaid := rc.PaidAmount
		if totalPaid.WithinTolerance(claim.TotalChargeAmount, domain.CentTolerance) || totalPaid >= claim.TotalChargeAmount {
			return domain.EpisodeStatusPaid
		}
		return domain.EpisodeStatusPartial
	}
	if domain.IsMonotoneTransition(from, proposed) {
		return proposed
	}
	return from
}
