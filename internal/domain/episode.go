package domain

import "time"

// EpisodeStatus enumerates the lattice described in spec.md §4.7:
// open < partial < paid/denied < appealed < closed.
type EpisodeStatus string

const (
	EpisodeStatusOpen     EpisodeStatus = "open"
	EpisodeStatusPaid     EpisodeStatus = "paid"
	EpisodeStatusDenied   EpisodeStatus = "denied"
	EpisodeStatusPartial  EpisodeStatus = "partial"
	EpisodeStatusAppealed EpisodeStatus = "appealed"
	EpisodeStatusClosed   EpisodeStatus = "closed"
)

// statusRank gives each status its position in the lattice so transitions
// can be checked for monotonicity (spec.md §4.7).
var statusRank = map[EpisodeStatus]int{
	EpisodeStatusOpen:     0,
	EpisodeStatusPartial:  1,
	EpisodeStatusPaid:     2,
	EpisodeStatusDenied:   2,
	EpisodeStatusAppealed: 3,
	EpisodeStatusClosed:   4,
}

// IsMonotoneTransition reports whether moving from `from` to `to` respects
// the lattice ordering (staying level or advancing, never regressing).
func IsMonotoneTransition(from, to EpisodeStatus) bool {
	fr, ok1 := statusRank[from]
	tr, ok2 := statusRank[to]
	if !ok1 || !ok2 {
		return false
	}
	return tr >= fr
}

// Episode is the lifetime join of one Claim to zero-or-more Remittance
// outcomes (spec.md §3).
type Episode struct {
	ID              string        `json:"id"`
	ClaimID         string        `json:"claim_id"`
	RemittanceID    string        `json:"remittance_id"` // first remitting
	Status          EpisodeStatus `json:"status"`
	DenialCount     int           `json:"denial_count"`
	TotalPaid       Money         `json:"total_paid"`
	TotalAdjustment Money         `json:"total_adjustment"`
	FirstSeenAt     time.Time     `json:"first_seen_at"`
	LastUpdatedAt   time.Time     `json:"last_updated_at"`
}

// MapClaimStatusCode maps a CLP02 claim status code to an episode status
// per the mapping table in spec.md §4.7.
func MapClaimStatusCode(code string) EpisodeStatus {
	switch code {
	case "1", "19", "20": // processed as primary/secondary/tertiary, fully paid
		return EpisodeStatusPaid
	case "2", "22": // processed as secondary, resubmission/reversal
		return EpisodeStatusPartial
	case "4", "3": // denied / contractual denial
		return EpisodeStatusDenied
	case "25": // predetermination pricing only
		return EpisodeStatusPartial
	default:
		return EpisodeStatusOpen
	}
}

// IsDeniedStatusCode reports whether a CLP02 code represents a denial.
func IsDeniedStatusCode(code string) bool {
	return code == "4" || code == "3"
}
