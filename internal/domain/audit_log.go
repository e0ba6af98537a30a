package domain

import "time"

// AuditLog records request metadata with hashed identifiers; plaintext
// PHI never reaches this entity (spec.md §3, §6.3).
type AuditLog struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"request_id"`
	Method      string    `json:"method"`
	Path        string    `json:"path"`
	StatusCode  int       `json:"status_code"`
	PrincipalID string    `json:"principal_id,omitempty"` // hashed
	DurationMS  int64     `json:"duration_ms"`
	Timestamp   time.Time `json:"timestamp"`
	Detail      string    `json:"detail,omitempty"`
}

// AuditLogStats summarizes recorded request volume for the operational
// /audit-logs/stats endpoint.
type AuditLogStats struct {
	Since           time.Time      `json:"since"`
	TotalRequests   int64          `json:"total_requests"`
	ByStatusCode    map[int]int64  `json:"by_status_code"`
	AverageDuration float64        `json:"average_duration_ms"`
}
