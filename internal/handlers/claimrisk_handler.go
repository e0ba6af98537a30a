package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clarity-health/claimrisk/internal/domain"
	"github.com/clarity-health/claimrisk/internal/dtos"
	"github.com/clarity-health/claimrisk/internal/edi"
	"github.com/clarity-health/claimrisk/internal/jobs"
	"github.com/clarity-health/claimrisk/internal/linker"
	"github.com/clarity-health/claimrisk/internal/patterns"
	"github.com/clarity-health/claimrisk/internal/risk"
	"github.com/clarity-health/claimrisk/internal/services"
	"github.com/clarity-health/claimrisk/internal/transform"
)

// ClaimRiskHandler exposes the ingestion and query surface for the
// claim-risk domain: EDI ingestion, claim/episode lookups, risk scoring,
// denial patterns, and the audit trail.
type ClaimRiskHandler struct {
	transformer *transform.Transformer
	linker      *linker.Linker
	claims      services.ClaimRepository
	episodes    services.EpisodeRepository
	remittances services.RemittanceRepository
	patterns    services.PatternRepository
	riskScores  services.RiskScoreRepository
	auditLogs   services.AuditLogRepository
	scorer      *risk.Scorer
	detector    *patterns.Detector
	pool        *jobs.Pool
	tracker     *jobs.Tracker
}

// NewClaimRiskHandler wires every repository/component the handler needs.
func NewClaimRiskHandler(
	transformer *transform.Transformer,
	episodeLinker *linker.Linker,
	claims services.ClaimRepository,
	episodes services.EpisodeRepository,
	remittances services.RemittanceRepository,
	patternRepo services.PatternRepository,
	riskScores services.RiskScoreRepository,
	auditLogs services.AuditLogRepository,
	scorer *risk.Scorer,
	detector *patterns.Detector,
	pool *jobs.Pool,
	tracker *jobs.Tracker,
) *ClaimRiskHandler {
	return &ClaimRiskHandler{
		transformer: transformer,
		linker:      episodeLinker,
		claims:      claims,
		episodes:    episodes,
		remittances: remittances,
		patterns:    patternRepo,
		riskScores:  riskScores,
		auditLogs:   auditLogs,
		scorer:      scorer,
		detector:    detector,
		pool:        pool,
		tracker:     tracker,
	}
}

func sizeHintFor(contentLength int64) edi.ReaderSizeHint {
	if contentLength > 1<<20 {
		return edi.HintLarge
	}
	return edi.HintSmall
}

// ingestDeadline bounds how long one file's job is allowed to run before
// its context is canceled; large 837/835 batches still get several
// minutes since persistence is per-claim, not one giant transaction.
const ingestDeadline = 10 * time.Minute

// IngestClaimsFile handles POST /claims/ingest. Per spec.md §2/§6, the
// HTTP handler only buffers the upload and enqueues a job (C13); the
// actual parse-transform-persist pipeline (C5->C6) runs on a pool worker
// so a large file never ties up the request goroutine.
func (h *ClaimRiskHandler) IngestClaimsFile(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, dtos.NewErrorResponse(http.StatusBadRequest, "invalid_request", "file field is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, dtos.NewErrorResponse(http.StatusBadRequest, "invalid_request", "failed to read upload"))
		return
	}
	hint := sizeHintFor(header.Size)
	fileName := header.Filename

	jobID := "job-" + uuid.New().String()
	h.tracker.Queue(jobID)
	h.pool.Submit(jobs.Task{
		Name:         "ingest_claims",
		HardDeadline: ingestDeadline,
		MaxAttempts:  1,
		Run: func(ctx context.Context) error {
			h.tracker.Start(jobID)
			result, err := h.transformer.IngestClaims(ctx, fileName, bytes.NewReader(data), hint)
			if err != nil {
				h.tracker.Fail(jobID, err)
				return err
			}
			h.tracker.Succeed(jobID, gin.H{
				"claims_saved": result.ClaimsSaved,
				"warnings":     result.Warnings,
				"errors":       errStrings(result.Errors),
			})
			return nil
		},
	})

	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
}

// IngestRemittanceFile handles POST /remittances/ingest, following the
// same buffer-then-enqueue pattern as IngestClaimsFile.
func (h *ClaimRiskHandler) IngestRemittanceFile(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, dtos.NewErrorResponse(http.StatusBadRequest, "invalid_request", "file field is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, dtos.NewErrorResponse(http.StatusBadRequest, "invalid_request", "failed to read upload"))
		return
	}
	hint := sizeHintFor(header.Size)
	fileName := header.Filename

	jobID := "job-" + uuid.New().String()
	h.tracker.Queue(jobID)
	h.pool.Submit(jobs.Task{
		Name:         "ingest_remittance",
		HardDeadline: ingestDeadline,
		MaxAttempts:  1,
		Run: func(ctx context.Context) error {
			h.tracker.Start(jobID)
			result, err := h.transformer.IngestRemittance(ctx, fileName, bytes.NewReader(data), hint)
			if err != nil {
				h.tracker.Fail(jobID, err)
				return err
			}
			h.tracker.Succeed(jobID, gin.H{
				"claims_linked": result.ClaimsSaved,
				"warnings":      result.Warnings,
				"errors":        errStrings(result.Errors),
			})
			return nil
		},
	})

	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
}

// GetJob handles GET /jobs/:id, reporting the lifecycle state of a job
// handed out by IngestClaimsFile/IngestRemittanceFile/RunPatternSweep.
func (h *ClaimRiskHandler) GetJob(c *gin.Context) {
	record, ok := h.tracker.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, dtos.NewErrorResponse(http.StatusNotFound, "not_found", "job not found"))
		return
	}
	c.JSON(http.StatusOK, record)
}

func errStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}

// GetClaim handles GET /claims/:id.
func (h *ClaimRiskHandler) GetClaim(c *gin.Context) {
	claim, err := h.claims.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, dtos.NewErrorResponse(http.StatusNotFound, "not_found", "claim not found"))
		return
	}
	c.JSON(http.StatusOK, claim)
}

// ListClaims handles GET /claims?limit=&offset=.
func (h *ClaimRiskHandler) ListClaims(c *gin.Context) {
	limit, offset := parsePage(c)
	claims, err := h.claims.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dtos.NewErrorResponse(http.StatusInternalServerError, "internal_error", "failed to list claims"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"claims": claims, "limit": limit, "offset": offset})
}

// GetEpisode handles GET /claims/:id/episode.
func (h *ClaimRiskHandler) GetEpisode(c *gin.Context) {
	episode, err := h.episodes.GetByClaimID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, dtos.NewErrorResponse(http.StatusNotFound, "not_found", "episode not found"))
		return
	}
	c.JSON(http.StatusOK, episode)
}

// ListEpisodesByStatus handles GET /episodes?status=&limit=&offset=.
func (h *ClaimRiskHandler) ListEpisodesByStatus(c *gin.Context) {
	status := domain.EpisodeStatus(c.Query("status"))
	if status == "" {
		c.JSON(http.StatusBadRequest, dtos.NewErrorResponse(http.StatusBadRequest, "invalid_request", "status query param is required"))
		return
	}
	limit, offset := parsePage(c)
	episodes, err := h.episodes.ListByStatus(c.Request.Context(), status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dtos.NewErrorResponse(http.StatusInternalServerError, "internal_error", "failed to list episodes"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"episodes": episodes, "limit": limit, "offset": offset})
}

// linkEpisodeRequest is the body for POST /episodes/:id/link.
type linkEpisodeRequest struct {
	ClaimID string `json:"claim_id" binding:"required"`
}

// LinkEpisode handles POST /episodes/:id/link — the manual-link escape
// hatch (spec.md §4.7 rule 3) for a remittance claim the automatic rules
// failed to match.
func (h *ClaimRiskHandler) LinkEpisode(c *gin.Context) {
	var req linkEpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dtos.NewErrorResponse(http.StatusBadRequest, "invalid_request", "claim_id is required"))
		return
	}
	episode, err := h.linker.ManualLink(c.Request.Context(), c.Param("id"), req.ClaimID)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, dtos.NewErrorResponse(http.StatusUnprocessableEntity, "link_failed", err.Error()))
		return
	}
	c.JSON(http.StatusOK, episode)
}

// transitionStatusRequest is the body for POST /episodes/:id/status.
type transitionStatusRequest struct {
	Status domain.EpisodeStatus `json:"status" binding:"required"`
}

// TransitionEpisodeStatus handles POST /episodes/:id/status — an operator
// forcing a monotone lattice move (spec.md §4.7) outside the automatic
// remittance-driven transitions.
func (h *ClaimRiskHandler) TransitionEpisodeStatus(c *gin.Context) {
	var req transitionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dtos.NewErrorResponse(http.StatusBadRequest, "invalid_request", "status is required"))
		return
	}
	episode, err := h.linker.TransitionStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err == domain.ErrInvalidStatusTransition {
		c.JSON(http.StatusConflict, dtos.NewErrorResponse(http.StatusConflict, "invalid_transition", err.Error()))
		return
	}
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, dtos.NewErrorResponse(http.StatusUnprocessableEntity, "transition_failed", err.Error()))
		return
	}
	c.JSON(http.StatusOK, episode)
}

// GetRemittance handles GET /remits/:id.
func (h *ClaimRiskHandler) GetRemittance(c *gin.Context) {
	remittance, err := h.remittances.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, dtos.NewErrorResponse(http.StatusNotFound, "not_found", "remittance not found"))
		return
	}
	c.JSON(http.StatusOK, remittance)
}

// ListRemittances handles GET /remits?limit=&offset=.
func (h *ClaimRiskHandler) ListRemittances(c *gin.Context) {
	limit, offset := parsePage(c)
	remittances, err := h.remittances.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dtos.NewErrorResponse(http.StatusInternalServerError, "internal_error", "failed to list remittances"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"remittances": remittances, "limit": limit, "offset": offset})
}

// ScoreClaim handles POST /claims/:id/risk-score — calculates and
// persists a fresh score, submitted through the job pool so a slow
// scoring run (ML factor, pattern lookups) never blocks the request
// goroutine past its soft deadline.
func (h *ClaimRiskHandler) ScoreClaim(c *gin.Context) {
	claimID := c.Param("id")
	claim, err := h.claims.GetByID(c.Request.Context(), claimID)
	if err != nil {
		c.JSON(http.StatusNotFound, dtos.NewErrorResponse(http.StatusNotFound, "not_found", "claim not found"))
		return
	}

	ec := risk.EvalContext{Ctx: c.Request.Context()}
	score, err := h.scorer.Score(ec, claim)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, dtos.NewErrorResponse(http.StatusUnprocessableEntity, "scoring_failed", err.Error()))
		return
	}
	c.JSON(http.StatusOK, score)
}

// GetRiskScore handles GET /claims/:id/risk-score — cached first, falling
// back to the latest persisted score.
func (h *ClaimRiskHandler) GetRiskScore(c *gin.Context) {
	claimID := c.Param("id")
	if cached, ok := h.scorer.GetCached(claimID); ok {
		c.JSON(http.StatusOK, cached)
		return
	}
	score, err := h.riskScores.GetLatestByClaimID(c.Request.Context(), claimID)
	if err != nil {
		c.JSON(http.StatusNotFound, dtos.NewErrorResponse(http.StatusNotFound, "not_found", "no risk score for this claim"))
		return
	}
	c.JSON(http.StatusOK, score)
}

// ListRiskScoresByLevel handles GET /risk-scores?level=&limit=&offset=.
func (h *ClaimRiskHandler) ListRiskScoresByLevel(c *gin.Context) {
	level := domain.RiskLevel(c.Query("level"))
	if level == "" {
		c.JSON(http.StatusBadRequest, dtos.NewErrorResponse(http.StatusBadRequest, "invalid_request", "level query param is required"))
		return
	}
	limit, offset := parsePage(c)
	scores, err := h.riskScores.ListByLevel(c.Request.Context(), level, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dtos.NewErrorResponse(http.StatusInternalServerError, "internal_error", "failed to list risk scores"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"risk_scores": scores, "limit": limit, "offset": offset})
}

// ListPatterns handles GET /patterns?payer_id=.
func (h *ClaimRiskHandler) ListPatterns(c *gin.Context) {
	payerID := c.Query("payer_id")
	var (
		result []domain.DenialPattern
		err    error
	)
	if payerID != "" {
		result, err = h.patterns.ListByPayer(c.Request.Context(), payerID)
	} else {
		result, err = h.patterns.ListAll(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dtos.NewErrorResponse(http.StatusInternalServerError, "internal_error", "failed to list patterns"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"patterns": result})
}

// RunPatternSweep handles POST /patterns/sweep — queues a one-off mining
// run through the same job pool the nightly scheduler uses, for an
// operator who doesn't want to wait for 2am.
func (h *ClaimRiskHandler) RunPatternSweep(c *gin.Context) {
	payerID := c.Query("payer_id")
	jobID := "job-" + uuid.New().String()
	h.tracker.Queue(jobID)
	h.pool.Submit(jobs.Task{
		Name:         "pattern_sweep_manual",
		HardDeadline: 0,
		MaxAttempts:  1,
		Run: func(ctx context.Context) error {
			h.tracker.Start(jobID)
			patterns, err := h.detector.Run(ctx, payerID)
			if err != nil {
				h.tracker.Fail(jobID, err)
				return err
			}
			h.tracker.Succeed(jobID, gin.H{"patterns_found": len(patterns)})
			return nil
		},
	})
	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
}

// ListAuditLogs handles GET /audit-logs?limit=&offset=.
func (h *ClaimRiskHandler) ListAuditLogs(c *gin.Context) {
	limit, offset := parsePage(c)
	logs, err := h.auditLogs.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dtos.NewErrorResponse(http.StatusInternalServerError, "internal_error", "failed to list audit logs"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": logs, "limit": limit, "offset": offset})
}

// auditStatsDefaultWindow bounds the lookback window when the caller
// doesn't specify `since`.
const auditStatsDefaultWindow = 24 * time.Hour

// AuditLogStats handles GET /audit-logs/stats?since=<RFC3339>.
func (h *ClaimRiskHandler) AuditLogStats(c *gin.Context) {
	since := time.Now().Add(-auditStatsDefaultWindow)
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, dtos.NewErrorResponse(http.StatusBadRequest, "invalid_request", "since must be RFC3339"))
			return
		}
		since = parsed
	}
	stats, err := h.auditLogs.Stats(c.Request.Context(), since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dtos.NewErrorResponse(http.StatusInternalServerError, "internal_error", "failed to aggregate audit log stats"))
		return
	}
	c.JSON(http.StatusOK, stats)
}

func parsePage(c *gin.Context) (limit, offset int) {
	limit = 50
	offset = 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
