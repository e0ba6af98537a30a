// Package transform implements the Transformer (C6): normalizing parsed
// EDI records into persisted entities, resolving shared payer/provider
// identities, hashing PHI-like identifiers, and linking remittance claims
// to their episodes (spec.md §4.6).
package transform

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/clarity-health/claimrisk/internal/domain"
	"github.com/clarity-health/claimrisk/internal/edi"
	"github.com/clarity-health/claimrisk/internal/linker"
	"github.com/clarity-health/claimrisk/internal/metrics"
	"github.com/clarity-health/claimrisk/internal/phihash"
	"github.com/clarity-health/claimrisk/internal/services"
)

// defaultBatchSize is the number of claims written per flush, per
// spec.md §4.6 ("batches of 50").
const defaultBatchSize = 50

// identityCacheTTL bounds how long a resolved payer/provider identity is
// trusted before the repository is consulted again.
const identityCacheTTL = 30 * time.Minute

// Cache is the subset of internal/cache's interface the Transformer needs
// for identity resolution (C8).
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
}

// ProgressPublisher is satisfied by the push channel (C14); the
// transformer reports ingestion progress at least every 100 claims
// (spec.md §8 S6).
type ProgressPublisher interface {
	PublishFileProgress(fileName string, processed, total int)
}

const progressReportInterval = 100

// Transformer turns parser output into persisted domain entities.
type Transformer struct {
	payers      services.PayerRepository
	providers   services.ProviderRepository
	claims      services.ClaimRepository
	remittances services.RemittanceRepository
	linker      *linker.Linker
	hasher      *phihash.Hasher
	cache       Cache
	publisher   ProgressPublisher
	batchSize   int
}

// Option configures a Transformer at construction time.
type Option func(*Transformer)

// WithBatchSize overrides the default batch size used for claim writes.
func WithBatchSize(n int) Option {
	return func(t *Transformer) {
		if n > 0 {
			t.batchSize = n
		}
	}
}

// NewTransformer builds a Transformer. link may be nil when the caller
// only needs claim ingestion (e.g. an 837-only batch job). publisher may
// be nil, in which case no file_progress events are emitted.
func NewTransformer(payers services.PayerRepository, providers services.ProviderRepository, claims services.ClaimRepository, remittances services.RemittanceRepository, link *linker.Linker, hasher *phihash.Hasher, c Cache, publisher ProgressPublisher, opts ...Option) *Transformer {
	t := &Transformer{
		payers:      payers,
		providers:   providers,
		claims:      claims,
		remittances: remittances,
		linker:      link,
		hasher:      hasher,
		cache:       c,
		publisher:   publisher,
		batchSize:   defaultBatchSize,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// IngestResult summarizes one file's ingestion outcome.
type IngestResult struct {
	Envelope    edi.EnvelopeInfo
	ClaimsSaved int
	Warnings    []string
	Errors      []error
}

// IngestClaims streams an 837 file through the EDI parser, resolving
// identities and persisting claims in batches of t.batchSize. A failure
// saving one claim is recorded in Errors and does not abort the file.
// fileName is only used to label file_progress events.
func (t *Transformer) IngestClaims(ctx context.Context, fileName string, r io.Reader, hint edi.ReaderSizeHint) (IngestResult, error) {
	var result IngestResult
	batch := make([]edi.ParsedClaim, 0, t.batchSize)
	processed := 0
	lastReported := 0

	flush := func() {
		for _, pc := range batch {
			if _, err := t.saveClaim(ctx, pc); err != nil {
				result.Errors = append(result.Errors, err)
				metrics.ParseErrorsTotal.WithLabelValues("837").Inc()
				continue
			}
			result.ClaimsSaved++
			metrics.ClaimsParsedTotal.WithLabelValues("837").Inc()
		}
		processed += len(batch)
		batch = batch[:0]
		if t.publisher != nil && processed-lastReported >= progressReportInterval {
			t.publisher.PublishFileProgress(fileName, processed, 0)
			lastReported = processed
		}
	}

	env, err := edi.ParseClaims(r, hint, func(pc edi.ParsedClaim) error {
		result.Warnings = append(result.Warnings, pc.Warnings...)
		batch = append(batch, pc)
		if len(batch) >= t.batchSize {
			flush()
		}
		return nil
	})
	flush()
	if t.publisher != nil && processed > lastReported {
		t.publisher.PublishFileProgress(fileName, processed, processed)
	}
	result.Envelope = env
	if err != nil {
		return result, fmt.Errorf("failed to parse claims file: %w", err)
	}
	return result, nil
}

func (t *Transformer) saveClaim(ctx context.Context, pc edi.ParsedClaim) (domain.Claim, error) {
	payer, err := t.resolvePayer(ctx, pc.PayerIDExternal, pc.PayerName)
	if err != nil {
		return domain.Claim{}, fmt.Errorf("failed to resolve payer: %w", err)
	}
	provider, err := t.resolveProvider(ctx, pc.BillingProviderNPI, pc.BillingProviderName, "")
	if err != nil {
		return domain.Claim{}, fmt.Errorf("failed to resolve provider: %w", err)
	}

	claim := domain.Claim{
		PayerID:              payer.ID,
		ProviderID:           provider.ID,
		ClaimControlNumber:   pc.PatientControlNumber,
		PatientControlNumber: t.hasher.Hash(pc.SubscriberID),
		TotalChargeAmount:    pc.TotalCharge,
		ServiceDateStart:     pc.ServiceDateStart,
		ServiceDateEnd:       pc.ServiceDateEnd,
		Status:               domain.ClaimStatusSubmitted,
		Warnings:             pc.Warnings,
		Lines:                make([]domain.ClaimLine, len(pc.Lines)),
		Diagnoses:            make([]domain.Diagnosis, len(pc.Diagnoses)),
	}
	for i, l := range pc.Lines {
		claim.Lines[i] = domain.ClaimLine{
			LineNumber:         l.LineNumber,
			ProcedureCode:      l.ProcedureCode,
			ProcedureCodeValid: l.ProcedureCodeValid,
			Modifiers:          l.Modifiers,
			ChargeAmount:       l.ChargeAmount,
			Units:              l.Units,
			ServiceDate:        l.ServiceDate,
			RevenueCode:        l.RevenueCode,
		}
	}
	for i, d := range pc.Diagnoses {
		claim.Diagnoses[i] = domain.Diagnosis{
			CodeSystem: d.CodeSystem,
			Code:       d.Code,
			Principal:  d.Principal,
			Sequence:   d.Sequence,
			IsValid:    d.IsValid,
		}
	}

	return t.claims.Save(ctx, claim)
}

// IngestRemittance streams an 835 file through the EDI parser, persists
// the remittance and its claims in one write, and links every remittance
// claim to its episode. fileName is only used to label file_progress
// events.
func (t *Transformer) IngestRemittance(ctx context.Context, fileName string, r io.Reader, hint edi.ReaderSizeHint) (IngestResult, error) {
	var result IngestResult
	var payer domain.Payer
	var rows []edi.ParsedRemittanceClaim

	env, err := edi.ParseRemittance(r, hint, edi.RemittanceHandlers{
		OnHeader: func(h edi.ParsedRemittanceHeader) error {
			p, rerr := t.resolvePayer(ctx, h.PayerIDExternal, h.PayerName)
			if rerr != nil {
				return fmt.Errorf("failed to resolve remittance payer: %w", rerr)
			}
			payer = p
			return nil
		},
		OnClaim: func(rc edi.ParsedRemittanceClaim) error {
			rows = append(rows, rc)
			return nil
		},
	})
	result.Envelope = env
	if err != nil {
		return result, fmt.Errorf("failed to parse remittance file: %w", err)
	}

	remittance := domain.Remittance{
		PayerID:     payer.ID,
		Claims:      make([]domain.RemittanceClaim, len(rows)),
	}
	for i, rc := range rows {
		adjustments := make([]domain.Adjustment, len(rc.Adjustments))
		for j, a := range rc.Adjustments {
			adjustments[j] = domain.Adjustment{GroupCode: a.GroupCode, ReasonCode: a.ReasonCode, Amount: a.Amount, Quantity: a.Quantity}
		}
		serviceLines := make([]domain.RemittanceServiceLine, len(rc.ServiceLines))
		for j, sl := range rc.ServiceLines {
			serviceLines[j] = domain.RemittanceServiceLine{ProcedureCode: sl.ProcedureCode, ChargeAmount: sl.ChargeAmount, PaidAmount: sl.PaidAmount, Units: sl.Units}
		}
		remittance.Claims[i] = domain.RemittanceClaim{
			ClaimControlNumber:    rc.ClaimControlNumber,
			ClaimStatusCode:       rc.ClaimStatusCode,
			ChargeAmount:          rc.ChargeAmount,
			PaidAmount:            rc.PaidAmount,
			PatientResponsibility: rc.PatientResponsibility,
			Adjustments:           adjustments,
			ServiceLines:          serviceLines,
		}
		if w := remittance.Claims[i].CheckPaymentInvariant(); w != nil {
			result.Warnings = append(result.Warnings, w.Message)
		}
	}

	saved, err := t.remittances.Save(ctx, remittance)
	if err != nil {
		return result, fmt.Errorf("failed to save remittance: %w", err)
	}
	result.ClaimsSaved = len(saved.Claims)

	if t.linker != nil {
		lastReported := 0
		for i, rc := range saved.Claims {
			patientHash := ""
			if i < len(rows) && rows[i].SubscriberID != "" {
				patientHash = t.hasher.Hash(rows[i].SubscriberID)
			}
			res, lerr := t.linker.Link(ctx, rc, saved.ID, patientHash)
			if lerr != nil {
				result.Errors = append(result.Errors, fmt.Errorf("failed to link remittance claim %s: %w", rc.ClaimControlNumber, lerr))
				metrics.ParseErrorsTotal.WithLabelValues("835").Inc()
				continue
			}
			metrics.ClaimsParsedTotal.WithLabelValues("835").Inc()
			if res.Warning != nil {
				result.Warnings = append(result.Warnings, res.Warning.Message)
			}
			if t.publisher != nil && (i+1)-lastReported >= progressReportInterval {
				t.publisher.PublishFileProgress(fileName, i+1, len(saved.Claims))
				lastReported = i + 1
			}
		}
		if t.publisher != nil && len(saved.Claims)-lastReported > 0 {
			t.publisher.PublishFileProgress(fileName, len(saved.Claims), len(saved.Claims))
		}
	}

	return result, nil
}

func (t *Transformer) resolvePayer(ctx context.Context, externalID, name string) (domain.Payer, error) {
	key := "payer:ext:" + externalID
	if externalID != "" {
		if v, ok := t.cache.Get(key); ok {
			return v.(domain.Payer), nil
		}
	}
	p, err := t.payers.GetOrCreateByExternalID(ctx, externalID, name)
	if err != nil {
		return domain.Payer{}, err
	}
	if externalID != "" {
		t.cache.Set(key, p, identityCacheTTL)
	}
	return p, nil
}

func (t *Transformer) resolveProvider(ctx context.Context, npi, name, taxonomyCode string) (domain.Provider, error) {
	key := "provider:npi:" + npi
	if npi != "" {
		if v, ok := t.cache.Get(key); ok {
			return v.(domain.Provider), nil
		}
	}
	p, err := t.providers.GetOrCreateByNPI(ctx, npi, name, taxonomyCode)
	if err != nil {
		return domain.Provider{}, err
	}
	if npi != "" {
		t.cache.Set(key, p, identityCacheTTL)
	}
	return p, nil
}
