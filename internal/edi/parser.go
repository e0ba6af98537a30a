// This file implements C5: the streaming parser that composes the
// segment reader (C1), extractors (C2), envelope detector (C3) and block
// partitioner (C4) into a push-based API. Rather than returning a lazy
// sequence (Go has no native generator), the parser calls back into
// caller-supplied handlers per claim / remittance-claim as each block is
// assembled, so the caller (the Transformer, C6) never needs the whole
// file resident to act on one claim (spec.md §4.5, Design Notes).
package edi

import (
	"io"
	"time"

	"github.com/clarity-health/claimrisk/internal/domain"
)

// ParsedDiagnosis is one HI-derived diagnosis, pre-persistence.
type ParsedDiagnosis struct {
	CodeSystem string
	Code       string
	Principal  bool
	Sequence   int
	IsValid    bool
}

// ParsedClaimLine is one SV1/SV2-derived service line, pre-persistence.
type ParsedClaimLine struct {
	LineNumber         int
	ProcedureCode      string
	ProcedureCodeValid bool
	Modifiers          []string
	ChargeAmount       domain.Money
	Units              float64
	ServiceDate        time.Time
	RevenueCode        string
}

// ParsedClaim is one fully-assembled 837 claim block, handed to the
// caller's ClaimHandler as soon as its closing CLM/SE boundary is seen.
type ParsedClaim struct {
	PatientControlNumber string
	SubscriberID         string // raw; hashed by the transformer, not here
	SubscriberLastName   string
	BillingProviderNPI   string
	BillingProviderName  string
	PayerName            string
	PayerIDExternal      string
	TotalCharge          domain.Money
	ServiceDateStart     time.Time
	ServiceDateEnd       time.Time
	Lines                []ParsedClaimLine
	Diagnoses            []ParsedDiagnosis
	Warnings             []string
}

// ClaimHandler is called once per assembled claim. Returning an error
// aborts the parse; the caller sees that error from ParseClaims.
type ClaimHandler func(ParsedClaim) error

// ParseClaims streams an 837 interchange, invoking handler once per
// claim. Memory use is bounded by the largest single claim block, never
// by the file size (spec.md §4.1, §9).
func ParseClaims(r io.Reader, hint ReaderSizeHint, handler ClaimHandler) (EnvelopeInfo, error) {
	rd, err := NewReader(r, hint)
	if err != nil {
		return EnvelopeInfo{}, err
	}
	env, err := DetectEnvelope(rd)
	if err != nil {
		return env, err
	}
	if env.Kind != KindClaim {
		return env, domain.NewParseError("expected 837 transaction, got ST01=" + string(env.Kind))
	}

	part := NewPartitioner(rd, env.Kind)
	header, err := part.Header()
	if err != nil && err != io.EOF {
		return env, err
	}

	var payerName, payerIDExternal, billingNPI, billingName string
	for _, seg := range header {
		if seg.ID != "NM1" {
			continue
		}
		nm1 := ExtractNM1(seg)
		switch nm1.EntityCode {
		case "PR":
			payerName = nm1.LastOrOrgName
			payerIDExternal = nm1.IDCode
		case "85":
			billingName = nm1.LastOrOrgName
			if nm1.IDQualifier == "XX" {
				billingNPI = nm1.IDCode
			}
		}
	}

	for {
		block, ok, berr := part.Next()
		if !ok {
			return env, nil
		}
		claim, perr := assembleClaim(block, rd.Delimiters(), payerName, payerIDExternal, billingNPI, billingName)
		if perr != nil {
			return env, perr
		}
		if herr := handler(claim); herr != nil {
			return env, herr
		}
		if berr != nil {
			if berr == io.EOF {
				return env, nil
			}
			return env, berr
		}
	}
}

func assembleClaim(block Block, delims Delimiters, payerName, payerIDExternal, billingNPI, billingName string) (ParsedClaim, error) {
	clm, err := ExtractCLM(block.Marker)
	if err != nil {
		return ParsedClaim{}, err
	}
	claim := ParsedClaim{
		PatientControlNumber: clm.PatientControlNumber,
		TotalCharge:          clm.TotalCharge,
		PayerName:            payerName,
		PayerIDExternal:      payerIDExternal,
		BillingProviderNPI:   billingNPI,
		BillingProviderName:  billingName,
	}

	var diagSeq int
	var pendingLineNumber int
	var pendingServiceDate time.Time

	for _, seg := range block.Segments {
		switch seg.ID {
		case "NM1":
			nm1 := ExtractNM1(seg)
			if nm1.EntityCode == "IL" {
				claim.SubscriberID = nm1.IDCode
				claim.SubscriberLastName = nm1.LastOrOrgName
			}
		case "HI":
			for i := 1; i <= 12; i++ {
				comp := seg.Components(i, delims)
				hi, ok := ExtractHIComponent(comp, diagSeq)
				if !ok {
					continue
				}
				claim.Diagnoses = append(claim.Diagnoses, ParsedDiagnosis{
					CodeSystem: hi.CodeSystem,
					Code:       hi.Code,
					Principal:  hi.Principal,
					Sequence:   diagSeq,
					IsValid:    domain.ValidateDiagnosisCode(hi.Code),
				})
				diagSeq++
			}
		case "LX":
			pendingLineNumber = atoiSafe(seg.Element(1))
		case "DTP":
			if seg.Element(1) == dtpServiceDate || seg.Element(1) == "434" {
				from, thru, derr := x12DateRange(seg.Element(2), seg.Element(3))
				if derr == nil {
					pendingServiceDate = from
					if claim.ServiceDateStart.IsZero() || from.Before(claim.ServiceDateStart) {
						claim.ServiceDateStart = from
					}
					if thru.After(claim.ServiceDateEnd) {
						claim.ServiceDateEnd = thru
					}
				}
			}
		case "SV1":
			sv, serr := ExtractSV1(seg, delims)
			if serr != nil {
				claim.Warnings = append(claim.Warnings, serr.Error())
				continue
			}
			claim.Lines = append(claim.Lines, toParsedLine(sv, pendingLineNumber, pendingServiceDate))
		case "SV2":
			sv, serr := ExtractSV2(seg, delims)
			if serr != nil {
				claim.Warnings = append(claim.Warnings, serr.Error())
				continue
			}
			claim.Lines = append(claim.Lines, toParsedLine(sv, pendingLineNumber, pendingServiceDate))
		}
	}

	if w := (&domain.Claim{TotalChargeAmount: claim.TotalCharge, Lines: claimLinesAsDomain(claim.Lines)}).CheckChargeInvariant(); w != nil {
		claim.Warnings = append(claim.Warnings, w.Message)
	}

	return claim, nil
}

func toParsedLine(sv SVInfo, lineNumber int, serviceDate time.Time) ParsedClaimLine {
	return ParsedClaimLine{
		LineNumber:         lineNumber,
		ProcedureCode:      sv.ProcedureCode,
		ProcedureCodeValid: domain.ValidateProcedureCode(sv.ProcedureCode),
		Modifiers:          sv.Modifiers,
		ChargeAmount:       sv.ChargeAmount,
		Units:              sv.Units,
		ServiceDate:        serviceDate,
		RevenueCode:        sv.RevenueCode,
	}
}

func claimLinesAsDomain(lines []ParsedClaimLine) []domain.ClaimLine {
	out := make([]domain.ClaimLine, len(lines))
	for i, l := range lines {
		out[i] = domain.ClaimLine{ChargeAmount: l.ChargeAmount}
	}
	return out
}

func atoiSafe(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// ParsedRemittanceHeader is the payment-summary portion of an 835,
// delivered once before any ParsedRemittanceClaim.
type ParsedRemittanceHeader struct {
	PayerName            string
	PayerIDExternal       string
	RemittanceControlNum string
	PaymentAmount        domain.Money
	PaymentMethod        string
	PaymentDate          time.Time
}

// ParsedAdjustment is one CAS entry attached to a remittance claim.
type ParsedAdjustment struct {
	GroupCode  string
	ReasonCode string
	Amount     domain.Money
	Quantity   float64
}

// ParsedRemittanceServiceLine is one SVC line within a remittance claim.
type ParsedRemittanceServiceLine struct {
	ProcedureCode string
	ChargeAmount  domain.Money
	PaidAmount    domain.Money
	Units         float64
}

// ParsedRemittanceClaim is one fully-assembled 835 claim block.
type ParsedRemittanceClaim struct {
	ClaimControlNumber   string
	ClaimStatusCode      string
	ChargeAmount         domain.Money
	PaidAmount           domain.Money
	PatientResponsibility domain.Money
	SubscriberID         string // raw; hashed by the transformer, not here
	Adjustments          []ParsedAdjustment
	ServiceLines         []ParsedRemittanceServiceLine
}

// RemittanceHandlers lets the caller act on the header separately from
// each claim, and learn when the transaction completes, so a long
// remittance file is processed claim-by-claim rather than buffered
// whole (spec.md §4.5).
type RemittanceHandlers struct {
	OnHeader func(ParsedRemittanceHeader) error
	OnClaim  func(ParsedRemittanceClaim) error
}

// ParseRemittance streams an 835 interchange.
func ParseRemittance(r io.Reader, hint ReaderSizeHint, handlers RemittanceHandlers) (EnvelopeInfo, error) {
	rd, err := NewReader(r, hint)
	if err != nil {
		return EnvelopeInfo{}, err
	}
	env, err := DetectEnvelope(rd)
	if err != nil {
		return env, err
	}
	if env.Kind != KindRemittance {
		return env, domain.NewParseError("expected 835 transaction, got ST01=" + string(env.Kind))
	}

	part := NewPartitioner(rd, env.Kind)
	header, err := part.Header()
	if err != nil && err != io.EOF {
		return env, err
	}

	var rh ParsedRemittanceHeader
	for _, seg := range header {
		switch seg.ID {
		case "BPR":
			bpr, berr := ExtractBPR(seg)
			if berr != nil {
				return env, berr
			}
			rh.PaymentAmount = bpr.TotalPaymentAmount
			rh.PaymentMethod = bpr.PaymentMethod
			rh.PaymentDate = bpr.PaymentDate
		case "TRN":
			rh.RemittanceControlNum = ExtractTRN(seg).ReferenceID
		case "N1":
			if seg.Element(1) == "PR" {
				rh.PayerName = seg.Element(2)
				rh.PayerIDExternal = seg.Element(4)
			}
		}
	}
	if handlers.OnHeader != nil {
		if herr := handlers.OnHeader(rh); herr != nil {
			return env, herr
		}
	}

	for {
		block, ok, berr := part.Next()
		if !ok {
			return env, nil
		}
		if block.Marker.ID == "CLP" {
			rc, aerr := assembleRemittanceClaim(block, rd.Delimiters())
			if aerr != nil {
				return env, aerr
			}
			if handlers.OnClaim != nil {
				if herr := handlers.OnClaim(rc); herr != nil {
					return env, herr
				}
			}
		}
		if berr != nil {
			if berr == io.EOF {
				return env, nil
			}
			return env, berr
		}
	}
}

func assembleRemittanceClaim(block Block, delims Delimiters) (ParsedRemittanceClaim, error) {
	clp, err := ExtractCLP(block.Marker)
	if err != nil {
		return ParsedRemittanceClaim{}, err
	}
	rc := ParsedRemittanceClaim{
		ClaimControlNumber:    clp.ClaimControlNumber,
		ClaimStatusCode:       clp.StatusCode,
		ChargeAmount:          clp.ChargeAmount,
		PaidAmount:            clp.PaidAmount,
		PatientResponsibility: clp.PatientResponsibility,
	}

	for _, seg := range block.Segments {
		switch seg.ID {
		case "NM1":
			nm1 := ExtractNM1(seg)
			if nm1.EntityCode == "QC" || nm1.EntityCode == "IL" {
				rc.SubscriberID = nm1.IDCode
			}
		case "CAS":
			cas, cerr := ExtractCAS(seg)
			if cerr != nil {
				continue
			}
			for _, e := range cas.Entries {
				rc.Adjustments = append(rc.Adjustments, ParsedAdjustment{
					GroupCode:  cas.GroupCode,
					ReasonCode: e.ReasonCode,
					Amount:     e.Amount,
					Quantity:   e.Quantity,
				})
			}
		case "SVC":
			svc, serr := ExtractSVC(seg, delims)
			if serr != nil {
				continue
			}
			rc.ServiceLines = append(rc.ServiceLines, ParsedRemittanceServiceLine{
				ProcedureCode: svc.ProcedureCode,
				ChargeAmount:  svc.ChargeAmount,
				PaidAmount:    svc.PaidAmount,
				Units:         svc.Units,
			})
		}
	}

	return rc, nil
}
