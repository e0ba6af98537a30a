package edi

import (
	"strconv"
	"time"

	"github.com/clarity-health/claimrisk/internal/domain"
)

// This file implements C2: typed extraction of the segment kinds the
// parser needs from either transaction set, converting raw X12 element
// strings into domain-ready values (dates, money, codes). Extractors are
// pure functions over a Segment; they never read ahead, so the streaming
// parser can call them as each segment arrives (spec.md §4.2).

// dtpDateQualifiers maps the DTP01 qualifier codes this system cares
// about to their meaning within an 837 claim.
const (
	dtpStatementFrom = "434" // statement/service period start (institutional)
	dtpStatementThru = "434" // same segment carries a range
	dtpServiceDate   = "472" // single service date (professional line)
)

// x12Date parses an X12 CCYYMMDD date into time.UTC. Empty input returns
// the zero time without error, since many date segments are optional.
func x12Date(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if len(raw) != 8 {
		return time.Time{}, domain.NewParseError("date not in CCYYMMDD format: " + raw)
	}
	t, err := time.Parse("20060102", raw)
	if err != nil {
		return time.Time{}, domain.NewParseError("invalid date: " + raw)
	}
	return t, nil
}

// x12DateRange splits a DTP03 element on "-" into (from, thru) when the
// qualifier (DTP02) indicates a range ("RD8"); otherwise both ends equal
// the single parsed date.
func x12DateRange(qualifier, value string) (from, thru time.Time, err error) {
	if qualifier == "RD8" {
		for i := 0; i < len(value); i++ {
			if value[i] == '-' {
				from, err = x12Date(value[:i])
				if err != nil {
					return
				}
				thru, err = x12Date(value[i+1:])
				return
			}
		}
	}
	from, err = x12Date(value)
	thru = from
	return
}

// CLMInfo is the extracted content of a claim-header CLM segment.
type CLMInfo struct {
	PatientControlNumber string
	TotalCharge          domain.Money
	FacilityCode         string
	ClaimFrequencyCode   string
}

// ExtractCLM reads a CLM segment (837 claim header).
func ExtractCLM(seg Segment) (CLMInfo, error) {
	charge, err := domain.ParseMoney(seg.Element(2))
	if err != nil {
		return CLMInfo{}, domain.NewParseError("CLM02 invalid charge amount: " + err.Error())
	}
	return CLMInfo{
		PatientControlNumber: seg.Element(1),
		TotalCharge:          charge,
		FacilityCode:         seg.Element(5),
		ClaimFrequencyCode:   seg.Element(6),
	}, nil
}

// NM1Info is the extracted content of an NM1 (name) segment. EntityCode
// (NM101) tells the caller which party this is: "85" billing provider,
// "IL" subscriber, "PR" payer, "82" rendering provider.
type NM1Info struct {
	EntityCode       string
	EntityTypeQual   string // "1" person, "2" non-person
	LastOrOrgName    string
	FirstName        string
	IDQualifier      string
	IDCode           string
}

// ExtractNM1 reads an NM1 segment.
func ExtractNM1(seg Segment) NM1Info {
	return NM1Info{
		EntityCode:     seg.Element(1),
		EntityTypeQual: seg.Element(2),
		LastOrOrgName:  seg.Element(3),
		FirstName:      seg.Element(4),
		IDQualifier:    seg.Element(8),
		IDCode:         seg.Element(9),
	}
}

// SVInfo is a normalized professional (SV1) or institutional (SV2)
// service line, plus the LX line number and DTP service date it was
// paired with during block partitioning.
type SVInfo struct {
	LineNumber    int
	ProcedureCode string
	Modifiers     []string
	ChargeAmount  domain.Money
	Units         float64
	RevenueCode   string
	ServiceDate   time.Time
}

// ExtractSV1 reads a professional service line (SV1 + composite
// procedure identifier in SV101).
func ExtractSV1(seg Segment, delims Delimiters) (SVInfo, error) {
	composite := seg.Components(1, delims)
	if len(composite) < 2 {
		return SVInfo{}, domain.NewParseError("SV101 missing composite procedure identifier")
	}
	proc := composite[1]
	var mods []string
	for _, m := range composite[2:] {
		if m != "" {
			mods = append(mods, m)
		}
	}
	charge, err := domain.ParseMoney(seg.Element(2))
	if err != nil {
		return SVInfo{}, domain.NewParseError("SV102 invalid charge amount: " + err.Error())
	}
	units, err := strconv.ParseFloat(seg.Element(4), 64)
	if err != nil {
		units = 0
	}
	return SVInfo{ProcedureCode: proc, Modifiers: mods, ChargeAmount: charge, Units: units}, nil
}

// ExtractSV2 reads an institutional service line (SV2: revenue code in
// SV201, optional HCPCS in SV202 composite).
func ExtractSV2(seg Segment, delims Delimiters) (SVInfo, error) {
	revCode := seg.Element(1)
	proc := ""
	composite := seg.Components(2, delims)
	if len(composite) >= 2 {
		proc = composite[1]
	}
	charge, err := domain.ParseMoney(seg.Element(3))
	if err != nil {
		return SVInfo{}, domain.NewParseError("SV203 invalid charge amount: " + err.Error())
	}
	units, err := strconv.ParseFloat(seg.Element(5), 64)
	if err != nil {
		units = 0
	}
	return SVInfo{RevenueCode: revCode, ProcedureCode: proc, ChargeAmount: charge, Units: units}, nil
}

// HIInfo is one diagnosis code extracted from an HI segment's composite
// elements. An HI segment can carry up to 12 composites; the caller
// iterates Components across HI01..HI12 and calls ExtractHIComponent on
// each non-empty one.
type HIInfo struct {
	CodeSystem string
	Code       string
	Principal  bool
}

// diagnosisCodeSystems maps HI qualifier codes to a normalized system
// label. "ABK"/"ABF" are ICD-10-CM principal/other; "BK"/"BF" are the
// ICD-9-CM equivalents retained for legacy claims.
var diagnosisCodeSystems = map[string]string{
	"ABK": "ICD-10", "ABF": "ICD-10", "ABJ": "ICD-10",
	"BK": "ICD-9", "BF": "ICD-9",
}

// ExtractHIComponent interprets one HI composite (e.g. "ABK:E1165").
func ExtractHIComponent(component []string, sequence int) (HIInfo, bool) {
	if len(component) < 2 || component[0] == "" {
		return HIInfo{}, false
	}
	system, ok := diagnosisCodeSystems[component[0]]
	if !ok {
		system = component[0]
	}
	return HIInfo{
		CodeSystem: system,
		Code:       component[1],
		Principal:  sequence == 0 && (component[0] == "ABK" || component[0] == "BK"),
	}, true
}

// CASInfo is one claim/service-level adjustment (837 rarely carries
// these; 835 CAS segments are where denial reasons live).
type CASInfo struct {
	GroupCode string
	Entries   []CASEntry
}

// CASEntry is one (reason code, amount, quantity) triple within a CAS
// segment; a single CAS can repeat this triple up to six times.
type CASEntry struct {
	ReasonCode string
	Amount     domain.Money
	Quantity   float64
}

// ExtractCAS reads a CAS segment, which after its group code (CAS01)
// repeats reason/amount/quantity triples across the remaining elements.
func ExtractCAS(seg Segment) (CASInfo, error) {
	info := CASInfo{GroupCode: seg.Element(1)}
	for i := 2; i+1 <= len(seg.Elements)+1; i += 3 {
		reason := seg.Element(i)
		if reason == "" {
			break
		}
		amt, err := domain.ParseMoney(seg.Element(i + 1))
		if err != nil {
			return CASInfo{}, domain.NewParseError("CAS amount invalid: " + err.Error())
		}
		qty := 0.0
		if q := seg.Element(i + 2); q != "" {
			qty, _ = strconv.ParseFloat(q, 64)
		}
		info.Entries = append(info.Entries, CASEntry{ReasonCode: reason, Amount: amt, Quantity: qty})
	}
	return info, nil
}

// CLPInfo is the extracted content of a CLP segment (835 remittance
// claim header).
type CLPInfo struct {
	ClaimControlNumber   string
	StatusCode           string
	ChargeAmount         domain.Money
	PaidAmount           domain.Money
	PatientResponsibility domain.Money
}

// ExtractCLP reads a CLP segment.
func ExtractCLP(seg Segment) (CLPInfo, error) {
	charge, err := domain.ParseMoney(seg.Element(3))
	if err != nil {
		return CLPInfo{}, domain.NewParseError("CLP03 invalid charge amount: " + err.Error())
	}
	paid, err := domain.ParseMoney(seg.Element(4))
	if err != nil {
		return CLPInfo{}, domain.NewParseError("CLP04 invalid paid amount: " + err.Error())
	}
	patResp, err := domain.ParseMoney(seg.Element(5))
	if err != nil {
		patResp = 0
	}
	return CLPInfo{
		ClaimControlNumber:    seg.Element(1),
		StatusCode:            seg.Element(2),
		ChargeAmount:          charge,
		PaidAmount:            paid,
		PatientResponsibility: patResp,
	}, nil
}

// SVCInfo is a remittance service line (835 SVC segment).
type SVCInfo struct {
	ProcedureCode string
	ChargeAmount  domain.Money
	PaidAmount    domain.Money
	Units         float64
}

// ExtractSVC reads an SVC segment, whose SVC01 is a composite procedure
// identifier mirroring SV101.
func ExtractSVC(seg Segment, delims Delimiters) (SVCInfo, error) {
	composite := seg.Components(1, delims)
	proc := ""
	if len(composite) >= 2 {
		proc = composite[1]
	}
	charge, err := domain.ParseMoney(seg.Element(2))
	if err != nil {
		return SVCInfo{}, domain.NewParseError("SVC02 invalid charge amount: " + err.Error())
	}
	paid, err := domain.ParseMoney(seg.Element(3))
	if err != nil {
		return SVCInfo{}, domain.NewParseError("SVC03 invalid paid amount: " + err.Error())
	}
	units, err := strconv.ParseFloat(seg.Element(5), 64)
	if err != nil {
		units = 0
	}
	return SVCInfo{ProcedureCode: proc, ChargeAmount: charge, PaidAmount: paid, Units: units}, nil
}

// BPRInfo is the extracted content of the 835's BPR segment (payment
// summary header).
type BPRInfo struct {
	TotalPaymentAmount domain.Money
	PaymentMethod      string
	PaymentDate        time.Time
}

// ExtractBPR reads a BPR segment.
func ExtractBPR(seg Segment) (BPRInfo, error) {
	amt, err := domain.ParseMoney(seg.Element(2))
	if err != nil {
		return BPRInfo{}, domain.NewParseError("BPR02 invalid payment amount: " + err.Error())
	}
	date, err := x12Date(seg.Element(16))
	if err != nil {
		date = time.Time{}
	}
	return BPRInfo{TotalPaymentAmount: amt, PaymentMethod: seg.Element(4), PaymentDate: date}, nil
}

// TRNInfo is the extracted content of a TRN segment (reassociation trace
// number), used as the remittance's control number.
type TRNInfo struct {
	ReferenceID string
}

// ExtractTRN reads a TRN segment.
func ExtractTRN(seg Segment) TRNInfo {
	return TRNInfo{ReferenceID: seg.Element(2)}
}
