package edi

import "github.com/clarity-health/claimrisk/internal/domain"

// TransactionKind distinguishes the two transaction sets this package
// understands. ST01 carries the code: "837" for claims, "835" for
// remittance.
type TransactionKind string

const (
	KindClaim      TransactionKind = "837"
	KindRemittance TransactionKind = "835"
	KindUnknown    TransactionKind = ""
)

// ClaimSubtype distinguishes professional from institutional claims via
// GS08 (the functional group version/industry code), which embeds the
// implementation guide identifier (e.g. "005010X222A1" for 837P,
// "005010X223A2" for 837I).
type ClaimSubtype string

const (
	ClaimSubtypeProfessional   ClaimSubtype = "837P"
	ClaimSubtypeInstitutional  ClaimSubtype = "837I"
	ClaimSubtypeUnknown        ClaimSubtype = ""
)

// EnvelopeInfo summarizes what the GS/ST envelope segments say about the
// interchange, discovered before any claim- or remittance-specific
// segments are read (spec.md §4.3 "Envelope & Type Detector").
type EnvelopeInfo struct {
	Kind             TransactionKind
	ClaimSubtype     ClaimSubtype // only meaningful when Kind == KindClaim
	SenderID         string
	ReceiverID       string
	InterchangeCtrl  string
	GroupCtrl        string
	TransactionCtrl  string
}

func classifyGS08(gs08 string) ClaimSubtype {
	switch {
	case len(gs08) >= 9 && gs08[len(gs08)-9:len(gs08)-1] == "0X222A1":
		return ClaimSubtypeProfessional
	case len(gs08) >= 9 && gs08[len(gs08)-9:len(gs08)-1] == "0X223A2":
		return ClaimSubtypeInstitutional
	default:
		return ClaimSubtypeUnknown
	}
}

// DetectEnvelope consumes ISA/GS/ST segments from rd and returns the
// discovered EnvelopeInfo, leaving rd positioned right after ST so the
// caller's block partitioner sees the first detail segment next. This is
// the one place a transaction's type is decided; everything downstream
// trusts it rather than re-sniffing segment ids (spec.md §4.3).
func DetectEnvelope(rd *Reader) (EnvelopeInfo, error) {
	var info EnvelopeInfo
	var gs08 string

	for {
		seg, err := rd.Next()
		if err != nil {
			return info, err
		}

		switch seg.ID {
		case "ISA":
			info.SenderID = seg.Element(6)
			info.ReceiverID = seg.Element(8)
			info.InterchangeCtrl = seg.Element(13)
		case "GS":
			info.GroupCtrl = seg.Element(6)
			gs08 = seg.Element(8)
		case "ST":
			code := seg.Element(1)
			switch code {
			case "837":
				info.Kind = KindClaim
			case "835":
				info.Kind = KindRemittance
			default:
				return info, domain.NewParseError("unsupported transaction set: ST01=" + code)
			}
			info.TransactionCtrl = seg.Element(2)
			if info.Kind == KindClaim {
				info.ClaimSubtype = classifyGS08(gs08)
			}
			return info, nil
		}
	}
}
