package types

import (
	"bastion-hq/palisade/pkg/allocation"
)

// AllocationRequest is the wire form of an intake submission. The ten
// classification flags are independent booleans; absent flags unmarshal to
// false, so a minimal request body is valid.
type AllocationRequest struct {
	// CUI marks Controlled Unclassified Information.
	CUI bool `json:"cui"`

	// CDIDFARS marks Covered Defense Information under DFARS 252.204-7012.
	CDIDFARS bool `json:"cdi_dfars"`

	// ITAR marks data subject to the International Traffic in Arms
	// Regulations.
	ITAR bool `json:"itar"`

	// EAR marks data subject to the Export Administration Regulations.
	EAR bool `json:"ear"`

	// EAR99Plus marks EAR99 data requiring elevated handling.
	EAR99Plus bool `json:"ear99_plus"`

	// PublicData marks data approved for public release.
	PublicData bool `json:"public_data"`

	// PilotShortDuration marks a short-duration pilot operating under an
	// authority to connect.
	PilotShortDuration bool `json:"pilot_short_duration"`

	// CompetitionSensitive marks competition-sensitive business data.
	CompetitionSensitive bool `json:"competition_sensitive"`

	// Proprietary marks company or third-party proprietary data.
	Proprietary bool `json:"proprietary"`

	// PII marks personally identifiable information.
	PII bool `json:"pii"`

	// SystemScope is the hosting scope label: "internal", "external", or
	// empty/"unset". Matching is case-insensitive; any other value rejects
	// the request before evaluation.
	SystemScope string `json:"system_scope,omitempty"`

	// Fields carries the intake questionnaire answers keyed by field ID.
	// The fast-track gate checks these against the template's required
	// fields. Optional; an absent map simply never satisfies a template.
	Fields map[string]string `json:"fields,omitempty"`

	// Program is an optional program label used for logging and tracing.
	// Program identifiers are competition sensitive and are redacted from
	// log output.
	Program string `json:"program,omitempty"`
}

// Selection converts the request into a ClassificationSelection, parsing
// the scope label. A bad scope returns an InvalidSelectionError and the
// zero selection.
func (r *AllocationRequest) Selection() (allocation.ClassificationSelection, error) {
	scope, err := allocation.ParseSystemScope(r.SystemScope)
	if err != nil {
		return allocation.ClassificationSelection{}, err
	}

	return allocation.ClassificationSelection{
		CUI:                  r.CUI,
		CDIDFARS:             r.CDIDFARS,
		ITAR:                 r.ITAR,
		EAR:                  r.EAR,
		EAR99Plus:            r.EAR99Plus,
		PublicData:           r.PublicData,
		PilotShortDuration:   r.PilotShortDuration,
		CompetitionSensitive: r.CompetitionSensitive,
		Proprietary:          r.Proprietary,
		PII:                  r.PII,
		SystemScope:          scope,
	}, nil
}
