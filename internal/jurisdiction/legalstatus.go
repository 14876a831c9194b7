package jurisdiction

import dErrors "careflow/pkg/domain-errors"

// LegalStatus is the statutory basis under which a child is in care. Each
// status is meaningful only in specific jurisdictions; the mapping lives in
// the rule table, not here.
type LegalStatus string

// England and Wales orders (Children Act 1989 / Social Services and
// Well-being (Wales) Act 2014).
const (
	StatusSection20             LegalStatus = "SECTION_20"
	StatusSection76Wales        LegalStatus = "SECTION_76_WALES"
	StatusInterimCareOrder      LegalStatus = "INTERIM_CARE_ORDER"
	StatusFullCareOrder         LegalStatus = "FULL_CARE_ORDER"
	StatusEmergencyProtection   LegalStatus = "EMERGENCY_PROTECTION_ORDER"
	StatusPoliceProtection      LegalStatus = "POLICE_PROTECTION"
	StatusPlacementOrder        LegalStatus = "PLACEMENT_ORDER"
	StatusSupervisionOrder      LegalStatus = "SUPERVISION_ORDER"
	StatusRemandToAccommodation LegalStatus = "REMAND_TO_ACCOMMODATION"
)

// Scotland orders (Children's Hearings (Scotland) Act 2011).
const (
	StatusCSO               LegalStatus = "CSO"
	StatusInterimCSO        LegalStatus = "INTERIM_CSO"
	StatusCPO               LegalStatus = "CPO"
	StatusPermanenceOrder   LegalStatus = "PERMANENCE_ORDER"
	StatusSection25Scotland LegalStatus = "SECTION_25_SCOTLAND"
)

// Northern Ireland orders (Children (Northern Ireland) Order 1995).
const (
	StatusCareOrderNI              LegalStatus = "CARE_ORDER_NI"
	StatusInterimCareOrderNI       LegalStatus = "INTERIM_CARE_ORDER_NI"
	StatusEmergencyProtectionNI    LegalStatus = "EMERGENCY_PROTECTION_ORDER_NI"
	StatusVoluntaryAccommodationNI LegalStatus = "VOLUNTARY_ACCOMMODATION_NI"
)

// Republic of Ireland orders (Child Care Act 1991).
const (
	StatusCareOrderIE          LegalStatus = "CARE_ORDER_IE"
	StatusInterimCareOrderIE   LegalStatus = "INTERIM_CARE_ORDER_IE"
	StatusEmergencyCareOrderIE LegalStatus = "EMERGENCY_CARE_ORDER_IE"
	StatusVoluntaryCareIE      LegalStatus = "VOLUNTARY_CARE_IE"
	StatusSpecialCareOrderIE   LegalStatus = "SPECIAL_CARE_ORDER_IE"
)

// Crown dependency orders.
const (
	StatusCareOrderJE              LegalStatus = "CARE_ORDER_JE"
	StatusVoluntaryAccommodationJE LegalStatus = "VOLUNTARY_ACCOMMODATION_JE"
	StatusCareRequirementGG        LegalStatus = "CARE_REQUIREMENT_GG"
	StatusCareOrderIM              LegalStatus = "CARE_ORDER_IM"
	StatusSupervisionOrderIM       LegalStatus = "SUPERVISION_ORDER_IM"
)

// allLegalStatuses is the single source of truth for recognised status names.
// Jurisdiction validity is a separate question answered by the rule table.
var allLegalStatuses = map[LegalStatus]bool{
	StatusSection20:                true,
	StatusSection76Wales:           true,
	StatusInterimCareOrder:         true,
	StatusFullCareOrder:            true,
	StatusEmergencyProtection:      true,
	StatusPoliceProtection:         true,
	StatusPlacementOrder:           true,
	StatusSupervisionOrder:         true,
	StatusRemandToAccommodation:    true,
	StatusCSO:                      true,
	StatusInterimCSO:               true,
	StatusCPO:                      true,
	StatusPermanenceOrder:          true,
	StatusSection25Scotland:        true,
	StatusCareOrderNI:              true,
	StatusInterimCareOrderNI:       true,
	StatusEmergencyProtectionNI:    true,
	StatusVoluntaryAccommodationNI: true,
	StatusCareOrderIE:              true,
	StatusInterimCareOrderIE:       true,
	StatusEmergencyCareOrderIE:     true,
	StatusVoluntaryCareIE:          true,
	StatusSpecialCareOrderIE:       true,
	StatusCareOrderJE:              true,
	StatusVoluntaryAccommodationJE: true,
	StatusCareRequirementGG:        true,
	StatusCareOrderIM:              true,
	StatusSupervisionOrderIM:       true,
}

// ParseLegalStatus constructs a LegalStatus from external input.
// Errors: CodeInvalidInput when the value is empty or not a recognised
// status name in any jurisdiction.
func ParseLegalStatus(s string) (LegalStatus, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "legal status cannot be empty")
	}
	ls := LegalStatus(s)
	if !allLegalStatuses[ls] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown legal status %q", s)
	}
	return ls, nil
}

// String returns the wire name.
func (s LegalStatus) String() string { return string(s) }
