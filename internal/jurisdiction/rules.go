package jurisdiction

// Offset is a calendar offset applied to a reference date. Months are applied
// first (calendar-aware via time.AddDate), then days.
type Offset struct {
	Months int
	Days   int
}

// ReviewSchedule holds the statutory review cadence: the first review after
// admission, the second review after the first, and the repeating interval
// thereafter.
type ReviewSchedule struct {
	First      Offset
	Second     Offset
	Subsequent Offset
}

// RuleSet is the complete statutory configuration for one jurisdiction.
// The table below is the single source of truth: calculator functions do a
// lookup and apply the offsets, with no conditional logic per territory.
type RuleSet struct {
	AllowedStatuses  map[LegalStatus]bool
	Reviews          ReviewSchedule
	HealthAssessment Offset
	EducationPlan    Offset
	CarePlanLabel    string
}

func statusSet(statuses ...LegalStatus) map[LegalStatus]bool {
	set := make(map[LegalStatus]bool, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	return set
}

// ruleTable maps each jurisdiction to its statutory rule set. Built once at
// package init and never mutated; all lookups are read-only.
var ruleTable = map[Jurisdiction]RuleSet{
	England: {
		AllowedStatuses: statusSet(
			StatusSection20, StatusInterimCareOrder, StatusFullCareOrder,
			StatusEmergencyProtection, StatusPoliceProtection,
			StatusPlacementOrder, StatusSupervisionOrder,
			StatusRemandToAccommodation,
		),
		Reviews:          ReviewSchedule{First: Offset{Days: 20}, Second: Offset{Months: 3}, Subsequent: Offset{Months: 6}},
		HealthAssessment: Offset{Days: 20},
		EducationPlan:    Offset{Days: 10},
		CarePlanLabel:    "Care Plan",
	},
	Wales: {
		AllowedStatuses: statusSet(
			StatusSection76Wales, StatusInterimCareOrder, StatusFullCareOrder,
			StatusEmergencyProtection, StatusPoliceProtection,
			StatusPlacementOrder, StatusSupervisionOrder,
			StatusRemandToAccommodation,
		),
		Reviews:          ReviewSchedule{First: Offset{Days: 20}, Second: Offset{Months: 3}, Subsequent: Offset{Months: 6}},
		HealthAssessment: Offset{Days: 20},
		EducationPlan:    Offset{Days: 10},
		CarePlanLabel:    "Care and Support Plan",
	},
	Scotland: {
		AllowedStatuses: statusSet(
			StatusCSO, StatusInterimCSO, StatusCPO,
			StatusPermanenceOrder, StatusSection25Scotland,
		),
		Reviews:          ReviewSchedule{First: Offset{Days: 28}, Second: Offset{Months: 3}, Subsequent: Offset{Months: 6}},
		HealthAssessment: Offset{Days: 28},
		EducationPlan:    Offset{Days: 28},
		CarePlanLabel:    "Child's Plan",
	},
	NorthernIreland: {
		AllowedStatuses: statusSet(
			StatusCareOrderNI, StatusInterimCareOrderNI,
			StatusEmergencyProtectionNI, StatusVoluntaryAccommodationNI,
		),
		Reviews:          ReviewSchedule{First: Offset{Days: 21}, Second: Offset{Months: 3}, Subsequent: Offset{Months: 6}},
		HealthAssessment: Offset{Days: 21},
		EducationPlan:    Offset{Days: 20},
		CarePlanLabel:    "Care Plan",
	},
	Ireland: {
		AllowedStatuses: statusSet(
			StatusCareOrderIE, StatusInterimCareOrderIE,
			StatusEmergencyCareOrderIE, StatusVoluntaryCareIE,
			StatusSpecialCareOrderIE,
		),
		Reviews:          ReviewSchedule{First: Offset{Months: 2}, Second: Offset{Months: 4}, Subsequent: Offset{Months: 6}},
		HealthAssessment: Offset{Days: 14},
		EducationPlan:    Offset{Days: 20},
		CarePlanLabel:    "Care Plan",
	},
	Jersey: {
		AllowedStatuses: statusSet(
			StatusCareOrderJE, StatusVoluntaryAccommodationJE,
		),
		Reviews:          ReviewSchedule{First: Offset{Days: 28}, Second: Offset{Months: 3}, Subsequent: Offset{Months: 6}},
		HealthAssessment: Offset{Days: 28},
		EducationPlan:    Offset{Days: 15},
		CarePlanLabel:    "Care Plan",
	},
	Guernsey: {
		AllowedStatuses: statusSet(
			StatusCareRequirementGG,
		),
		Reviews:          ReviewSchedule{First: Offset{Days: 28}, Second: Offset{Months: 3}, Subsequent: Offset{Months: 6}},
		HealthAssessment: Offset{Days: 28},
		EducationPlan:    Offset{Days: 15},
		CarePlanLabel:    "Care Plan",
	},
	IsleOfMan: {
		AllowedStatuses: statusSet(
			StatusCareOrderIM, StatusSupervisionOrderIM,
		),
		Reviews:          ReviewSchedule{First: Offset{Days: 21}, Second: Offset{Months: 3}, Subsequent: Offset{Months: 6}},
		HealthAssessment: Offset{Days: 21},
		EducationPlan:    Offset{Days: 20},
		CarePlanLabel:    "Care Plan",
	},
}

// Rules returns the rule set for a jurisdiction. The boolean is false for
// unknown territories; callers at trust boundaries should have parsed the
// jurisdiction already, so a false here indicates a programming error.
func Rules(j Jurisdiction) (RuleSet, bool) {
	rs, ok := ruleTable[j]
	return rs, ok
}
