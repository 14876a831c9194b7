package jurisdiction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "careflow/pkg/domain-errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsLegalStatusValid_Determinism(t *testing.T) {
	// Same inputs must give the same answer across repeated calls.
	for i := 0; i < 3; i++ {
		assert.True(t, IsLegalStatusValid(Scotland, StatusCSO))
		assert.False(t, IsLegalStatusValid(Scotland, StatusCareOrderIE))
		assert.False(t, IsLegalStatusValid(Jurisdiction("NARNIA"), StatusCSO))
	}
}

func TestValidateStatus_NamesBothValues(t *testing.T) {
	err := ValidateStatus(Scotland, StatusCareOrderIE)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Contains(t, err.Error(), "CARE_ORDER_IE")
	assert.Contains(t, err.Error(), "SCOTLAND")
}

func TestValidateStatus_AcceptsAllowListedPairs(t *testing.T) {
	tests := []struct {
		j      Jurisdiction
		status LegalStatus
	}{
		{England, StatusSection20},
		{Wales, StatusSection76Wales},
		{Scotland, StatusCSO},
		{NorthernIreland, StatusCareOrderNI},
		{Ireland, StatusVoluntaryCareIE},
		{Jersey, StatusCareOrderJE},
		{Guernsey, StatusCareRequirementGG},
		{IsleOfMan, StatusCareOrderIM},
	}
	for _, tt := range tests {
		t.Run(string(tt.j), func(t *testing.T) {
			assert.NoError(t, ValidateStatus(tt.j, tt.status))
		})
	}
}

func TestNextStatutoryReviewDate_England(t *testing.T) {
	admission := date(2025, time.March, 1)

	first, err := NextStatutoryReviewDate(England, admission, 1)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.March, 21), first, "first review is admission + 20 days")

	second, err := NextStatutoryReviewDate(England, first, 2)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.June, 21), second, "second review is first + 3 months")

	third, err := NextStatutoryReviewDate(England, second, 3)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.December, 21), third, "reviews repeat at 6 months")
}

func TestNextStatutoryReviewDate_ScotlandExample(t *testing.T) {
	// CSO admitted 2025-01-01: first review due 28 days later.
	got, err := NextStatutoryReviewDate(Scotland, date(2025, time.January, 1), 1)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.January, 29), got)
}

func TestHealthAssessmentDueDate_DiffersAcrossJurisdictions(t *testing.T) {
	from := date(2025, time.January, 1)

	england, err := HealthAssessmentDueDate(England, from)
	require.NoError(t, err)
	scotland, err := HealthAssessmentDueDate(Scotland, from)
	require.NoError(t, err)

	// The offsets must differ measurably, not merely both be "some date":
	// England 20 days vs Scotland 28 days.
	assert.Equal(t, 8*24*time.Hour, scotland.Sub(england))
}

func TestNextStatutoryReviewDate_RejectsBadInputs(t *testing.T) {
	_, err := NextStatutoryReviewDate(Jurisdiction("MORDOR"), date(2025, time.January, 1), 1)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = NextStatutoryReviewDate(England, date(2025, time.January, 1), 0)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestCarePlanTerminology(t *testing.T) {
	tests := []struct {
		j    Jurisdiction
		want string
	}{
		{England, "Care Plan"},
		{Wales, "Care and Support Plan"},
		{Scotland, "Child's Plan"},
	}
	for _, tt := range tests {
		got, err := CarePlanTerminology(tt.j)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := CarePlanTerminology(Jurisdiction(""))
	assert.Error(t, err)
}

func TestComputeDeadlines_AllThreeFromOneReference(t *testing.T) {
	from := date(2025, time.January, 1)
	dl, err := ComputeDeadlines(Ireland, from)
	require.NoError(t, err)

	assert.Equal(t, date(2025, time.March, 1), dl.NextReview, "Ireland first review at 2 months")
	assert.Equal(t, date(2025, time.January, 15), dl.NextHealthAssessment)
	assert.Equal(t, date(2025, time.January, 21), dl.NextEducationPlan)
}
