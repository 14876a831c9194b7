package matching

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"careflow/internal/jurisdiction"
	"careflow/internal/matching/mocks"
	"careflow/internal/placement"
	id "careflow/pkg/domain"
	dErrors "careflow/pkg/domain-errors"
)

var testHome = Location{Lat: 51.5, Lon: -0.12}

func newTestService(t *testing.T) (*Service, *mocks.MockRiskReader) {
	ctrl := gomock.NewController(t)
	risk := mocks.NewMockRiskReader(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(risk, logger, nil), risk
}

func englandProfile() Profile {
	return Profile{
		ChildID:      id.NewChildID(),
		Jurisdiction: jurisdiction.England,
		LegalStatus:  jurisdiction.StatusFullCareOrder,
		HomeLocation: testHome,
	}
}

// eligibleProvider is a baseline candidate that passes every gate.
func eligibleProvider(name string, loc Location) Provider {
	return Provider{
		ID:                id.NewProviderID(),
		Name:              name,
		Location:          loc,
		Vacancies:         5,
		Capacity:          5,
		Types:             []placement.Type{placement.TypeFoster, placement.TypeEmergency},
		RegistrationValid: true,
		DBSValid:          true,
	}
}

// kmNorth offsets a location by approximately km kilometres of latitude.
func kmNorth(loc Location, km float64) Location {
	return Location{Lat: loc.Lat + km/111.19, Lon: loc.Lon}
}

func TestFindMatches_InvalidPairRejected(t *testing.T) {
	svc, _ := newTestService(t)

	profile := englandProfile()
	profile.Jurisdiction = jurisdiction.Scotland
	profile.LegalStatus = jurisdiction.StatusCareOrderIE

	_, err := svc.FindMatches(context.Background(), Request{
		Profile: profile,
		Type:    placement.TypeFoster,
		Pool:    []Provider{eligibleProvider("a", testHome)},
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Contains(t, err.Error(), "CARE_ORDER_IE")
	assert.Contains(t, err.Error(), "SCOTLAND")
}

func TestFindMatches_UnknownTypeRejected(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.FindMatches(context.Background(), Request{
		Profile: englandProfile(),
		Type:    placement.Type("BOARDING_SCHOOL"),
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestFindMatches_EmptyPool(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.FindMatches(context.Background(), Request{
		Profile: englandProfile(),
		Type:    placement.TypeFoster,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Candidates)
	assert.Equal(t, WeightsVersion, result.WeightsVersion)
}

func TestFindMatches_EligibilityGate(t *testing.T) {
	svc, risk := newTestService(t)
	risk.EXPECT().ProviderRisk(gomock.Any(), gomock.Any()).Return(0.0, nil).AnyTimes()

	noVacancy := eligibleProvider("no-vacancy", testHome)
	noVacancy.Vacancies = 0

	lapsedRegistration := eligibleProvider("lapsed-registration", testHome)
	lapsedRegistration.RegistrationValid = false

	expiredVetting := eligibleProvider("expired-vetting", testHome)
	expiredVetting.DBSValid = false

	wrongSetting := eligibleProvider("residential-only", testHome)
	wrongSetting.Types = []placement.Type{placement.TypeResidential}

	ok := eligibleProvider("ok", testHome)

	result, err := svc.FindMatches(context.Background(), Request{
		Profile: englandProfile(),
		Type:    placement.TypeFoster,
		Pool:    []Provider{noVacancy, lapsedRegistration, expiredVetting, wrongSetting, ok},
	})
	require.NoError(t, err)
	require.Len(t, result.Candidates, 1, "every gate failure excludes, never deprioritizes")
	assert.Equal(t, ok.ID, result.Candidates[0].ProviderID)
}

func TestFindMatches_CompositeScore(t *testing.T) {
	svc, risk := newTestService(t)
	risk.EXPECT().ProviderRisk(gomock.Any(), gomock.Any()).Return(0.0, nil)

	// At the child's home, full availability, no cultural needs, no school on
	// record: proximity 100, availability 100, culture 100, continuity 50.
	provider := eligibleProvider("at-home", testHome)

	result, err := svc.FindMatches(context.Background(), Request{
		Profile: englandProfile(),
		Type:    placement.TypeFoster,
		Pool:    []Provider{provider},
	})
	require.NoError(t, err)
	require.Len(t, result.Candidates, 1)

	c := result.Candidates[0]
	assert.Equal(t, 87.5, c.Score)
	assert.Equal(t, SubScores{Proximity: 100, Continuity: 50, Culture: 100, Availability: 100}, c.SubScores)
	assert.Zero(t, c.DistanceKm)
}

func TestFindMatches_NearerRanksHigher(t *testing.T) {
	svc, risk := newTestService(t)
	risk.EXPECT().ProviderRisk(gomock.Any(), gomock.Any()).Return(0.0, nil).AnyTimes()

	near := eligibleProvider("near", kmNorth(testHome, 5))
	far := eligibleProvider("far", kmNorth(testHome, 30))

	result, err := svc.FindMatches(context.Background(), Request{
		Profile: englandProfile(),
		Type:    placement.TypeFoster,
		Pool:    []Provider{far, near},
	})
	require.NoError(t, err)
	require.Len(t, result.Candidates, 2)
	assert.Equal(t, near.ID, result.Candidates[0].ProviderID)
	assert.Greater(t, result.Candidates[0].Score, result.Candidates[1].Score)
}

func TestFindMatches_RiskBreaksTies(t *testing.T) {
	svc, risk := newTestService(t)

	calm := eligibleProvider("calm", testHome)
	troubled := eligibleProvider("troubled", testHome)
	risk.EXPECT().ProviderRisk(gomock.Any(), calm.ID).Return(12.0, nil)
	risk.EXPECT().ProviderRisk(gomock.Any(), troubled.ID).Return(71.5, nil)

	result, err := svc.FindMatches(context.Background(), Request{
		Profile: englandProfile(),
		Type:    placement.TypeFoster,
		Pool:    []Provider{troubled, calm},
	})
	require.NoError(t, err)
	require.Len(t, result.Candidates, 2, "high risk deprioritizes, never excludes")
	assert.Equal(t, calm.ID, result.Candidates[0].ProviderID)
	assert.Equal(t, result.Candidates[0].Score, result.Candidates[1].Score)
	assert.Equal(t, 71.5, result.Candidates[1].RiskScore)
}

func TestFindMatches_Deterministic(t *testing.T) {
	svc, risk := newTestService(t)
	risk.EXPECT().ProviderRisk(gomock.Any(), gomock.Any()).Return(0.0, nil).AnyTimes()

	// Identical in every scored dimension: ordering falls through to the
	// provider ID so repeated runs agree.
	a := eligibleProvider("a", testHome)
	b := eligibleProvider("b", testHome)

	req := Request{Profile: englandProfile(), Type: placement.TypeFoster, Pool: []Provider{a, b}}
	first, err := svc.FindMatches(context.Background(), req)
	require.NoError(t, err)

	req.Pool = []Provider{b, a}
	second, err := svc.FindMatches(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, first.Candidates, 2)
	assert.Equal(t, first.Candidates[0].ProviderID, second.Candidates[0].ProviderID)
	assert.Equal(t, first.Candidates[1].ProviderID, second.Candidates[1].ProviderID)
}

func TestFindMatches_ImmediateUrgencyFavoursAvailability(t *testing.T) {
	svc, risk := newTestService(t)
	risk.EXPECT().ProviderRisk(gomock.Any(), gomock.Any()).Return(0.0, nil).AnyTimes()

	nearButFull := eligibleProvider("near-nearly-full", testHome)
	nearButFull.Vacancies = 1
	nearButFull.Capacity = 10

	farButEmpty := eligibleProvider("far-empty", kmNorth(testHome, 40))
	farButEmpty.Vacancies = 10
	farButEmpty.Capacity = 10

	pool := []Provider{nearButFull, farButEmpty}
	profile := englandProfile()

	standard, err := svc.FindMatches(context.Background(), Request{
		Profile: profile, Type: placement.TypeEmergency, Pool: pool,
	})
	require.NoError(t, err)
	require.Len(t, standard.Candidates, 2)
	assert.Equal(t, nearButFull.ID, standard.Candidates[0].ProviderID)

	immediate, err := svc.FindMatches(context.Background(), Request{
		Profile:     profile,
		Type:        placement.TypeEmergency,
		Preferences: Preferences{Urgency: UrgencyImmediate},
		Pool:        pool,
	})
	require.NoError(t, err)
	require.Len(t, immediate.Candidates, 2)
	assert.Equal(t, farButEmpty.ID, immediate.Candidates[0].ProviderID,
		"same pool reorders under the immediate weight profile")
	assert.Equal(t, UrgencyImmediate, immediate.Urgency)
}

func TestFindMatches_CustomWeightsNormalized(t *testing.T) {
	svc, risk := newTestService(t)
	risk.EXPECT().ProviderRisk(gomock.Any(), gomock.Any()).Return(0.0, nil).AnyTimes()

	result, err := svc.FindMatches(context.Background(), Request{
		Profile:     englandProfile(),
		Type:        placement.TypeFoster,
		Preferences: Preferences{Weights: &Weights{Proximity: 2, Continuity: 1, Culture: 1, Availability: 4}},
		Pool:        []Provider{eligibleProvider("a", testHome)},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, result.Weights.Proximity, 1e-9)
	assert.InDelta(t, 0.5, result.Weights.Availability, 1e-9)
}

func TestFindMatches_NegativeWeightRejected(t *testing.T) {
	svc, _ := newTestService(t)

	// A mixed set still sums positive; the negative component alone must fail
	// the request, not slip through normalization with inverted ordering.
	_, err := svc.FindMatches(context.Background(), Request{
		Profile:     englandProfile(),
		Type:        placement.TypeFoster,
		Preferences: Preferences{Weights: &Weights{Proximity: -1, Availability: 2}},
		Pool:        []Provider{eligibleProvider("a", testHome)},
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Contains(t, err.Error(), "proximity")
}
