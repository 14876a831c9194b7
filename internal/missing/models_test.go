package missing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "careflow/pkg/domain-errors"
)

// TestTransition_Completeness walks the full state x state grid so any
// transition not explicitly allowed is proven to fail.
func TestTransition_Completeness(t *testing.T) {
	states := []State{StateNone, StateReported, StateActive, StateReturned, StateClosed}
	allowed := map[[2]State]bool{
		{StateNone, StateReported}:   true,
		{StateReported, StateActive}: true,
		{StateActive, StateReturned}: true,
		{StateReturned, StateClosed}: true,
	}

	for _, from := range states {
		for _, to := range states {
			got, err := Transition(from, to)
			if allowed[[2]State{from, to}] {
				require.NoError(t, err, "%s -> %s should be allowed", from, to)
				assert.Equal(t, to, got)
			} else {
				require.Error(t, err, "%s -> %s should be rejected", from, to)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
				assert.Contains(t, err.Error(), string(from))
				assert.Contains(t, err.Error(), string(to))
			}
		}
	}
}

func TestTransition_UnknownState(t *testing.T) {
	_, err := Transition(State("VANISHED"), StateActive)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		name     string
		triggers []Trigger
		want     RiskLevel
	}{
		{"no triggers", nil, RiskLow},
		{"single trigger", []Trigger{TriggerOvernight}, RiskMedium},
		{"two triggers", []Trigger{TriggerOvernight, TriggerPriorEpisodes}, RiskMedium},
		{"three triggers", []Trigger{TriggerOvernight, TriggerPriorEpisodes, TriggerSubstanceMisuse}, RiskHigh},
		{"exploitation alone is high", []Trigger{TriggerExploitationConcern}, RiskHigh},
		{"under twelve alone is high", []Trigger{TriggerUnderTwelve}, RiskHigh},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, riskLevel(tc.triggers))
		})
	}
}

func TestParseTrigger(t *testing.T) {
	got, err := ParseTrigger("EXPLOITATION_CONCERN")
	require.NoError(t, err)
	assert.Equal(t, TriggerExploitationConcern, got)

	_, err = ParseTrigger("")
	assert.Error(t, err)
	_, err = ParseTrigger("FULL_MOON")
	assert.Error(t, err)
}
