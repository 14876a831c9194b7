package alerts

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "careflow/pkg/domain"
)

// TestAlertJSON pins the payload contract with the notification collaborator:
// IDs travel as UUID strings and unset IDs are omitted entirely.
func TestAlertJSON(t *testing.T) {
	a := Alert{
		Kind:        KindMissingReported,
		OccurredAt:  time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC),
		ChildID:     id.NewChildID(),
		PlacementID: id.NewPlacementID(),
		Audiences:   []Audience{AudienceSocialWorker, AudienceDutyTeam},
		Message:     "child reported missing from placement",
	}

	out, err := json.Marshal(a)
	require.NoError(t, err)
	payload := string(out)
	assert.Contains(t, payload, `"child_id":"`+a.ChildID.String()+`"`)
	assert.Contains(t, payload, `"placement_id":"`+a.PlacementID.String()+`"`)

	out, err = json.Marshal(Alert{Kind: KindCrossBorderTransfer, ChildID: a.ChildID})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "placement_id", "zero IDs stay off the wire")
}
