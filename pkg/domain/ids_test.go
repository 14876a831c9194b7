package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "careflow/pkg/domain-errors"
)

// TestParseID_Invariants validates the parsing invariant:
// IDs must be valid, non-empty, non-nil UUIDs.
func TestParseID_Invariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty string", "", true},
		{"not a uuid", "not-a-uuid", true},
		{"nil uuid", uuid.Nil.String(), true},
		{"oversized input", strings.Repeat("a", 1000), true},
		{"valid lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
		{"valid uppercase", "550E8400-E29B-41D4-A716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseChildID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestTypeDistinction documents the compile-time invariant: typed IDs cannot
// be assigned across entity kinds. If these types became aliases, the
// commented assignments would compile and the invariant is broken.
func TestTypeDistinction(t *testing.T) {
	childID := NewChildID()
	placementID := NewPlacementID()

	// var _ ChildID = placementID   // compile error
	// var _ PlacementID = childID   // compile error

	assert.NotEqual(t, uuid.UUID(childID), uuid.UUID(placementID))
}

// TestID_JSONRoundTrip pins the wire representation: typed IDs marshal as
// UUID strings, not as the underlying byte array.
func TestID_JSONRoundTrip(t *testing.T) {
	type record struct {
		Child ChildID `json:"child"`
	}
	childID := NewChildID()

	out, err := json.Marshal(record{Child: childID})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"child":"`+childID.String()+`"`)

	var decoded record
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, childID, decoded.Child)

	err = json.Unmarshal([]byte(`{"child":"not-a-uuid"}`), &decoded)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestParseID_RoundTrip(t *testing.T) {
	id := NewPlacementID()
	parsed, err := ParsePlacementID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.False(t, parsed.IsZero())
}
