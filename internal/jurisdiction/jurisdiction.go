// Package jurisdiction holds the statutory rule tables for the eight British
// Isles territories and the pure calculator functions that consume them.
//
// Domain purity: no I/O, no context.Context, no time.Now() calls. Reference
// dates are always received as parameters so every computation is
// deterministic and directly testable.
package jurisdiction

import dErrors "careflow/pkg/domain-errors"

// Jurisdiction identifies the legal territory governing a child's care.
// Wire format is the upper-snake name, e.g. "NORTHERN_IRELAND".
type Jurisdiction string

const (
	England         Jurisdiction = "ENGLAND"
	Wales           Jurisdiction = "WALES"
	Scotland        Jurisdiction = "SCOTLAND"
	NorthernIreland Jurisdiction = "NORTHERN_IRELAND"
	Ireland         Jurisdiction = "IRELAND"
	Jersey          Jurisdiction = "JERSEY"
	Guernsey        Jurisdiction = "GUERNSEY"
	IsleOfMan       Jurisdiction = "ISLE_OF_MAN"
)

// All lists every supported jurisdiction in stable order.
var All = []Jurisdiction{
	England,
	Wales,
	Scotland,
	NorthernIreland,
	Ireland,
	Jersey,
	Guernsey,
	IsleOfMan,
}

// Parse constructs a Jurisdiction from external input.
// Errors: CodeInvalidInput when the value is empty or not a known territory.
func Parse(s string) (Jurisdiction, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "jurisdiction cannot be empty")
	}
	j := Jurisdiction(s)
	if !j.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown jurisdiction %q", s)
	}
	return j, nil
}

// IsValid reports whether the jurisdiction is one of the eight territories.
func (j Jurisdiction) IsValid() bool {
	_, ok := ruleTable[j]
	return ok
}

// String returns the wire name.
func (j Jurisdiction) String() string { return string(j) }
