// Package domain holds the typed identifiers shared across modules.
// Constructing them through the parse helpers at trust boundaries keeps raw
// strings and integers out of service signatures.
package domain

import (
	"strconv"

	"github.com/google/uuid"

	dErrors "github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain-errors"
)

// IncidentID is the sequential ledger id of a submitted incident.
// Invariant: ids start at 1, increase by 1, and are never reused, even
// across rejected submissions.
type IncidentID int64

func (id IncidentID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseIncidentID constructs an IncidentID from external input.
func ParseIncidentID(s string) (IncidentID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 1 {
		return 0, dErrors.New(dErrors.CodeInvalidArgument, "incident id must be a positive integer")
	}
	return IncidentID(n), nil
}

// PatternID identifies a crime-pattern record. Placeholder patterns created
// alongside incidents share the incident's numeric id; completed analyses
// mint ids from AnalysisPatternBase upward so the two id spaces never
// collide.
type PatternID int64

// AnalysisPatternBase is the first id handed out for completed joint
// analyses. Incident-keyed placeholders live strictly below it.
const AnalysisPatternBase PatternID = 1 << 32

func (id PatternID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// FromAnalysis reports whether the pattern was minted for a completed joint
// analysis rather than seeded as an incident placeholder.
func (id PatternID) FromAnalysis() bool {
	return id >= AnalysisPatternBase
}

// ParsePatternID constructs a PatternID from external input.
func ParsePatternID(s string) (PatternID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 1 {
		return 0, dErrors.New(dErrors.CodeInvalidArgument, "pattern id must be a positive integer")
	}
	return PatternID(n), nil
}

// RetailerID identifies a participating retailer. UUID-backed so subject
// keys pack to a fixed width.
type RetailerID uuid.UUID

func NewRetailerID() RetailerID {
	return RetailerID(uuid.New())
}

func (id RetailerID) String() string {
	return uuid.UUID(id).String()
}

func (id RetailerID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// ParseRetailerID constructs a RetailerID from external input.
func ParseRetailerID(s string) (RetailerID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return RetailerID{}, dErrors.New(dErrors.CodeInvalidArgument, "retailer id must be a UUID")
	}
	return RetailerID(u), nil
}

// RequestID is the computation gateway's identifier for an outstanding
// request. It is gateway-issued and must be treated as attacker-influenced
// input: nothing about a callback is trusted until the correlation table and
// the proof both check out.
type RequestID string

func (id RequestID) String() string {
	return string(id)
}
