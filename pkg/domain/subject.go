package domain

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"

	dErrors "github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain-errors"
)

// SubjectKey encodes the business subject(s) a pending request was issued
// for, compactly enough to live in the correlation table. Pair subjects pack
// both retailer ids in a fixed-width encoding so the callback recovers both
// without ambiguity.
type SubjectKey string

const pairPrefix = "pair:"

// IncidentSubject keys a pending request to a single incident.
func IncidentSubject(id IncidentID) SubjectKey {
	return SubjectKey("incident:" + id.String())
}

// RetailerSubject keys a pending request to a single retailer.
func RetailerSubject(id RetailerID) SubjectKey {
	return SubjectKey("retailer:" + id.String())
}

// RetailerPairSubject packs two retailer ids losslessly: 16 bytes each,
// hex-encoded, in request order.
func RetailerPairSubject(a, b RetailerID) SubjectKey {
	ua, ub := uuid.UUID(a), uuid.UUID(b)
	raw := make([]byte, 0, 32)
	raw = append(raw, ua[:]...)
	raw = append(raw, ub[:]...)
	return SubjectKey(pairPrefix + hex.EncodeToString(raw))
}

// IncidentFromSubject recovers the incident id from an incident subject.
func IncidentFromSubject(s SubjectKey) (IncidentID, error) {
	rest, ok := strings.CutPrefix(string(s), "incident:")
	if !ok {
		return 0, dErrors.New(dErrors.CodeInternal, "subject key is not an incident subject")
	}
	return ParseIncidentID(rest)
}

// RetailerFromSubject recovers the retailer id from a retailer subject.
func RetailerFromSubject(s SubjectKey) (RetailerID, error) {
	rest, ok := strings.CutPrefix(string(s), "retailer:")
	if !ok {
		return RetailerID{}, dErrors.New(dErrors.CodeInternal, "subject key is not a retailer subject")
	}
	return ParseRetailerID(rest)
}

// RetailerPairFromSubject recovers both retailer ids from a pair subject, in
// the order they were packed.
func RetailerPairFromSubject(s SubjectKey) (RetailerID, RetailerID, error) {
	rest, ok := strings.CutPrefix(string(s), pairPrefix)
	if !ok {
		return RetailerID{}, RetailerID{}, dErrors.New(dErrors.CodeInternal, "subject key is not a retailer pair subject")
	}
	raw, err := hex.DecodeString(rest)
	if err != nil || len(raw) != 32 {
		return RetailerID{}, RetailerID{}, dErrors.New(dErrors.CodeInternal, "malformed retailer pair subject")
	}
	var a, b uuid.UUID
	copy(a[:], raw[:16])
	copy(b[:], raw[16:])
	return RetailerID(a), RetailerID(b), nil
}
