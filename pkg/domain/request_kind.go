package domain

import dErrors "github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain-errors"

// RequestKind discriminates what a pending computation request was issued
// for. Every callback re-checks the stored kind; the call site is never
// trusted on its own.
type RequestKind string

const (
	KindPattern     RequestKind = "pattern"
	KindLoss        RequestKind = "loss"
	KindCorrelation RequestKind = "correlation"
)

// validRequestKinds is the single source of truth for the closed kind set.
var validRequestKinds = map[RequestKind]bool{
	KindPattern:     true,
	KindLoss:        true,
	KindCorrelation: true,
}

// ParseRequestKind constructs a RequestKind from external input.
//
// Errors: returns CodeInvalidArgument when the value is empty or
// unsupported; no other errors are expected.
func ParseRequestKind(s string) (RequestKind, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "request kind cannot be empty")
	}
	k := RequestKind(s)
	if !k.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidArgument, "invalid request kind")
	}
	return k, nil
}

// IsValid checks if the kind is one of the supported enum values.
func (k RequestKind) IsValid() bool {
	return validRequestKinds[k]
}

func (k RequestKind) String() string {
	return string(k)
}
