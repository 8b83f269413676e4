package llm

import (
	"errors"
	"fmt"
)

// FailureKind classifies a terminal upstream failure.
type FailureKind int

const (
	// FailureRateLimited — upstream signalled throttling (HTTP 429).
	FailureRateLimited FailureKind = iota
	// FailureUpstream — any other non-2xx status, transport error, or
	// malformed response shape.
	FailureUpstream
	// FailureEmptyResult — a syntactically valid response carrying no usable
	// candidate (e.g. safety filtering). Never retried.
	FailureEmptyResult
)

func (k FailureKind) String() string {
	switch k {
	case FailureRateLimited:
		return "rate_limited"
	case FailureUpstream:
		return "upstream_error"
	case FailureEmptyResult:
		return "empty_result"
	}
	return "unknown"
}

// UpstreamFailure is the classified terminal failure returned by the upstream
// client. Nothing ever panics past the client boundary: callers receive
// either a Response or one of these.
type UpstreamFailure struct {
	Kind   FailureKind
	Status int    // HTTP status when applicable, 0 otherwise
	Detail string // internal diagnostic, logged, never shown to end users
}

func (e *UpstreamFailure) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream %s (status %d): %s", e.Kind, e.Status, e.Detail)
	}
	return fmt.Sprintf("upstream %s: %s", e.Kind, e.Detail)
}

// KindOf extracts the failure kind from an error returned by Generate.
// Unrecognized errors (e.g. context cancellation) classify as upstream errors.
func KindOf(err error) FailureKind {
	var uf *UpstreamFailure
	if errors.As(err, &uf) {
		return uf.Kind
	}
	return FailureUpstream
}
