package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Adapters return these (optionally
// wrapped) so callers can tell an outage from a bad request.
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	// ErrUnavailable: a downstream (SMTP, queue, broker) cannot take work right now.
	ErrUnavailable = errors.New("unavailable")
)
