// Package delivery queues report emails and drains them with a small worker
// pool so HTTP handlers never wait on SMTP.
package delivery

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"

	"subsidy/internal/mailer"
)

// Status describes what happened to a delivery request at enqueue time.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusSkipped   Status = "skipped"
	StatusDuplicate Status = "duplicate"
	StatusFailed    Status = "failed"
)

// Job is one email waiting for a worker.
type Job struct {
	ID        uuid.UUID
	RequestID string
	// Key identifies the logical report for de-duplication. Empty disables it.
	Key     string
	Message mailer.Message
}

// Key derives a stable de-duplication key from the parts that make two
// deliveries the same report. Recipient case and surrounding space are ignored.
func Key(recipient string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(recipient))))
	for _, p := range parts {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
