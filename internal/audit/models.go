// Package audit records who did what to which ownership request. The trail
// is append-only; delivery to external sinks is out of scope.
package audit

import "time"

// Action labels the reconciliation events worth auditing.
type Action string

const (
	ActionClaimSubmitted        Action = "claim_submitted"
	ActionRegistrationSubmitted Action = "registration_submitted"
	ActionClaimDecided          Action = "claim_decided"
	ActionRegistrationDecided   Action = "registration_decided"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	Actor     string
	Action    Action
	Subject   string
	Decision  string
	Detail    string
}
