// Package audit records every order status change and checkout step the
// console attempts, successful or not.
//
// The log is append-only. Each entry carries the trace and span ids active
// when it was written so a row can be joined with the distributed trace of
// the request that produced it.
package audit

import "time"

// Outcome is what happened to one attempted action.
type Outcome string

const (
	OutcomeRequested    Outcome = "REQUESTED"
	OutcomeSucceeded    Outcome = "SUCCEEDED"
	OutcomeRejected     Outcome = "REJECTED" // refused locally, no request sent
	OutcomeFailed       Outcome = "FAILED"
	OutcomeCompensating Outcome = "COMPENSATING"
)

// Action names the kind of mutation being audited.
type Action string

const (
	ActionAdvance  Action = "ADVANCE"
	ActionCancel   Action = "CANCEL"
	ActionCheckout Action = "CHECKOUT"
)

// Entry is one row of the audit log.
type Entry struct {
	// OrderID is zero for checkout entries written before the API assigned one.
	OrderID    int64
	Action     Action
	Step       string
	FromStatus string
	ToStatus   string
	Role       string
	Outcome    Outcome
	Error      string

	TraceID string
	SpanID  string
	At      time.Time
}
