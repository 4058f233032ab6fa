package coordinator

import (
	"context"
	"log/slog"

	"github.com/jcmexdev/koi-console/internal/audit"
)

// Step is a single unit of work in a checkout. Each step must be able to
// undo its own effects.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Orchestrator runs steps in order and, when one fails, compensates the ones
// that already succeeded in reverse order.
type Orchestrator struct {
	steps []Step
	audit audit.Repository // nil-safe
	// orderID names the order in audit entries once a step has created it.
	orderID func() int64
}

func NewOrchestrator(steps []Step, auditRepo audit.Repository, orderID func() int64) *Orchestrator {
	if orderID == nil {
		orderID = func() int64 { return 0 }
	}
	return &Orchestrator{steps: steps, audit: auditRepo, orderID: orderID}
}

func (o *Orchestrator) Start(ctx context.Context) error {
	var done []Step

	for _, step := range o.steps {
		slog.DebugContext(ctx, "executing checkout step", "step", step.Name())
		if err := step.Execute(ctx); err != nil {
			slog.WarnContext(ctx, "checkout step failed, rolling back", "step", step.Name(), "error", err)
			o.record(ctx, step.Name(), audit.OutcomeFailed, err)
			o.rollback(ctx, done)
			return err
		}
		o.record(ctx, step.Name(), audit.OutcomeSucceeded, nil)
		done = append(done, step)
	}

	slog.InfoContext(ctx, "checkout completed", "order_id", o.orderID())
	return nil
}

func (o *Orchestrator) rollback(ctx context.Context, steps []Step) {
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		o.record(ctx, step.Name(), audit.OutcomeCompensating, nil)
		if err := step.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "CRITICAL: failed to compensate checkout step",
				"step", step.Name(),
				"order_id", o.orderID(),
				"error", err,
			)
			o.record(ctx, step.Name(), audit.OutcomeFailed, err)
		}
	}
}

func (o *Orchestrator) record(ctx context.Context, step string, outcome audit.Outcome, err error) {
	e := audit.Entry{
		OrderID: o.orderID(),
		Action:  audit.ActionCheckout,
		Step:    step,
		Outcome: outcome,
	}
	if err != nil {
		e.Error = err.Error()
	}
	audit.Record(ctx, o.audit, e)
}
