package statusflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/koi-console/internal/audit"
	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/koi-console/internal/console/core/ports"
)

// Refresh re-reads the authoritative list after a mutation.
type Refresh func(ctx context.Context) error

// Machine submits status changes to the API. It never changes an order
// locally: the caller sees the new status only through refresh.
type Machine struct {
	orders ports.OrderService
	audit  audit.Repository // nil-safe
}

func NewMachine(orders ports.OrderService, auditRepo audit.Repository) *Machine {
	return &Machine{orders: orders, audit: auditRepo}
}

// Advance moves order one step along role's part of the pipeline. When the
// table has no row for (role, order.Status) it fails with
// entity.ErrInvalidTransition and sends nothing.
func (m *Machine) Advance(ctx context.Context, role entity.Role, order entity.Order, refresh Refresh) (entity.OrderStatus, error) {
	rec := audit.Entry{
		OrderID:    order.ID,
		Action:     audit.ActionAdvance,
		FromStatus: string(order.Status),
		Role:       string(role),
	}

	next, ok := Next(role, order.Status)
	if !ok {
		err := fmt.Errorf("%w: %s cannot advance order %d from %s", entity.ErrInvalidTransition, role, order.ID, order.Status)
		rec.Outcome, rec.Error = audit.OutcomeRejected, err.Error()
		audit.Record(ctx, m.audit, rec)
		return "", err
	}
	rec.ToStatus = string(next)

	rec.Outcome = audit.OutcomeRequested
	audit.Record(ctx, m.audit, rec)

	if err := m.orders.UpdateStatus(ctx, order.ID, next); err != nil {
		rec.Outcome, rec.Error = audit.OutcomeFailed, err.Error()
		audit.Record(ctx, m.audit, rec)
		slog.WarnContext(ctx, "status update failed", "order_id", order.ID, "to", next, "error", err)
		return "", err
	}

	rec.Outcome = audit.OutcomeSucceeded
	audit.Record(ctx, m.audit, rec)
	slog.InfoContext(ctx, "order advanced", "order_id", order.ID, "from", order.Status, "to", next, "role", role)

	m.refresh(ctx, refresh)
	return next, nil
}

// Cancel cancels order unless its status is terminal.
func (m *Machine) Cancel(ctx context.Context, role entity.Role, order entity.Order, refresh Refresh) error {
	rec := audit.Entry{
		OrderID:    order.ID,
		Action:     audit.ActionCancel,
		FromStatus: string(order.Status),
		ToStatus:   string(entity.StatusCanceled),
		Role:       string(role),
	}

	if !CanCancel(order.Status) {
		err := fmt.Errorf("%w: order %d is %s", entity.ErrInvalidTransition, order.ID, order.Status)
		rec.Outcome, rec.Error = audit.OutcomeRejected, err.Error()
		audit.Record(ctx, m.audit, rec)
		return err
	}

	rec.Outcome = audit.OutcomeRequested
	audit.Record(ctx, m.audit, rec)

	if err := m.orders.CancelOrder(ctx, order.ID); err != nil {
		rec.Outcome, rec.Error = audit.OutcomeFailed, err.Error()
		audit.Record(ctx, m.audit, rec)
		slog.WarnContext(ctx, "cancel failed", "order_id", order.ID, "error", err)
		return err
	}

	rec.Outcome = audit.OutcomeSucceeded
	audit.Record(ctx, m.audit, rec)
	slog.InfoContext(ctx, "order canceled", "order_id", order.ID, "role", role)

	m.refresh(ctx, refresh)
	return nil
}

// refresh failures are the list's concern: the controller already shows its
// banner, and the mutation itself went through.
func (m *Machine) refresh(ctx context.Context, refresh Refresh) {
	if refresh == nil {
		return
	}
	if err := refresh(ctx); err != nil {
		slog.WarnContext(ctx, "refresh after status change failed", "error", err)
	}
}
