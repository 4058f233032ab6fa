package coordinator

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jcmexdev/koi-console/internal/audit"
	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/koi-console/internal/console/core/ports"
	"github.com/jcmexdev/koi-console/internal/console/orderdraft"
)

// Result is a placed order. PaymentURL is set when the customer has to pay
// before the order enters the delivery pipeline.
type Result struct {
	Order      entity.Order
	PaymentURL string
}

// Checkout places orders from drafts.
type Checkout struct {
	orders   ports.OrderService
	payments ports.PaymentService
	audit    audit.Repository
	newKey   func() string
}

func NewCheckout(orders ports.OrderService, payments ports.PaymentService, auditRepo audit.Repository) *Checkout {
	return &Checkout{orders: orders, payments: payments, audit: auditRepo, newKey: uuid.NewString}
}

// Place validates draft, creates the order and, if the API asks for it,
// fetches a payment url. An invalid draft fails with *entity.ValidationError
// before any request. On success the draft's total is replaced by the
// API's.
func (c *Checkout) Place(ctx context.Context, draft *orderdraft.Draft) (Result, error) {
	if err := draft.Validate(); err != nil {
		return Result{}, err
	}

	key := c.newKey()
	create := NewCreateOrderStep(c.orders, draft.Submission(), key)
	pay := NewPaymentRedirectStep(c.payments, create)

	saga := NewOrchestrator([]Step{create, pay}, c.audit, create.OrderID)
	if err := saga.Start(ctx); err != nil {
		return Result{}, err
	}

	order := *create.Order()
	if estimate := draft.Total(); estimate != order.Total {
		slog.InfoContext(ctx, "server total differs from estimate",
			"order_id", order.ID,
			"estimate", estimate,
			"total", order.Total,
		)
	}
	draft.ApplyConfirmed(order)

	return Result{Order: order, PaymentURL: pay.URL()}, nil
}
