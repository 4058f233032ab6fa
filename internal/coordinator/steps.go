package coordinator

import (
	"context"
	"fmt"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/koi-console/internal/console/core/ports"
)

// --- CreateOrderStep ---

type CreateOrderStep struct {
	orders         ports.OrderService
	input          ports.CreateOrderInput
	idempotencyKey string

	order *entity.Order
}

func NewCreateOrderStep(orders ports.OrderService, input ports.CreateOrderInput, idempotencyKey string) *CreateOrderStep {
	return &CreateOrderStep{orders: orders, input: input, idempotencyKey: idempotencyKey}
}

func (s *CreateOrderStep) Name() string { return "Create_Order_Step" }

func (s *CreateOrderStep) Execute(ctx context.Context) error {
	order, err := s.orders.CreateOrder(ctx, s.input, s.idempotencyKey)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	s.order = order
	return nil
}

// Compensate cancels the created order; orders are never deleted.
func (s *CreateOrderStep) Compensate(ctx context.Context) error {
	if s.order == nil {
		return nil
	}
	return s.orders.CancelOrder(ctx, s.order.ID)
}

// Order is the order as the API created it, nil before Execute succeeds.
func (s *CreateOrderStep) Order() *entity.Order { return s.order }

// OrderID is zero until the order exists.
func (s *CreateOrderStep) OrderID() int64 {
	if s.order == nil {
		return 0
	}
	return s.order.ID
}

// --- PaymentRedirectStep ---

// PaymentRedirectStep fetches a payment url for an order the API parked in
// AwaitingPayment. Orders that need no payment pass through untouched.
type PaymentRedirectStep struct {
	payments ports.PaymentService
	created  *CreateOrderStep

	url string
}

func NewPaymentRedirectStep(payments ports.PaymentService, created *CreateOrderStep) *PaymentRedirectStep {
	return &PaymentRedirectStep{payments: payments, created: created}
}

func (s *PaymentRedirectStep) Name() string { return "Payment_Redirect_Step" }

func (s *PaymentRedirectStep) Execute(ctx context.Context) error {
	order := s.created.Order()
	if order == nil || !order.NeedsPayment() {
		return nil
	}
	url, err := s.payments.RequestPaymentURL(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("failed to request payment url: %w", err)
	}
	s.url = url
	return nil
}

// Compensate has nothing to undo: issuing a url charges nothing.
func (s *PaymentRedirectStep) Compensate(ctx context.Context) error {
	return nil
}

func (s *PaymentRedirectStep) URL() string { return s.url }
