package ports

import (
	"context"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
)

// Page is one server-paginated slice of a list endpoint.
type Page[T any] struct {
	Items      []T
	Pagination entity.Pagination
}

type CreateOrderInput struct {
	CustomerID         int64
	PickupLocation     string
	Destination        string
	Weight             float64
	Quantity           int
	TransportMethod    entity.TransportMethod
	AdditionalServices string
	PricingID          int64
	// EstimatedTotal is the console's estimate; the server recomputes it.
	EstimatedTotal float64
}

// OrderFilter drives both the customer history and the staff filtered views.
// Zero values are omitted from the request.
type OrderFilter struct {
	CustomerID int64
	Status     entity.OrderStatus
	SortBy     string
	Descending bool
	PageNumber int
	PageSize   int
}

type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput, idempotencyKey string) (*entity.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) (Page[entity.Order], error)
	UpdateStatus(ctx context.Context, orderID int64, status entity.OrderStatus) error
	CancelOrder(ctx context.Context, orderID int64) error
}

type PaymentService interface {
	// RequestPaymentURL asks the API for a redirect URL to pay an order that
	// is awaiting payment.
	RequestPaymentURL(ctx context.Context, orderID int64) (string, error)
}
