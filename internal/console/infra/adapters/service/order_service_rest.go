package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/koi-console/internal/console/core/ports"
	"github.com/jcmexdev/koi-console/internal/pkg/interceptors"
)

type OrderServiceREST struct {
	client *Client
}

var _ ports.OrderService = (*OrderServiceREST)(nil)

func NewOrderServiceREST(client *Client) *OrderServiceREST {
	return &OrderServiceREST{client: client}
}

func (s *OrderServiceREST) CreateOrder(ctx context.Context, in ports.CreateOrderInput, idempotencyKey string) (*entity.Order, error) {
	if idempotencyKey != "" {
		ctx = interceptors.WithIdempotencyKey(ctx, idempotencyKey)
	}
	body := orderDTO{
		CustomerID:         in.CustomerID,
		PickupLocation:     in.PickupLocation,
		Destination:        in.Destination,
		Weight:             in.Weight,
		Quantity:           in.Quantity,
		TransportMethod:    string(in.TransportMethod),
		AdditionalServices: in.AdditionalServices,
		PricingID:          in.PricingID,
		Total:              in.EstimatedTotal,
	}
	var out orderDTO
	if _, err := s.client.do(ctx, http.MethodPost, s.client.paths.Orders, nil, body, &out); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	order := mapOrderDTOToEntity(out)
	return &order, nil
}

func (s *OrderServiceREST) ListOrders(ctx context.Context, filter ports.OrderFilter) (ports.Page[entity.Order], error) {
	q := url.Values{}
	if filter.CustomerID != 0 {
		q.Set("customerId", strconv.FormatInt(filter.CustomerID, 10))
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.SortBy != "" {
		q.Set("sortBy", filter.SortBy)
		q.Set("isDescending", strconv.FormatBool(filter.Descending))
	}
	setPaging(q, filter.PageNumber, filter.PageSize)

	var out []orderDTO
	pag, err := s.client.do(ctx, http.MethodGet, s.client.paths.Orders, q, nil, &out)
	if err != nil {
		return ports.Page[entity.Order]{}, fmt.Errorf("list orders: %w", err)
	}
	items := make([]entity.Order, 0, len(out))
	for _, d := range out {
		items = append(items, mapOrderDTOToEntity(d))
	}
	return ports.Page[entity.Order]{
		Items:      items,
		Pagination: resolvePagination(pag, filter.PageNumber, filter.PageSize, len(items)),
	}, nil
}

func (s *OrderServiceREST) UpdateStatus(ctx context.Context, orderID int64, status entity.OrderStatus) error {
	path := fmt.Sprintf("%s/%d/status", s.client.paths.Orders, orderID)
	q := url.Values{"status": []string{string(status)}}
	if _, err := s.client.do(ctx, http.MethodPut, path, q, nil, nil); err != nil {
		return fmt.Errorf("update status of order %d: %w", orderID, err)
	}
	return nil
}

func (s *OrderServiceREST) CancelOrder(ctx context.Context, orderID int64) error {
	path := fmt.Sprintf("%s/%d/cancel", s.client.paths.Orders, orderID)
	if _, err := s.client.do(ctx, http.MethodPost, path, nil, nil, nil); err != nil {
		return fmt.Errorf("cancel order %d: %w", orderID, err)
	}
	return nil
}

func setPaging(q url.Values, pageNumber, pageSize int) {
	if pageNumber > 0 {
		q.Set("pageNumber", strconv.Itoa(pageNumber))
	}
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}
}

// resolvePagination prefers the server's metadata. When the envelope has
// none, the page is assumed to be the last one unless it came back full.
func resolvePagination(p *paginationDTO, pageNumber, pageSize, n int) entity.Pagination {
	if p != nil {
		return mapPagination(p)
	}
	if pageNumber < 1 {
		pageNumber = 1
	}
	total := pageNumber
	if pageSize > 0 && n >= pageSize {
		total = pageNumber + 1
	}
	return entity.Pagination{
		PageNumber:   pageNumber,
		PageSize:     pageSize,
		TotalRecords: (pageNumber-1)*pageSize + n,
		TotalPages:   total,
	}
}
