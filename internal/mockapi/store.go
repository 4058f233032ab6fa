package mockapi

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	errNotFound   = errors.New("not found")
	errTransition = errors.New("illegal status transition")
	errInvalid    = errors.New("invalid request")
)

// forward is the delivery pipeline the API enforces regardless of who asks.
var forward = map[string]string{
	"Pending":       "HealthCheck",
	"HealthCheck":   "HealthChecked",
	"HealthChecked": "Packing",
	"Packing":       "Packed",
	"Packed":        "InTransit",
	"InTransit":     "Delivered",
}

var terminal = map[string]bool{"Delivered": true, "Success": true, "Canceled": true}

type order struct {
	OrderID            int64     `json:"orderId"`
	CustomerID         int64     `json:"customerId"`
	PickupLocation     string    `json:"pickupLocation"`
	Destination        string    `json:"destination"`
	Weight             float64   `json:"weight"`
	Quantity           int       `json:"quantity"`
	TransportMethod    string    `json:"transportMethod"`
	AdditionalServices string    `json:"additionalServices"`
	PricingID          int64     `json:"pricingId,omitempty"`
	Total              float64   `json:"total"`
	Status             string    `json:"status"`
	PlacedDate         time.Time `json:"placedDate"`
}

type price struct {
	PriceID                int64   `json:"priceId"`
	TransportMethod        string  `json:"transportMethod"`
	WeightRange            string  `json:"weightRange"`
	PricePerKg             float64 `json:"pricePerKg"`
	AdditionalServicePrice float64 `json:"additionalServicePrice"`
}

type content struct {
	ContentID    int64      `json:"contentId"`
	CreatedBy    int64      `json:"createdBy"`
	CreateByName string     `json:"createByName"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	ContentType  string     `json:"contentType"`
	Image        string     `json:"image"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

type page struct {
	PageNumber   int `json:"pageNumber"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
	TotalPages   int `json:"totalPages"`
}

type orderQuery struct {
	CustomerID int64
	Status     string
	SortBy     string
	Descending bool
	PageNumber int
	PageSize   int
}

type contentQuery struct {
	ContentType string
	SearchTerm  string
	SortBy      string
	Descending  bool
	PageNumber  int
	PageSize    int
}

// state is the API's in-memory database.
type state struct {
	mu sync.RWMutex

	orders      map[int64]*order
	prices      map[int64]*price
	contents    map[int64]*content
	payments    map[int64]string
	idempotency map[string]int64

	nextOrderID int64
	nextPriceID int64

	paymentThreshold float64
	paymentBaseURL   string
	now              func() time.Time
}

func newState(opts Options) *state {
	s := &state{
		orders:           make(map[int64]*order),
		prices:           make(map[int64]*price),
		contents:         make(map[int64]*content),
		payments:         make(map[int64]string),
		idempotency:      make(map[string]int64),
		nextOrderID:      1,
		nextPriceID:      1,
		paymentThreshold: opts.PaymentThreshold,
		paymentBaseURL:   strings.TrimRight(opts.PaymentBaseURL, "/"),
		now:              opts.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.paymentBaseURL == "" {
		s.paymentBaseURL = "https://pay.koi.local/checkout"
	}
	return s
}

// createOrder prices the order from its rate card; the client's total is
// ignored. A repeated idempotency key returns the order created first.
func (s *state) createOrder(in order, idempotencyKey string) (order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idempotencyKey != "" {
		if id, ok := s.idempotency[idempotencyKey]; ok {
			return *s.orders[id], nil
		}
	}
	if in.PickupLocation == "" || in.Destination == "" || in.TransportMethod == "" {
		return order{}, fmt.Errorf("%w: pickupLocation, destination and transportMethod are required", errInvalid)
	}
	if in.Weight <= 0 || in.Quantity <= 0 {
		return order{}, fmt.Errorf("%w: weight and quantity must be positive", errInvalid)
	}

	total := 0.0
	if card, ok := s.prices[in.PricingID]; ok {
		total = card.PricePerKg * in.Weight * float64(in.Quantity)
	}

	in.OrderID = s.nextOrderID
	s.nextOrderID++
	in.Total = total
	in.PlacedDate = s.now().UTC()
	in.Status = "Pending"
	if s.paymentThreshold > 0 && total > s.paymentThreshold {
		in.Status = "AwaitingPayment"
	}

	stored := in
	s.orders[in.OrderID] = &stored
	if idempotencyKey != "" {
		s.idempotency[idempotencyKey] = in.OrderID
	}
	return in, nil
}

func (s *state) listOrders(q orderQuery) ([]order, page) {
	s.mu.RLock()
	out := make([]order, 0, len(s.orders))
	for _, o := range s.orders {
		if q.CustomerID != 0 && o.CustomerID != q.CustomerID {
			continue
		}
		if q.Status != "" && !strings.EqualFold(o.Status, q.Status) {
			continue
		}
		out = append(out, *o)
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b order) int {
		var c int
		switch strings.ToLower(q.SortBy) {
		case "placeddate":
			c = a.PlacedDate.Compare(b.PlacedDate)
		case "total":
			c = cmp.Compare(a.Total, b.Total)
		}
		if c == 0 {
			c = cmp.Compare(a.OrderID, b.OrderID)
		}
		if q.Descending {
			return -c
		}
		return c
	})
	return paginate(out, q.PageNumber, q.PageSize)
}

func (s *state) updateStatus(id int64, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return fmt.Errorf("order %d: %w", id, errNotFound)
	}
	if forward[o.Status] != next {
		return fmt.Errorf("%w: %s -> %s", errTransition, o.Status, next)
	}
	o.Status = next
	return nil
}

func (s *state) cancelOrder(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return fmt.Errorf("order %d: %w", id, errNotFound)
	}
	if terminal[o.Status] {
		return fmt.Errorf("%w: %s is terminal", errTransition, o.Status)
	}
	o.Status = "Canceled"
	return nil
}

// issuePayment returns the redirect url of an order awaiting payment,
// minting one on first request.
func (s *state) issuePayment(id int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return "", fmt.Errorf("order %d: %w", id, errNotFound)
	}
	if o.Status != "AwaitingPayment" {
		return "", fmt.Errorf("%w: order %d is %s", errTransition, id, o.Status)
	}
	if u, ok := s.payments[id]; ok {
		return u, nil
	}
	u := fmt.Sprintf("%s/%s?orderId=%d", s.paymentBaseURL, uuid.NewString(), id)
	s.payments[id] = u
	return u, nil
}

// confirmPayment releases a paid order into the delivery pipeline.
func (s *state) confirmPayment(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return fmt.Errorf("order %d: %w", id, errNotFound)
	}
	if _, issued := s.payments[id]; !issued || o.Status != "AwaitingPayment" {
		return fmt.Errorf("%w: order %d has no pending payment", errTransition, id)
	}
	o.Status = "Pending"
	delete(s.payments, id)
	return nil
}

func (s *state) listPrices() []price {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]price, 0, len(s.prices))
	for _, p := range s.prices {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b price) int { return cmp.Compare(a.PriceID, b.PriceID) })
	return out
}

func (s *state) createPrice(p price) (price, error) {
	if p.TransportMethod == "" || p.PricePerKg <= 0 {
		return price{}, fmt.Errorf("%w: transportMethod and a positive pricePerKg are required", errInvalid)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p.PriceID = s.nextPriceID
	s.nextPriceID++
	stored := p
	s.prices[p.PriceID] = &stored
	return p, nil
}

func (s *state) updatePrice(p price) error {
	if p.TransportMethod == "" || p.PricePerKg <= 0 {
		return fmt.Errorf("%w: transportMethod and a positive pricePerKg are required", errInvalid)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prices[p.PriceID]; !ok {
		return fmt.Errorf("price %d: %w", p.PriceID, errNotFound)
	}
	stored := p
	s.prices[p.PriceID] = &stored
	return nil
}

func (s *state) deletePrice(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prices[id]; !ok {
		return fmt.Errorf("price %d: %w", id, errNotFound)
	}
	delete(s.prices, id)
	return nil
}

func (s *state) listContent(q contentQuery) ([]content, page) {
	s.mu.RLock()
	out := make([]content, 0, len(s.contents))
	term := strings.ToLower(strings.TrimSpace(q.SearchTerm))
	for _, c := range s.contents {
		if q.ContentType != "" && !strings.EqualFold(c.ContentType, q.ContentType) {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(c.Title), term) {
			continue
		}
		out = append(out, *c)
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b content) int {
		var c int
		switch strings.ToLower(q.SortBy) {
		case "title":
			c = strings.Compare(a.Title, b.Title)
		case "createdat":
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if c == 0 {
			c = cmp.Compare(a.ContentID, b.ContentID)
		}
		if q.Descending {
			return -c
		}
		return c
	})
	return paginate(out, q.PageNumber, q.PageSize)
}

// paginate clamps pageNumber into range and slices records accordingly.
func paginate[T any](records []T, pageNumber, pageSize int) ([]T, page) {
	if pageSize <= 0 {
		pageSize = 10
	}
	total := len(records)
	totalPages := (total + pageSize - 1) / pageSize
	if pageNumber < 1 {
		pageNumber = 1
	}
	if totalPages > 0 && pageNumber > totalPages {
		pageNumber = totalPages
	}
	start := (pageNumber - 1) * pageSize
	end := min(start+pageSize, total)
	if start > total {
		start = total
	}
	return records[start:end], page{
		PageNumber:   pageNumber,
		PageSize:     pageSize,
		TotalRecords: total,
		TotalPages:   totalPages,
	}
}
