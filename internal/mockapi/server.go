package mockapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/koi-console/internal/pkg/interceptors/constants"
)

// Options tunes the in-memory API.
type Options struct {
	// PaymentThreshold parks new orders whose total exceeds it in
	// AwaitingPayment. Zero disables payment.
	PaymentThreshold float64
	PaymentBaseURL   string
	// Seed loads the demo rate cards, orders and articles.
	Seed bool
	Now  func() time.Time
	// Delay, when set, is slept before each request is served.
	Delay func(r *http.Request) time.Duration
}

// Server is an in-memory rendition of the koi shipping REST API.
type Server struct {
	state *state
	opts  Options

	mu       sync.Mutex
	failures []failure
	hits     map[string]int
}

type failure struct {
	method  string
	prefix  string
	status  int
	message string
}

func New(opts Options) *Server {
	s := &Server{
		state: newState(opts),
		opts:  opts,
		hits:  make(map[string]int),
	}
	if opts.Seed {
		seed(s.state)
	}
	return s
}

// FailNext makes the next request whose method and path prefix match answer
// with status and an unsuccessful envelope.
func (s *Server) FailNext(method, pathPrefix string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{method: method, prefix: pathPrefix, status: status, message: message})
}

// Hits reports how many requests were served for method and path.
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/content", s.listContent)

	r.Get("/prices", s.listPrices)
	r.Post("/prices", s.createPrice)
	r.Put("/prices/{id}", s.updatePrice)
	r.Delete("/prices/{id}", s.deletePrice)

	r.Get("/orders", s.listOrders)
	r.Post("/orders", s.createOrder)
	r.Put("/orders/{id}/status", s.updateStatus)
	r.Post("/orders/{id}/cancel", s.cancelOrder)

	r.Post("/payments/{id}", s.requestPayment)
	r.Post("/payments/{id}/confirm", s.confirmPayment)
	return r
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.Method+" "+r.URL.Path]++
		var injected *failure
		for i, f := range s.failures {
			if f.method == r.Method && strings.HasPrefix(r.URL.Path, f.prefix) {
				injected = &f
				s.failures = append(s.failures[:i], s.failures[i+1:]...)
				break
			}
		}
		s.mu.Unlock()

		if s.opts.Delay != nil {
			if d := s.opts.Delay(r); d > 0 {
				select {
				case <-time.After(d):
				case <-r.Context().Done():
					return
				}
			}
		}

		slog.DebugContext(r.Context(), "mock api request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"idempotency_key", r.Header.Get(constants.HeaderXIdempotencyKey),
		)

		if injected != nil {
			writeFailure(w, injected.status, injected.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type envelope struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	Data       any    `json:"data,omitempty"`
	Pagination *page  `json:"pagination,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any, p *page) {
	writeJSON(w, status, envelope{Success: true, Data: data, Pagination: p})
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Message: msg})
}

func writeStateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNotFound):
		writeFailure(w, http.StatusNotFound, err.Error())
	case errors.Is(err, errTransition):
		writeFailure(w, http.StatusConflict, err.Error())
	case errors.Is(err, errInvalid):
		writeFailure(w, http.StatusBadRequest, err.Error())
	default:
		writeFailure(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) listContent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, p := s.state.listContent(contentQuery{
		ContentType: q.Get("contentType"),
		SearchTerm:  q.Get("searchTerm"),
		SortBy:      q.Get("sortBy"),
		Descending:  parseBool(q.Get("isDescending")),
		PageNumber:  parseInt(q.Get("pageNumber")),
		PageSize:    parseInt(q.Get("pageSize")),
	})
	writeData(w, http.StatusOK, records, &p)
}

// listPrices answers with a bare data array; the price endpoint never had a
// success flag.
func (s *Server) listPrices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": s.state.listPrices()})
}

func (s *Server) createPrice(w http.ResponseWriter, r *http.Request) {
	var in price
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	created, err := s.state.createPrice(in)
	if err != nil {
		writeStateError(w, err)
		return
	}
	writeData(w, http.StatusCreated, created, nil)
}

func (s *Server) updatePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in price
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	in.PriceID = id
	if err := s.state.updatePrice(in); err != nil {
		writeStateError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil, nil)
}

func (s *Server) deletePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.state.deletePrice(id); err != nil {
		writeStateError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil, nil)
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, p := s.state.listOrders(orderQuery{
		CustomerID: int64(parseInt(q.Get("customerId"))),
		Status:     q.Get("status"),
		SortBy:     q.Get("sortBy"),
		Descending: parseBool(q.Get("isDescending")),
		PageNumber: parseInt(q.Get("pageNumber")),
		PageSize:   parseInt(q.Get("pageSize")),
	})
	writeData(w, http.StatusOK, records, &p)
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var in order
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	created, err := s.state.createOrder(in, r.Header.Get(constants.HeaderXIdempotencyKey))
	if err != nil {
		writeStateError(w, err)
		return
	}
	slog.InfoContext(r.Context(), "order created",
		"order_id", created.OrderID,
		"status", created.Status,
		"request_id", middleware.GetReqID(r.Context()),
	)
	writeData(w, http.StatusCreated, created, nil)
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	next := r.URL.Query().Get("status")
	if next == "" {
		writeFailure(w, http.StatusBadRequest, "status is required")
		return
	}
	if err := s.state.updateStatus(id, next); err != nil {
		writeStateError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil, nil)
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.state.cancelOrder(id); err != nil {
		writeStateError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil, nil)
}

func (s *Server) requestPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := s.state.issuePayment(id)
	if err != nil {
		writeStateError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"url": u}, nil)
}

func (s *Server) confirmPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.state.confirmPayment(id); err != nil {
		writeStateError(w, err)
		return
	}
	writeData(w, http.StatusOK, nil, nil)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeFailure(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(s)
	return b
}
