package listquery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
)

// DefaultTimeout bounds a fetch when no WithTimeout option is given.
const DefaultTimeout = 15 * time.Second

// Result is what a fetcher returns for one query.
type Result[T any] struct {
	Records    []T
	Pagination entity.Pagination
}

// Fetcher runs one query against the API.
type Fetcher[T any] func(ctx context.Context, q Query) (Result[T], error)

// View is a snapshot of a controller for rendering.
type View[T any] struct {
	Query      Query
	Records    []T
	Pagination entity.Pagination
	Pager      Pager
	// Err is the banner error of the latest applied failure, nil once
	// dismissed or replaced by a success.
	Err        error
	Loaded     bool
	Pending    bool
	Generation uint64
}

// Option configures a Controller.
type Option func(*options)

type options struct {
	name    string
	timeout time.Duration
}

// WithName labels the controller in logs.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithTimeout bounds every fetch. Non-positive values keep DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// Controller owns the query of one list screen and the records last fetched
// for it. Every fetch gets a generation number; a response is applied only
// when its generation is newer than the last one applied, so a slow early
// request never overwrites a later one.
type Controller[T any] struct {
	fetch    Fetcher[T]
	defaults Query
	opts     options

	mu         sync.Mutex
	query      Query
	lastIssued Query
	issued     bool
	issuedGen  uint64
	appliedGen uint64
	epoch      uint64
	inflight   int
	records    []T
	pagination entity.Pagination
	err        error
	loaded     bool

	subMu   sync.Mutex
	subs    map[int]func(View[T])
	nextSub int
}

// NewController builds a controller that starts at defaults and has fetched
// nothing yet.
func NewController[T any](fetch Fetcher[T], defaults Query, opts ...Option) *Controller[T] {
	o := options{name: "list", timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if defaults.PageNumber < 1 {
		defaults.PageNumber = 1
	}
	return &Controller[T]{
		fetch:    fetch,
		defaults: defaults,
		opts:     o,
		query:    defaults,
		subs:     make(map[int]func(View[T])),
	}
}

// Load fetches the current query unconditionally, e.g. when a screen mounts.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	q := c.query
	c.mu.Unlock()
	return c.issue(ctx, q)
}

// Refetch re-issues the current query after a mutation made the displayed
// records stale.
func (c *Controller[T]) Refetch(ctx context.Context) error {
	return c.Load(ctx)
}

// Update applies mutate to the query and fetches once if the result differs
// from the last issued query.
func (c *Controller[T]) Update(ctx context.Context, mutate func(Query) Query) error {
	c.mu.Lock()
	next := mutate(c.query)
	if next.PageNumber < 1 {
		next.PageNumber = 1
	}
	c.query = next
	unchanged := c.issued && next == c.lastIssued
	c.mu.Unlock()

	if unchanged {
		return nil
	}
	return c.issue(ctx, next)
}

// Reset restores every query field to the screen defaults in one step.
func (c *Controller[T]) Reset(ctx context.Context) error {
	return c.Update(ctx, func(Query) Query { return c.defaults })
}

// GoTo moves to page n, clamped to the page count last reported by the API.
func (c *Controller[T]) GoTo(ctx context.Context, n int) error {
	c.mu.Lock()
	total := c.pagination.TotalPages
	c.mu.Unlock()
	return c.Update(ctx, func(q Query) Query { return q.WithPage(n, total) })
}

// Clear drops the records and restores the default query without fetching.
// Responses to fetches issued before Clear are never applied.
func (c *Controller[T]) Clear() {
	c.mu.Lock()
	c.epoch++
	c.query = c.defaults
	c.lastIssued = Query{}
	c.issued = false
	c.records = nil
	c.pagination = entity.Pagination{}
	c.err = nil
	c.loaded = false
	c.mu.Unlock()
	c.notify()
}

// DismissError hides the banner without touching the records.
func (c *Controller[T]) DismissError() {
	c.mu.Lock()
	c.err = nil
	c.mu.Unlock()
	c.notify()
}

func (c *Controller[T]) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

func (c *Controller[T]) Defaults() Query { return c.defaults }

func (c *Controller[T]) View() View[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller[T]) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// Subscribe registers fn to receive a view after every change. The returned
// func removes it.
func (c *Controller[T]) Subscribe(fn func(View[T])) (cancel func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Controller[T]) issue(ctx context.Context, q Query) error {
	c.mu.Lock()
	c.issuedGen++
	gen := c.issuedGen
	epoch := c.epoch
	c.lastIssued = q
	c.issued = true
	c.inflight++
	c.mu.Unlock()
	c.notify()

	slog.DebugContext(ctx, "list fetch issued", "list", c.opts.name, "generation", gen, "page", q.PageNumber)

	res, err := c.run(ctx, q)

	c.mu.Lock()
	c.inflight--
	if epoch != c.epoch {
		c.mu.Unlock()
		slog.DebugContext(ctx, "discarding list response issued before clear",
			"list", c.opts.name, "generation", gen)
		c.notify()
		return err
	}
	if gen <= c.appliedGen {
		c.mu.Unlock()
		slog.DebugContext(ctx, "discarding superseded list response",
			"list", c.opts.name, "generation", gen)
		c.notify()
		return nil
	}
	c.appliedGen = gen

	if err != nil {
		c.err = err
		c.mu.Unlock()
		slog.WarnContext(ctx, "list fetch failed", "list", c.opts.name, "generation", gen, "error", err)
		c.notify()
		return err
	}

	c.pagination = res.Pagination
	c.err = nil
	c.loaded = true

	// Only the newest request may move the page; an older one that lands
	// first is still shown but the query already belongs to a later fetch.
	latest := gen == c.issuedGen
	reported := res.Pagination.PageNumber
	page := clampPage(reported, res.Pagination.TotalPages)
	if reported > 0 && page != reported {
		// The API answered for a page past its last one. Those records belong
		// to no page the pager can show, so the last page is fetched instead.
		c.records = nil
		if latest {
			c.query.PageNumber = page
		}
		if !latest || page == q.PageNumber {
			c.mu.Unlock()
			c.notify()
			return nil
		}
		next := c.query
		c.mu.Unlock()
		slog.DebugContext(ctx, "list page out of range, fetching last page",
			"list", c.opts.name, "reported", reported, "page", page)
		return c.issue(ctx, next)
	}

	c.records = res.Records
	if latest && reported > 0 {
		c.query.PageNumber = reported
		c.lastIssued.PageNumber = reported
	}
	c.mu.Unlock()
	c.notify()
	return nil
}

// run calls the fetcher under the controller's timeout. A deadline or a
// panicking fetcher surfaces as an error like any other failed fetch.
func (c *Controller[T]) run(ctx context.Context, q Query) (res Result[T], err error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("list %s: fetch panicked: %v", c.opts.name, r)
		}
	}()

	res, err = c.fetch(ctx, q)
	if err != nil && !errors.Is(err, entity.ErrNetwork) &&
		(errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
		err = fmt.Errorf("%w: %v", entity.ErrNetwork, err)
	}
	return res, err
}

func (c *Controller[T]) viewLocked() View[T] {
	records := make([]T, len(c.records))
	copy(records, c.records)
	return View[T]{
		Query:      c.query,
		Records:    records,
		Pagination: c.pagination,
		Pager:      NewPager(c.pagination),
		Err:        c.err,
		Loaded:     c.loaded,
		Pending:    c.inflight > 0,
		Generation: c.appliedGen,
	}
}

func (c *Controller[T]) notify() {
	c.subMu.Lock()
	if len(c.subs) == 0 {
		c.subMu.Unlock()
		return
	}
	fns := make([]func(View[T]), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	view := c.View()
	for _, fn := range fns {
		fn(view)
	}
}
