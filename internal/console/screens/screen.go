// Package screens assembles the console's list screens from a list-query
// controller, the shared store and, for order screens, the status machine.
package screens

import (
	"context"
	"errors"
	"strings"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/koi-console/internal/console/listquery"
	"github.com/jcmexdev/koi-console/internal/console/store"
)

const (
	NameBlogFeed      = "blog-feed"
	NameBlogManager   = "blog-manager"
	NameOrderHistory  = "order-history"
	NameSalesStaff    = "sales-staff"
	NameDeliveryStaff = "delivery-staff"
	NamePriceManager  = "price-manager"
)

// FilterAll is the staff filter value that means "any status".
const FilterAll = "All"

var ErrOrderNotListed = errors.New("order is not on the current page")

// Screen is the type-erased surface the HTTP layer drives.
type Screen interface {
	Name() string
	Load(ctx context.Context) error
	Apply(ctx context.Context, p Patch) error
	Reset(ctx context.Context) error
	ToggleSort(ctx context.Context, field string) error
	Navigate(ctx context.Context, nav string) error
	DismissError()
	Snapshot() Snapshot
}

// Patch is a partial query change. Nil fields are left alone.
type Patch struct {
	SearchTerm    *string `json:"searchTerm,omitempty"`
	Filter        *string `json:"filter,omitempty"`
	SortField     *string `json:"sortField,omitempty"`
	SortDirection *string `json:"sortDirection,omitempty"`
	PageSize      *int    `json:"pageSize,omitempty"`
	PageNumber    *int    `json:"pageNumber,omitempty"`
}

// apply changes q. A page number is honoured only when nothing else in the
// patch moved the query back to page 1.
func (p Patch) apply(q listquery.Query, totalPages int) listquery.Query {
	before := q
	if p.PageSize != nil && *p.PageSize != q.PageSize {
		q = q.WithPageSize(*p.PageSize)
	}
	if p.Filter != nil && *p.Filter != q.Filter {
		q = q.WithFilter(*p.Filter)
	}
	if p.SearchTerm != nil && *p.SearchTerm != q.SearchTerm {
		q = q.WithSearch(*p.SearchTerm)
	}
	if p.SortField != nil || p.SortDirection != nil {
		field, dir := q.SortField, q.SortDirection
		if p.SortField != nil {
			field = *p.SortField
		}
		if p.SortDirection != nil {
			dir = parseDirection(*p.SortDirection)
		}
		if field != q.SortField || dir != q.SortDirection {
			q = q.WithSort(field, dir)
		}
	}
	if p.PageNumber != nil && q == before {
		q = q.WithPage(*p.PageNumber, totalPages)
	}
	return q
}

func parseDirection(s string) listquery.SortDirection {
	if strings.EqualFold(s, string(listquery.Descending)) || strings.EqualFold(s, "descending") {
		return listquery.Descending
	}
	return listquery.Ascending
}

// Snapshot is a rendering of a screen.
type Snapshot struct {
	Name          string            `json:"name"`
	Query         QueryView         `json:"query"`
	Records       any               `json:"records"`
	Local         any               `json:"localRecords,omitempty"`
	Pagination    entity.Pagination `json:"pagination"`
	HasPrevious   bool              `json:"hasPrevious"`
	HasNext       bool              `json:"hasNext"`
	FilterOptions []string          `json:"filterOptions,omitempty"`
	Error         string            `json:"error,omitempty"`
	Loaded        bool              `json:"loaded"`
	Pending       bool              `json:"pending"`
}

type QueryView struct {
	SearchTerm    string `json:"searchTerm"`
	Filter        string `json:"filter"`
	SortField     string `json:"sortField"`
	SortDirection string `json:"sortDirection"`
	PageNumber    int    `json:"pageNumber"`
	PageSize      int    `json:"pageSize"`
}

// listScreen is the part every screen shares: a controller whose applied
// results are mirrored into the store.
type listScreen[T any] struct {
	name          string
	ctrl          *listquery.Controller[T]
	filterOptions []string
}

func newListScreen[T any](name string, st *store.Store, fetch listquery.Fetcher[T], defaults listquery.Query, opts ...listquery.Option) *listScreen[T] {
	opts = append([]listquery.Option{listquery.WithName(name)}, opts...)
	ctrl := listquery.NewController(fetch, defaults, opts...)
	slice := store.List[[]T](st, name)
	ctrl.Subscribe(func(v listquery.View[T]) {
		if v.Loaded {
			slice.Set(v.Records)
		}
	})
	st.OnSessionChange(ctrl.Clear)
	return &listScreen[T]{name: name, ctrl: ctrl}
}

func (s *listScreen[T]) Name() string { return s.name }

func (s *listScreen[T]) Controller() *listquery.Controller[T] { return s.ctrl }

func (s *listScreen[T]) Load(ctx context.Context) error { return s.ctrl.Load(ctx) }

func (s *listScreen[T]) Refetch(ctx context.Context) error { return s.ctrl.Refetch(ctx) }

func (s *listScreen[T]) Reset(ctx context.Context) error { return s.ctrl.Reset(ctx) }

func (s *listScreen[T]) DismissError() { s.ctrl.DismissError() }

func (s *listScreen[T]) Apply(ctx context.Context, p Patch) error {
	total := s.ctrl.View().Pagination.TotalPages
	return s.ctrl.Update(ctx, func(q listquery.Query) listquery.Query { return p.apply(q, total) })
}

func (s *listScreen[T]) ToggleSort(ctx context.Context, field string) error {
	return s.ctrl.Update(ctx, func(q listquery.Query) listquery.Query { return q.ToggleSort(field) })
}

func (s *listScreen[T]) Navigate(ctx context.Context, nav string) error {
	page, err := s.ctrl.View().Pager.Resolve(nav)
	if err != nil {
		return err
	}
	return s.ctrl.GoTo(ctx, page)
}

func (s *listScreen[T]) Snapshot() Snapshot {
	v := s.ctrl.View()
	snap := Snapshot{
		Name: s.name,
		Query: QueryView{
			SearchTerm:    v.Query.SearchTerm,
			Filter:        v.Query.Filter,
			SortField:     v.Query.SortField,
			SortDirection: string(v.Query.SortDirection),
			PageNumber:    v.Query.PageNumber,
			PageSize:      v.Query.PageSize,
		},
		Records:       v.Records,
		Pagination:    v.Pagination,
		HasPrevious:   v.Pager.HasPrevious(),
		HasNext:       v.Pager.HasNext(),
		FilterOptions: s.filterOptions,
		Loaded:        v.Loaded,
		Pending:       v.Pending,
	}
	if v.Err != nil {
		snap.Error = v.Err.Error()
	}
	return snap
}
