package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/koi-console/internal/console/core/ports"
	"github.com/jcmexdev/koi-console/internal/console/listquery"
	"github.com/jcmexdev/koi-console/internal/console/statusflow"
	"github.com/jcmexdev/koi-console/internal/console/store"
)

// orderScreen adds the status actions shared by every order list.
type orderScreen struct {
	*listScreen[entity.Order]
	machine *statusflow.Machine
	store   *store.Store
}

// find looks the order up on the displayed page: actions are only offered
// for orders the user can see, with the status they were shown.
func (s *orderScreen) find(orderID int64) (entity.Order, error) {
	for _, o := range s.ctrl.View().Records {
		if o.ID == orderID {
			return o, nil
		}
	}
	return entity.Order{}, fmt.Errorf("%w: %d", ErrOrderNotListed, orderID)
}

func (s *orderScreen) Cancel(ctx context.Context, orderID int64) error {
	role, err := s.store.Role(ctx)
	if err != nil {
		return err
	}
	order, err := s.find(orderID)
	if err != nil {
		return err
	}
	return s.machine.Cancel(ctx, role, order, s.ctrl.Refetch)
}

// OrderHistory lists the logged-in customer's own orders.
type OrderHistory struct {
	*orderScreen
}

func NewOrderHistory(orders ports.OrderService, machine *statusflow.Machine, st *store.Store, opts ...listquery.Option) *OrderHistory {
	fetch := func(ctx context.Context, q listquery.Query) (listquery.Result[entity.Order], error) {
		sess, err := st.Current(ctx)
		if err != nil {
			return listquery.Result[entity.Order]{}, err
		}
		page, err := orders.ListOrders(ctx, ports.OrderFilter{
			CustomerID: sess.User.ID,
			SortBy:     q.SortField,
			Descending: q.SortDirection == listquery.Descending,
			PageNumber: q.PageNumber,
			PageSize:   q.PageSize,
		})
		if err != nil {
			return listquery.Result[entity.Order]{}, err
		}
		return listquery.Result[entity.Order]{Records: page.Items, Pagination: page.Pagination}, nil
	}
	defaults := listquery.Query{PageNumber: 1, PageSize: 10}
	return &OrderHistory{orderScreen: &orderScreen{
		listScreen: newListScreen(NameOrderHistory, st, fetch, defaults, opts...),
		machine:    machine,
		store:      st,
	}}
}

// StaffOrders is the filtered order list of one staff role.
type StaffOrders struct {
	*orderScreen
	role entity.Role
}

// NewSalesStaff lists orders for sales staff, all statuses by default.
func NewSalesStaff(orders ports.OrderService, machine *statusflow.Machine, st *store.Store, opts ...listquery.Option) *StaffOrders {
	return newStaffOrders(NameSalesStaff, entity.RoleSalesStaff, FilterAll, orders, machine, st, opts...)
}

// NewDeliveryStaff lists orders for delivery staff, pending ones by default.
func NewDeliveryStaff(orders ports.OrderService, machine *statusflow.Machine, st *store.Store, opts ...listquery.Option) *StaffOrders {
	return newStaffOrders(NameDeliveryStaff, entity.RoleDeliveryStaff, string(entity.StatusPending), orders, machine, st, opts...)
}

func newStaffOrders(name string, role entity.Role, defaultFilter string, orders ports.OrderService, machine *statusflow.Machine, st *store.Store, opts ...listquery.Option) *StaffOrders {
	fetch := func(ctx context.Context, q listquery.Query) (listquery.Result[entity.Order], error) {
		filter := ports.OrderFilter{
			SortBy:     q.SortField,
			Descending: q.SortDirection == listquery.Descending,
			PageNumber: q.PageNumber,
			PageSize:   q.PageSize,
		}
		if q.Filter != "" && !strings.EqualFold(q.Filter, FilterAll) {
			status, ok := entity.ParseOrderStatus(q.Filter)
			if !ok {
				return listquery.Result[entity.Order]{}, &entity.ValidationError{Fields: []string{"filter"}}
			}
			filter.Status = status
		}
		page, err := orders.ListOrders(ctx, filter)
		if err != nil {
			return listquery.Result[entity.Order]{}, err
		}
		return listquery.Result[entity.Order]{Records: page.Items, Pagination: page.Pagination}, nil
	}
	defaults := listquery.Query{
		Filter:        defaultFilter,
		SortField:     "PlacedDate",
		SortDirection: listquery.Descending,
		PageNumber:    1,
		PageSize:      9,
	}
	ls := newListScreen(name, st, fetch, defaults, opts...)
	ls.filterOptions = filterOptions(role, defaultFilter == FilterAll)
	return &StaffOrders{
		orderScreen: &orderScreen{listScreen: ls, machine: machine, store: st},
		role:        role,
	}
}

// filterOptions offers every status the role acts on, plus the status its
// last step produces.
func filterOptions(role entity.Role, withAll bool) []string {
	var out []string
	if withAll {
		out = append(out, FilterAll)
	}
	rows := statusflow.Transitions(role)
	for _, t := range rows {
		out = append(out, string(t.From))
	}
	if len(rows) > 0 {
		out = append(out, string(rows[len(rows)-1].To))
	}
	return out
}

// Apply rejects a status filter no order can have before the query changes.
func (s *StaffOrders) Apply(ctx context.Context, p Patch) error {
	if p.Filter != nil && !validStatusFilter(*p.Filter) {
		return &entity.ValidationError{Fields: []string{"filter"}}
	}
	return s.listScreen.Apply(ctx, p)
}

func validStatusFilter(f string) bool {
	if f == "" || strings.EqualFold(f, FilterAll) {
		return true
	}
	_, ok := entity.ParseOrderStatus(f)
	return ok
}

// Advance moves a listed order one step as the logged-in user's role.
func (s *StaffOrders) Advance(ctx context.Context, orderID int64) (entity.OrderStatus, error) {
	role, err := s.store.Role(ctx)
	if err != nil {
		return "", err
	}
	order, err := s.find(orderID)
	if err != nil {
		return "", err
	}
	return s.machine.Advance(ctx, role, order, s.ctrl.Refetch)
}

// Role is the staff role the screen is built for.
func (s *StaffOrders) Role() entity.Role { return s.role }
