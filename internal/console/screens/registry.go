package screens

import (
	"sort"
	"time"

	"github.com/jcmexdev/koi-console/internal/console/core/ports"
	"github.com/jcmexdev/koi-console/internal/console/listquery"
	"github.com/jcmexdev/koi-console/internal/console/statusflow"
	"github.com/jcmexdev/koi-console/internal/console/store"
)

type Deps struct {
	Orders  ports.OrderService
	Prices  ports.PriceService
	Content ports.ContentService
	Machine *statusflow.Machine
	Store   *store.Store
	// FetchTimeout bounds each list fetch; zero keeps the controller default.
	FetchTimeout time.Duration
}

// Registry holds one instance of every screen.
type Registry struct {
	BlogFeed      *BlogFeed
	BlogManager   *BlogManager
	OrderHistory  *OrderHistory
	SalesStaff    *StaffOrders
	DeliveryStaff *StaffOrders
	PriceManager  *PriceManager

	byName map[string]Screen
}

func NewRegistry(d Deps) *Registry {
	opt := listquery.WithTimeout(d.FetchTimeout)
	r := &Registry{
		BlogFeed:      NewBlogFeed(d.Content, d.Store, opt),
		BlogManager:   NewBlogManager(d.Content, d.Store, opt),
		OrderHistory:  NewOrderHistory(d.Orders, d.Machine, d.Store, opt),
		SalesStaff:    NewSalesStaff(d.Orders, d.Machine, d.Store, opt),
		DeliveryStaff: NewDeliveryStaff(d.Orders, d.Machine, d.Store, opt),
		PriceManager:  NewPriceManager(d.Prices, d.Store, opt),
	}
	r.byName = map[string]Screen{
		NameBlogFeed:      r.BlogFeed,
		NameBlogManager:   r.BlogManager,
		NameOrderHistory:  r.OrderHistory,
		NameSalesStaff:    r.SalesStaff,
		NameDeliveryStaff: r.DeliveryStaff,
		NamePriceManager:  r.PriceManager,
	}
	return r
}

func (r *Registry) Get(name string) (Screen, bool) {
	s, ok := r.byName[name]
	return s, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
