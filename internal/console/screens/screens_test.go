package screens

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/koi-console/internal/audit"
	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/koi-console/internal/console/infra/adapters/service"
	"github.com/jcmexdev/koi-console/internal/console/session"
	"github.com/jcmexdev/koi-console/internal/console/statusflow"
	"github.com/jcmexdev/koi-console/internal/console/store"
	"github.com/jcmexdev/koi-console/internal/mockapi"
)

type harness struct {
	api      *mockapi.Server
	store    *store.Store
	registry *Registry
	audit    *audit.MemoryRepository
}

func newHarness(t *testing.T, userID int64, role string) *harness {
	t.Helper()
	api := mockapi.New(mockapi.Options{Seed: true})
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	st := store.New(session.NewMemoryRepository())
	ctx := context.Background()
	require.NoError(t, st.Hydrate(ctx))
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": userID, "name": "tester", "role": role, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, err = st.Login(ctx, tok)
	require.NoError(t, err)

	client := service.NewClient(srv.URL, service.DefaultPaths(), 2*time.Second, st.Token)
	orders := service.NewOrderServiceREST(client)
	auditRepo := audit.NewMemoryRepository()
	reg := NewRegistry(Deps{
		Orders:       orders,
		Prices:       service.NewPriceServiceREST(client),
		Content:      service.NewContentServiceREST(client),
		Machine:      statusflow.NewMachine(orders, auditRepo),
		Store:        st,
		FetchTimeout: 2 * time.Second,
	})
	return &harness{api: api, store: st, registry: reg, audit: auditRepo}
}

func ptr[T any](v T) *T { return &v }

func TestSalesStaff_FilterAndAdvance(t *testing.T) {
	h := newHarness(t, 20, "SalesStaff")
	ctx := context.Background()
	sales := h.registry.SalesStaff

	require.NoError(t, sales.Load(ctx))
	snap := sales.Snapshot()
	assert.Equal(t, []string{"All", "HealthCheck", "HealthChecked", "Packing", "Packed"}, snap.FilterOptions)
	assert.Equal(t, entity.Pagination{PageNumber: 1, PageSize: 9, TotalRecords: 12, TotalPages: 2}, snap.Pagination)
	assert.True(t, snap.HasNext)

	require.NoError(t, sales.Apply(ctx, Patch{Filter: ptr("HealthCheck")}))
	records := sales.Controller().View().Records
	require.Len(t, records, 2)

	next, err := sales.Advance(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusHealthChecked, next)

	// the refetch shows the server's state: order 2 left the HealthCheck filter
	records = sales.Controller().View().Records
	require.Len(t, records, 1)
	assert.Equal(t, int64(10), records[0].ID)

	cached, known := store.List[[]entity.Order](h.store, NameSalesStaff).Get()
	require.True(t, known)
	assert.Equal(t, records, cached)
}

func TestSalesStaff_UnknownFilterLeavesQueryAlone(t *testing.T) {
	h := newHarness(t, 20, "SalesStaff")
	ctx := context.Background()
	sales := h.registry.SalesStaff

	require.NoError(t, sales.Apply(ctx, Patch{Filter: ptr("Packed")}))
	hits := h.api.Hits(http.MethodGet, "/orders")
	before := sales.Controller().View()

	err := sales.Apply(ctx, Patch{Filter: ptr("Shipped")})
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"filter"}, verr.Fields)

	after := sales.Controller().View()
	assert.Equal(t, before.Query, after.Query)
	assert.Equal(t, before.Records, after.Records)
	assert.Nil(t, after.Err)
	assert.Equal(t, hits, h.api.Hits(http.MethodGet, "/orders"))

	require.NoError(t, sales.Apply(ctx, Patch{Filter: ptr("HealthCheck")}))
	assert.Len(t, sales.Controller().View().Records, 2)
}

func TestDeliveryStaff_WrongRoleSendsNothing(t *testing.T) {
	h := newHarness(t, 20, "SalesStaff")
	ctx := context.Background()
	delivery := h.registry.DeliveryStaff

	require.NoError(t, delivery.Load(ctx))
	assert.Equal(t, []string{"Pending", "Packed", "InTransit", "Delivered"}, delivery.Snapshot().FilterOptions)
	assert.Equal(t, "Pending", delivery.Snapshot().Query.Filter)

	_, err := delivery.Advance(ctx, 1)
	require.ErrorIs(t, err, entity.ErrInvalidTransition)
	assert.Zero(t, h.api.Hits(http.MethodPut, "/orders/1/status"))

	_, err = delivery.Advance(ctx, 99)
	assert.ErrorIs(t, err, ErrOrderNotListed)
}

func TestDeliveryStaff_AdvanceThroughPipeline(t *testing.T) {
	h := newHarness(t, 30, "DeliveryStaff")
	ctx := context.Background()
	delivery := h.registry.DeliveryStaff

	require.NoError(t, delivery.Apply(ctx, Patch{Filter: ptr("InTransit")}))
	next, err := delivery.Advance(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDelivered, next)

	require.NoError(t, delivery.Apply(ctx, Patch{Filter: ptr("Delivered")}))
	var ids []int64
	for _, o := range delivery.Controller().View().Records {
		ids = append(ids, o.ID)
	}
	assert.ElementsMatch(t, []int64{6, 7}, ids)

	entries := h.audit.All()
	require.Len(t, entries, 2)
	assert.Equal(t, audit.OutcomeSucceeded, entries[1].Outcome)
}

func TestOrderHistory_OwnOrdersAndCancel(t *testing.T) {
	h := newHarness(t, 1, "Customer")
	ctx := context.Background()
	history := h.registry.OrderHistory

	require.NoError(t, history.Load(ctx))
	records := history.Controller().View().Records
	require.Len(t, records, 4)
	for _, o := range records {
		assert.Equal(t, int64(1), o.CustomerID)
	}

	require.NoError(t, history.Cancel(ctx, 4))
	err := history.Cancel(ctx, 7) // Delivered
	require.ErrorIs(t, err, entity.ErrInvalidTransition)

	for _, o := range history.Controller().View().Records {
		if o.ID == 4 {
			assert.Equal(t, entity.StatusCanceled, o.Status)
		}
	}
}

func TestOrderHistory_LoggedOutShowsBanner(t *testing.T) {
	h := newHarness(t, 1, "Customer")
	ctx := context.Background()
	require.NoError(t, h.store.Logout(ctx))

	err := h.registry.OrderHistory.Load(ctx)
	require.ErrorIs(t, err, entity.ErrNoSession)
	assert.NotEmpty(t, h.registry.OrderHistory.Snapshot().Error)
}

func TestFailedFetchKeepsRecords(t *testing.T) {
	h := newHarness(t, 1, "Manager")
	ctx := context.Background()
	feed := h.registry.BlogFeed

	require.NoError(t, feed.Load(ctx))
	before := feed.Controller().View().Records
	require.Len(t, before, 6)

	h.api.FailNext(http.MethodGet, "/content", http.StatusServiceUnavailable, "maintenance")
	err := feed.Navigate(ctx, "next")
	var apiErr *entity.APIError
	require.ErrorAs(t, err, &apiErr)

	snap := feed.Snapshot()
	assert.Equal(t, before, snap.Records)
	assert.Contains(t, snap.Error, "maintenance")

	feed.DismissError()
	assert.Empty(t, feed.Snapshot().Error)
}

func TestBlogFeed_ResetAfterDirtyQuery(t *testing.T) {
	h := newHarness(t, 1, "Customer")
	ctx := context.Background()
	feed := h.registry.BlogFeed

	require.NoError(t, feed.Apply(ctx, Patch{SearchTerm: ptr("note 1"), Filter: ptr("News")}))
	require.NoError(t, feed.ToggleSort(ctx, "Title"))
	hits := h.api.Hits(http.MethodGet, "/content")

	require.NoError(t, feed.Reset(ctx))
	assert.Equal(t, hits+1, h.api.Hits(http.MethodGet, "/content"))
	assert.Equal(t, QueryView{SortField: "CreatedAt", SortDirection: "desc", PageNumber: 1, PageSize: 6}, feed.Snapshot().Query)
}

func TestBlogManager_LocalPostsAreNotSent(t *testing.T) {
	h := newHarness(t, 1, "Manager")
	ctx := context.Background()
	mgr := h.registry.BlogManager

	_, err := mgr.AddLocal(entity.UserInfo{ID: 1, Name: "Boss"}, "", "", "News", "")
	var vErr *entity.ValidationError
	require.ErrorAs(t, err, &vErr)

	item, err := mgr.AddLocal(entity.UserInfo{ID: 1, Name: "Boss"}, "Spring sale", "Body", "News", "")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), item.ContentID)

	require.NoError(t, mgr.Load(ctx))
	snap := mgr.Snapshot()
	assert.Len(t, snap.Records, 10)
	assert.Len(t, snap.Local, 1)
	assert.Zero(t, h.api.Hits(http.MethodPost, "/content"))
}

func TestPriceManager_LocalSortAndMutations(t *testing.T) {
	h := newHarness(t, 1, "Manager")
	ctx := context.Background()
	prices := h.registry.PriceManager

	require.NoError(t, prices.Apply(ctx, Patch{SortField: ptr("PricePerKg"), SortDirection: ptr("desc")}))
	rows := prices.Controller().View().Records
	require.Len(t, rows, 4)
	assert.Equal(t, 5.0, rows[0].PricePerKg)
	assert.Equal(t, 2.0, rows[3].PricePerKg)

	require.NoError(t, prices.Apply(ctx, Patch{Filter: ptr("Air")}))
	assert.Len(t, prices.Controller().View().Records, 2)

	_, err := prices.Create(ctx, entity.PricingPackage{TransportMethod: "Rail", PricePerKg: 1})
	var vErr *entity.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Zero(t, h.api.Hits(http.MethodPost, "/prices"))

	created, err := prices.Create(ctx, entity.PricingPackage{TransportMethod: entity.TransportAir, WeightRange: "50-100kg", PricePerKg: 6})
	require.NoError(t, err)
	rows = prices.Controller().View().Records
	require.Len(t, rows, 3)
	assert.Equal(t, created.PriceID, rows[0].PriceID)

	require.NoError(t, prices.Delete(ctx, created.PriceID))
	assert.Len(t, prices.Controller().View().Records, 2)

	err = prices.Delete(ctx, created.PriceID)
	require.ErrorAs(t, err, new(*entity.APIError))
}

func TestRegistry_Names(t *testing.T) {
	h := newHarness(t, 1, "Manager")
	assert.Equal(t, []string{
		NameBlogFeed, NameBlogManager, NameDeliveryStaff, NameOrderHistory, NamePriceManager, NameSalesStaff,
	}, h.registry.Names())
	_, ok := h.registry.Get("nope")
	assert.False(t, ok)
}
