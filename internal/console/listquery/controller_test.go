package listquery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
)

type recordingFetcher struct {
	mu      sync.Mutex
	queries []Query
	result  func(q Query) (Result[string], error)
}

func (f *recordingFetcher) fetch(_ context.Context, q Query) (Result[string], error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.result != nil {
		return f.result(q)
	}
	return Result[string]{
		Records:    []string{q.Filter},
		Pagination: entity.Pagination{PageNumber: q.PageNumber, PageSize: q.PageSize, TotalRecords: 25, TotalPages: 3},
	}, nil
}

func (f *recordingFetcher) calls() []Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Query(nil), f.queries...)
}

var staffDefaults = Query{Filter: "All", SortField: "PlacedDate", SortDirection: Descending, PageNumber: 1, PageSize: 9}

func TestController_FetchParamsFollowQueryAndResetPage(t *testing.T) {
	f := &recordingFetcher{}
	c := NewController(f.fetch, staffDefaults)
	ctx := context.Background()

	require.NoError(t, c.Load(ctx))
	require.NoError(t, c.GoTo(ctx, 3))
	require.NoError(t, c.Update(ctx, func(q Query) Query { return q.WithFilter("Packed") }))
	require.NoError(t, c.Update(ctx, func(q Query) Query { return q.WithPage(2, 3) }))
	require.NoError(t, c.Update(ctx, func(q Query) Query { return q.ToggleSort("Total") }))
	require.NoError(t, c.Update(ctx, func(q Query) Query { return q.WithPage(2, 3) }))
	require.NoError(t, c.Update(ctx, func(q Query) Query { return q.WithSearch("koi") }))

	calls := f.calls()
	require.Len(t, calls, 7)
	assert.Equal(t, 3, calls[1].PageNumber)
	assert.Equal(t, Query{Filter: "Packed", SortField: "PlacedDate", SortDirection: Descending, PageNumber: 1, PageSize: 9}, calls[2])
	assert.Equal(t, Query{Filter: "Packed", SortField: "Total", SortDirection: Ascending, PageNumber: 1, PageSize: 9}, calls[4])
	assert.Equal(t, Query{SearchTerm: "koi", Filter: "Packed", SortField: "Total", SortDirection: Ascending, PageNumber: 1, PageSize: 9}, calls[6])
	assert.Equal(t, c.Query(), calls[6])
}

func TestController_UnchangedQueryDoesNotFetch(t *testing.T) {
	f := &recordingFetcher{}
	c := NewController(f.fetch, staffDefaults)
	ctx := context.Background()

	require.NoError(t, c.Load(ctx))
	require.NoError(t, c.Update(ctx, func(q Query) Query { return q.WithFilter("All") }))
	require.NoError(t, c.Update(ctx, func(q Query) Query { return q }))
	assert.Len(t, f.calls(), 1)
}

func TestController_ResetIssuesExactlyOneFetchWithDefaults(t *testing.T) {
	f := &recordingFetcher{}
	c := NewController(f.fetch, staffDefaults)
	ctx := context.Background()

	require.NoError(t, c.Update(ctx, func(q Query) Query {
		return q.WithSearch("x").WithFilter("Packing").WithSort("Total", Ascending).WithPageSize(20).WithPage(3, 0)
	}))
	before := len(f.calls())

	require.NoError(t, c.Reset(ctx))

	calls := f.calls()
	require.Len(t, calls, before+1)
	assert.Equal(t, staffDefaults, calls[len(calls)-1])
	assert.Equal(t, staffDefaults, c.Query())
}

// The fetch for generation 5 is held until generation 6 has been applied.
func TestController_LateOlderResponseIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	f := &recordingFetcher{result: func(q Query) (Result[string], error) {
		if q.Filter == "slow" {
			close(entered)
			<-release
		}
		return Result[string]{
			Records:    []string{q.Filter},
			Pagination: entity.Pagination{PageNumber: 1, PageSize: 9, TotalRecords: 1, TotalPages: 1},
		}, nil
	}}
	c := NewController(f.fetch, staffDefaults)
	ctx := context.Background()

	for _, filter := range []string{"a", "b", "c", "d"} {
		require.NoError(t, c.Update(ctx, func(q Query) Query { return q.WithFilter(filter) }))
	}
	require.Equal(t, uint64(4), c.View().Generation)

	done := make(chan error, 1)
	go func() {
		done <- c.Update(ctx, func(q Query) Query { return q.WithFilter("slow") }) // generation 5
	}()
	<-entered
	require.NoError(t, c.Update(ctx, func(q Query) Query { return q.WithFilter("fast") })) // generation 6

	close(release)
	require.NoError(t, <-done)

	v := c.View()
	assert.Equal(t, []string{"fast"}, v.Records)
	assert.Equal(t, uint64(6), v.Generation)
	assert.Equal(t, "fast", v.Query.Filter)
	assert.False(t, v.Pending)
}

func TestController_FailurePreservesRecordsAndSetsBanner(t *testing.T) {
	fail := false
	f := &recordingFetcher{}
	f.result = func(q Query) (Result[string], error) {
		if fail {
			return Result[string]{}, &entity.APIError{StatusCode: 500, Message: "boom"}
		}
		return Result[string]{Records: []string{"kept"}, Pagination: entity.Pagination{PageNumber: 1, TotalPages: 2}}, nil
	}
	c := NewController(f.fetch, staffDefaults)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	fail = true
	err := c.GoTo(ctx, 2)
	var apiErr *entity.APIError
	require.ErrorAs(t, err, &apiErr)

	v := c.View()
	assert.Equal(t, []string{"kept"}, v.Records)
	require.Error(t, v.Err)

	c.DismissError()
	assert.NoError(t, c.View().Err)
	assert.Equal(t, []string{"kept"}, c.View().Records)
}

func TestController_TimeoutSurfacesAsNetworkError(t *testing.T) {
	slow := func(ctx context.Context, q Query) (Result[string], error) {
		<-ctx.Done()
		return Result[string]{}, ctx.Err()
	}
	c := NewController(slow, staffDefaults, WithTimeout(20*time.Millisecond))

	err := c.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrNetwork))
	assert.True(t, errors.Is(c.View().Err, entity.ErrNetwork))
}

func TestController_PanickingFetcherBecomesError(t *testing.T) {
	c := NewController(func(context.Context, Query) (Result[string], error) {
		panic("nil map")
	}, staffDefaults)

	require.NotPanics(t, func() {
		assert.Error(t, c.Load(context.Background()))
	})
}

func TestController_ReconcilesServerPageWithoutRefetch(t *testing.T) {
	f := &recordingFetcher{}
	f.result = func(q Query) (Result[string], error) {
		// the server clamps an out-of-range page to its last page
		return Result[string]{Pagination: entity.Pagination{PageNumber: 2, PageSize: 9, TotalRecords: 12, TotalPages: 2}}, nil
	}
	c := NewController(f.fetch, staffDefaults)
	ctx := context.Background()

	require.NoError(t, c.Update(ctx, func(q Query) Query { return q.WithPage(7, 0) }))
	assert.Equal(t, 2, c.Query().PageNumber)
	require.Len(t, f.calls(), 1)

	require.NoError(t, c.GoTo(ctx, 2))
	assert.Len(t, f.calls(), 1)
}

func TestController_SubscribersSeeAppliedViews(t *testing.T) {
	f := &recordingFetcher{}
	c := NewController(f.fetch, staffDefaults)

	var mu sync.Mutex
	var seen []View[string]
	cancel := c.Subscribe(func(v View[string]) {
		mu.Lock()
		seen = append(seen, v)
		mu.Unlock()
	})

	require.NoError(t, c.Load(context.Background()))
	mu.Lock()
	require.Len(t, seen, 2)
	assert.True(t, seen[0].Pending)
	assert.False(t, seen[1].Pending)
	assert.True(t, seen[1].Loaded)
	mu.Unlock()

	cancel()
	require.NoError(t, c.Refetch(context.Background()))
	mu.Lock()
	assert.Len(t, seen, 2)
	mu.Unlock()
}

func TestController_UnclampedServerPageFetchesLastPage(t *testing.T) {
	f := &recordingFetcher{}
	f.result = func(q Query) (Result[string], error) {
		// the server echoes whatever page it was asked for
		meta := entity.Pagination{PageNumber: q.PageNumber, PageSize: 9, TotalRecords: 12, TotalPages: 2}
		if q.PageNumber > 2 {
			return Result[string]{Pagination: meta}, nil
		}
		return Result[string]{Records: []string{fmt.Sprintf("page-%d", q.PageNumber)}, Pagination: meta}, nil
	}
	c := NewController(f.fetch, staffDefaults)
	ctx := context.Background()

	require.NoError(t, c.Update(ctx, func(q Query) Query { return q.WithPage(3, 0) }))
	calls := f.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, 3, calls[0].PageNumber)
	assert.Equal(t, 2, calls[1].PageNumber)

	v := c.View()
	assert.Equal(t, 2, v.Query.PageNumber)
	assert.Equal(t, 2, v.Pagination.PageNumber)
	assert.Equal(t, []string{"page-2"}, v.Records)

	require.NoError(t, c.GoTo(ctx, 2))
	assert.Len(t, f.calls(), 2)
}

func TestController_ClearDropsRecordsAndLateResponses(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	f := &recordingFetcher{}
	f.result = func(q Query) (Result[string], error) {
		if q.Filter == "slow" {
			close(started)
			<-release
		}
		return Result[string]{
			Records:    []string{q.Filter},
			Pagination: entity.Pagination{PageNumber: q.PageNumber, PageSize: q.PageSize, TotalRecords: 1, TotalPages: 1},
		}, nil
	}
	c := NewController(f.fetch, staffDefaults)
	ctx := context.Background()

	require.NoError(t, c.Update(ctx, func(q Query) Query { return q.WithFilter("Packed") }))
	assert.Equal(t, []string{"Packed"}, c.View().Records)

	done := make(chan error, 1)
	go func() { done <- c.Update(ctx, func(q Query) Query { return q.WithFilter("slow") }) }()
	<-started

	c.Clear()
	close(release)
	require.NoError(t, <-done)

	v := c.View()
	assert.False(t, v.Loaded)
	assert.Empty(t, v.Records)
	assert.Equal(t, staffDefaults, v.Query)

	// The default query is fetched again even though it was issued before.
	require.NoError(t, c.Load(ctx))
	assert.Equal(t, []string{"All"}, c.View().Records)
}
