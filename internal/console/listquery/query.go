// Package listquery drives the paginated, filtered and sorted list screens:
// one query value per screen, one fetch per distinct query, and only the
// latest issued response ever shown.
package listquery

// SortDirection is the order of the active sort field.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// Flip returns the opposite direction. An unset direction flips to descending.
func (d SortDirection) Flip() SortDirection {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// Query is the full parameter set of one list fetch. Queries are values:
// every mutator returns a modified copy.
type Query struct {
	SearchTerm    string
	Filter        string
	SortField     string
	SortDirection SortDirection
	PageNumber    int
	PageSize      int
}

func (q Query) WithSearch(term string) Query {
	q.SearchTerm = term
	q.PageNumber = 1
	return q
}

func (q Query) WithFilter(filter string) Query {
	q.Filter = filter
	q.PageNumber = 1
	return q
}

func (q Query) WithSort(field string, dir SortDirection) Query {
	q.SortField = field
	q.SortDirection = dir
	q.PageNumber = 1
	return q
}

// ToggleSort flips the direction when field is already the active sort field,
// otherwise makes field active in ascending order.
func (q Query) ToggleSort(field string) Query {
	if q.SortField == field {
		return q.WithSort(field, q.SortDirection.Flip())
	}
	return q.WithSort(field, Ascending)
}

func (q Query) WithPageSize(size int) Query {
	if size < 1 {
		size = 1
	}
	q.PageSize = size
	q.PageNumber = 1
	return q
}

// WithPage moves to page n, clamped to [1, totalPages]. A totalPages below 1
// means the page count is not known yet and only the lower bound applies.
func (q Query) WithPage(n, totalPages int) Query {
	q.PageNumber = clampPage(n, totalPages)
	return q
}

func clampPage(n, totalPages int) int {
	if totalPages > 0 && n > totalPages {
		n = totalPages
	}
	if n < 1 {
		n = 1
	}
	return n
}
