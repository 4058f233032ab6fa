package listquery

import (
	"cmp"
	"slices"
	"time"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
)

// Compare orders two records; negative means a sorts before b.
type Compare[T any] func(a, b T) int

// ByKey compares records by an ordered key: lexicographic for strings,
// numeric for numbers.
func ByKey[T any, K cmp.Ordered](key func(T) K) Compare[T] {
	return func(a, b T) int { return cmp.Compare(key(a), key(b)) }
}

func ByTime[T any](key func(T) time.Time) Compare[T] {
	return func(a, b T) int { return key(a).Compare(key(b)) }
}

// SortStable sorts records in place. Records with equal keys keep their
// relative order in both directions.
func SortStable[T any](records []T, compare Compare[T], dir SortDirection) {
	if compare == nil {
		return
	}
	slices.SortStableFunc(records, func(a, b T) int {
		if dir == Descending {
			return -compare(a, b)
		}
		return compare(a, b)
	})
}

// Paginate slices an already sorted in-memory list the way the API would,
// for screens that fetch a whole collection and page through it locally.
func Paginate[T any](records []T, pageNumber, pageSize int) ([]T, entity.Pagination) {
	if pageSize < 1 {
		pageSize = 10
	}
	total := len(records)
	totalPages := (total + pageSize - 1) / pageSize
	pageNumber = clampPage(pageNumber, totalPages)

	start := min((pageNumber-1)*pageSize, total)
	end := min(start+pageSize, total)
	return records[start:end], entity.Pagination{
		PageNumber:   pageNumber,
		PageSize:     pageSize,
		TotalRecords: total,
		TotalPages:   totalPages,
	}
}
