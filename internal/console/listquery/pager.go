package listquery

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
)

var ErrPageOutOfRange = errors.New("page out of range")

// Pager answers the pagination widget's questions from server metadata.
type Pager struct {
	PageNumber int
	TotalPages int
}

func NewPager(p entity.Pagination) Pager {
	return Pager{PageNumber: clampPage(p.PageNumber, p.TotalPages), TotalPages: p.TotalPages}
}

func (p Pager) HasPrevious() bool { return p.PageNumber > 1 }
func (p Pager) HasNext() bool     { return p.PageNumber < p.TotalPages }

func (p Pager) First() int { return 1 }

func (p Pager) Last() int {
	if p.TotalPages < 1 {
		return 1
	}
	return p.TotalPages
}

func (p Pager) Previous() int { return clampPage(p.PageNumber-1, p.TotalPages) }
func (p Pager) Next() int     { return clampPage(p.PageNumber+1, p.TotalPages) }

// GoTo validates a typed page number. Unlike the navigation buttons it does
// not clamp: out-of-range input is rejected.
func (p Pager) GoTo(n int) (int, error) {
	if n < 1 || n > p.Last() {
		return 0, fmt.Errorf("%w: %d not in [1, %d]", ErrPageOutOfRange, n, p.Last())
	}
	return n, nil
}

// Resolve maps a navigation token (first, previous, next, last or a page
// number) to the page it targets.
func (p Pager) Resolve(nav string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(nav)) {
	case "first":
		return p.First(), nil
	case "previous", "prev":
		return p.Previous(), nil
	case "next":
		return p.Next(), nil
	case "last":
		return p.Last(), nil
	}
	n, err := strconv.Atoi(nav)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrPageOutOfRange, nav)
	}
	return p.GoTo(n)
}
