package listing

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// PageSize is the fixed number of items per search page.
const PageSize = 20

// MaxPage is the largest page whose offset fits in an int.
const MaxPage = math.MaxInt/PageSize + 1

// Sort is the creation-time order of search results.
type Sort string

// Supported sort orders.
const (
	SortAsc  Sort = "asc"
	SortDesc Sort = "desc"
)

// ParseSort returns SortAsc for "asc" and SortDesc for anything else.
func ParseSort(s string) Sort {
	if strings.EqualFold(strings.TrimSpace(s), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// ParsePage normalizes a 1-based page number. Absent, unparsable, zero
// and negative values all resolve to 1; values past MaxPage, including
// ones too large for an int, resolve to MaxPage.
func ParsePage(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if errors.Is(err, strconv.ErrRange) && n > 0 {
		return MaxPage
	}
	if err != nil || n < 1 {
		return 1
	}
	return min(n, MaxPage)
}

// Offset returns how many items precede page. page is clamped to
// [1, MaxPage] so the result never overflows.
func Offset(page int) int {
	page = max(1, min(page, MaxPage))
	return (page - 1) * PageSize
}

// TotalPages returns ceil(total / PageSize), or 0 when total is 0.
func TotalPages(total int) int {
	if total <= 0 {
		return 0
	}
	return (total + PageSize - 1) / PageSize
}

// Query couples a Filter with ordering and a page window.
type Query struct {
	Filter Filter
	Sort   Sort
	Page   int
}

// Limit is the page size of the query window.
func (q Query) Limit() int {
	return PageSize
}

// Offset is the number of items skipped before the query window.
func (q Query) Offset() int {
	return Offset(q.Page)
}
