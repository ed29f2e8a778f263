package pagination

import (
	"errors"
	"strconv"
	"strings"
)

// PageSize is the catalog page size.
const PageSize = 12

const (
	defaultAdminPageSize = 25
	maxAdminPageSize     = 100
	lastPageToken        = "last"
)

var ErrInvalidPage = errors.New("invalid_page")

// Request is the unresolved page selector as received from a query string.
type Request struct {
	Raw  string
	Size int
}

// Page describes one resolved window over a result set.
type Page struct {
	Number     int   `json:"page"`
	Size       int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_previous"`
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

func (p Page) NextNumber() int {
	return p.Number + 1
}

func (p Page) PrevNumber() int {
	return p.Number - 1
}

// Numbers returns every page number, for rendering page links.
func (p Page) Numbers() []int {
	out := make([]int, 0, p.TotalPages)
	for i := 1; i <= p.TotalPages; i++ {
		out = append(out, i)
	}
	return out
}

// Resolve turns a raw page parameter into a page over total items.
//
// A blank parameter means page 1 and "last" means the final page. Anything
// that is not a positive integer within range is ErrInvalidPage, except that
// page 1 always exists, even over an empty result.
func Resolve(raw string, size int, total int64) (Page, error) {
	if size <= 0 {
		size = PageSize
	}
	pages := int((total + int64(size) - 1) / int64(size))
	if pages < 1 {
		pages = 1
	}

	number := 1
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
	case raw == lastPageToken:
		number = pages
	default:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > pages {
			return Page{}, ErrInvalidPage
		}
		number = n
	}

	return Page{
		Number:     number,
		Size:       size,
		TotalItems: total,
		TotalPages: pages,
		HasNext:    number < pages,
		HasPrev:    number > 1,
	}, nil
}

// AdminSize clamps a requested admin page size.
func AdminSize(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return defaultAdminPageSize
	}
	if n > maxAdminPageSize {
		return maxAdminPageSize
	}
	return n
}
