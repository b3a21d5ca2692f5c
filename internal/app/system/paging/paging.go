// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows in an API list.
const PageSize = 50

// MaxPageSize caps ?limit.
const MaxPageSize = 200

// Page is the window a list request asked for.
type Page struct {
	Limit  int64
	Offset int64
}

// LookAhead is Limit+1, for detecting whether another page exists.
func (p Page) LookAhead() int64 { return p.Limit + 1 }

// Parse reads ?limit and ?offset. A missing or invalid limit falls back
// to def; values above max are clamped. A negative offset is treated as 0.
func Parse(r *http.Request, def, max int) Page {
	limit := def
	if n, err := strconv.Atoi(query.Get(r, "limit")); err == nil && n > 0 {
		limit = n
	}
	if limit > max {
		limit = max
	}
	offset := 0
	if n, err := strconv.Atoi(query.Get(r, "offset")); err == nil && n > 0 {
		offset = n
	}
	return Page{Limit: int64(limit), Offset: int64(offset)}
}

// Trim cuts a look-ahead fetch back to p.Limit rows and reports whether
// rows were cut.
func Trim[T any](rows []T, p Page) ([]T, bool) {
	if int64(len(rows)) > p.Limit {
		return rows[:p.Limit], true
	}
	return rows, false
}
