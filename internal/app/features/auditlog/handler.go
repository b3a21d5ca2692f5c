// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"time"

	auditstore "github.com/dalemusser/ecahub/internal/app/store/audit"
	"github.com/dalemusser/ecahub/internal/app/system/apiresp"
	"github.com/dalemusser/ecahub/internal/app/system/paging"
	"github.com/dalemusser/ecahub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// Store is satisfied by *auditstore.Store.
type Store interface {
	Query(ctx context.Context, filter auditstore.QueryFilter) ([]auditstore.Event, error)
	FailedLogins(ctx context.Context, since time.Time, limit int64) ([]auditstore.Event, error)
}

type Handler struct {
	Log   *zap.Logger
	Store Store
	Now   func() time.Time
}

// NewHandler constructs the audit log API handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{Log: logger, Store: store, Now: time.Now}
}

type listResponse struct {
	Events  []auditstore.Event `json:"events"`
	HasMore bool               `json:"has_more"`
}

func parseTime(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	v := query.Get(r, name)
	if v == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		apiresp.BadRequest(w, "Invalid "+name+" (want RFC3339)")
		return nil, false
	}
	t = t.UTC()
	return &t, true
}

// HandleList handles GET /api/audit. Filters: user_id, school_id,
// category, event_type, success, since, until; paged with limit/offset.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	f := auditstore.QueryFilter{
		Category:  query.Get(r, "category"),
		EventType: query.Get(r, "event_type"),
	}
	var ok bool
	if f.UserID, ok = apiresp.QueryID(w, r, "user_id"); !ok {
		return
	}
	if f.SchoolID, ok = apiresp.QueryID(w, r, "school_id"); !ok {
		return
	}
	if f.Since, ok = parseTime(w, r, "since"); !ok {
		return
	}
	if f.Until, ok = parseTime(w, r, "until"); !ok {
		return
	}
	if v := query.Get(r, "success"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			apiresp.BadRequest(w, "Invalid success")
			return
		}
		f.Success = &b
	}

	page := paging.Parse(r, paging.PageSize, paging.MaxPageSize)
	f.Limit = page.LookAhead()
	f.Offset = page.Offset

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.Store.Query(ctx, f)
	if err != nil {
		apiresp.Internal(w, r, h.Log, "audit query", err)
		return
	}
	events, more := paging.Trim(events, page)
	apiresp.OK(w, listResponse{Events: events, HasMore: more})
}

// HandleFailedLogins handles GET /api/audit/failed-logins?hours=N
// (default 24, at most 720).
func (h *Handler) HandleFailedLogins(w http.ResponseWriter, r *http.Request) {
	hours := 24
	if v := query.Get(r, "hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 720 {
			apiresp.BadRequest(w, "hours must be between 1 and 720")
			return
		}
		hours = n
	}
	since := h.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page := paging.Parse(r, paging.PageSize, paging.MaxPageSize)
	events, err := h.Store.FailedLogins(ctx, since, page.Limit)
	if err != nil {
		apiresp.Internal(w, r, h.Log, "failed logins", err)
		return
	}
	apiresp.OK(w, events)
}
