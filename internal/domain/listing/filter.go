package listing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/domain"
)

// dateOnly is the calendar date layout accepted for dateFrom and dateTo.
const dateOnly = "2006-01-02"

// RawParams are the search parameters as received from a request.
// Empty strings mean "not supplied".
type RawParams struct {
	Query      string
	CategoryID string
	DateFrom   string
	DateTo     string
}

// DateRange bounds the event date. Both bounds are inclusive; a nil bound
// leaves that side open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Empty reports whether neither bound is set.
func (r DateRange) Empty() bool {
	return r.From == nil && r.To == nil
}

// Contains reports whether t lies within the range.
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// Filter is the normalized predicate for one item kind. Present parts are
// ANDed; nil parts impose no constraint.
type Filter struct {
	Kind       domain.Kind
	Text       *string
	CategoryID *uuid.UUID
	DateRange  *DateRange
}

// Build validates raw and produces the Filter for kind. Malformed category
// ids and dates are reported as a *domain.ValidationError keyed by the
// parameter name.
func Build(raw RawParams, kind domain.Kind) (Filter, error) {
	f := Filter{Kind: kind}
	verr := &domain.ValidationError{}

	if q := strings.TrimSpace(raw.Query); q != "" {
		f.Text = &q
	}

	if id := strings.TrimSpace(raw.CategoryID); id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			verr.Add("categoryId", "Category ID has invalid format.")
		} else {
			f.CategoryID = &parsed
		}
	}

	var r DateRange
	if s := strings.TrimSpace(raw.DateFrom); s != "" {
		from, _, err := parseDate(s)
		if err != nil {
			verr.Add("dateFrom", "dateFrom must be a date (YYYY-MM-DD) or RFC 3339 timestamp.")
		} else {
			r.From = &from
		}
	}
	if s := strings.TrimSpace(raw.DateTo); s != "" {
		to, bare, err := parseDate(s)
		if err != nil {
			verr.Add("dateTo", "dateTo must be a date (YYYY-MM-DD) or RFC 3339 timestamp.")
		} else {
			if bare {
				to = endOfDay(to)
			}
			r.To = &to
		}
	}
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		verr.Add("dateFrom", "dateFrom must not be after dateTo.")
	}
	if !r.Empty() {
		f.DateRange = &r
	}

	if err := verr.OrNil(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// ForKind returns a copy of f that applies to kind. The date range then
// bounds that kind's event date.
func (f Filter) ForKind(kind domain.Kind) Filter {
	f.Kind = kind
	return f
}

// WithCategory returns a copy of f constrained to categoryID.
func (f Filter) WithCategory(categoryID uuid.UUID) Filter {
	f.CategoryID = &categoryID
	return f
}

// Matches evaluates f against item in memory. Stores translate the same
// semantics into SQL; this is the reference used by tests and fakes.
func (f Filter) Matches(item *domain.Item) bool {
	if item.Kind != f.Kind {
		return false
	}
	if f.Text != nil {
		q := strings.ToLower(*f.Text)
		if !strings.Contains(strings.ToLower(item.Name), q) &&
			!strings.Contains(strings.ToLower(item.Description), q) {
			return false
		}
	}
	if f.CategoryID != nil && item.CategoryID != *f.CategoryID {
		return false
	}
	if f.DateRange != nil && !f.DateRange.Contains(item.EventDate) {
		return false
	}
	return true
}

// parseDate accepts YYYY-MM-DD (UTC midnight) or RFC 3339. The second
// result reports whether the input was a bare date.
func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(dateOnly, s); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), false, nil
}

func endOfDay(t time.Time) time.Time {
	return t.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// ParseDate parses an event date supplied on add or update using the same
// formats as the search filter.
func ParseDate(s string) (time.Time, error) {
	t, _, err := parseDate(strings.TrimSpace(s))
	return t, err
}
