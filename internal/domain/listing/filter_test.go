package listing

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lostfound-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildEmpty(t *testing.T) {
	f, err := Build(RawParams{Query: "   "}, domain.KindLost)
	require.NoError(t, err)
	assert.Equal(t, domain.KindLost, f.Kind)
	assert.Nil(t, f.Text)
	assert.Nil(t, f.CategoryID)
	assert.Nil(t, f.DateRange)
}

func TestBuildPredicates(t *testing.T) {
	categoryID := uuid.New()
	f, err := Build(RawParams{
		Query:      "wallet",
		CategoryID: categoryID.String(),
		DateFrom:   "2024-06-01",
		DateTo:     "2024-06-15",
	}, domain.KindFound)
	require.NoError(t, err)

	require.NotNil(t, f.Text)
	assert.Equal(t, "wallet", *f.Text)
	require.NotNil(t, f.CategoryID)
	assert.Equal(t, categoryID, *f.CategoryID)
	require.NotNil(t, f.DateRange)
	assert.Equal(t, day(2024, 6, 1), *f.DateRange.From)
	assert.Equal(t, day(2024, 6, 16).Add(-time.Nanosecond), *f.DateRange.To, "date-only upper bound covers the whole day")
}

func TestBuildOpenRange(t *testing.T) {
	f, err := Build(RawParams{DateTo: "2024-06-15T10:00:00+02:00"}, domain.KindLost)
	require.NoError(t, err)
	require.NotNil(t, f.DateRange)
	assert.Nil(t, f.DateRange.From)
	assert.Equal(t, time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC), *f.DateRange.To)
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name  string
		raw   RawParams
		field string
	}{
		{"bad category", RawParams{CategoryID: "not-a-uuid"}, "categoryId"},
		{"bad dateFrom", RawParams{DateFrom: "15/06/2024"}, "dateFrom"},
		{"bad dateTo", RawParams{DateTo: "yesterday"}, "dateTo"},
		{"inverted range", RawParams{DateFrom: "2024-06-16", DateTo: "2024-06-15"}, "dateFrom"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.raw, domain.KindLost)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation))

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestFilterMatches(t *testing.T) {
	categoryID := uuid.New()
	item := &domain.Item{
		Kind:        domain.KindLost,
		Name:        "Leather Wallet",
		Description: "brown, with cards",
		CategoryID:  categoryID,
		EventDate:   day(2024, 6, 15),
	}

	for _, q := range []string{"wallet", "WALLET", "leath", "CARDS"} {
		f, err := Build(RawParams{Query: q}, domain.KindLost)
		require.NoError(t, err)
		assert.True(t, f.Matches(item), "query %q should match", q)
	}

	f, err := Build(RawParams{Query: "phone"}, domain.KindLost)
	require.NoError(t, err)
	assert.False(t, f.Matches(item))

	f, err = Build(RawParams{DateFrom: "2024-06-15", DateTo: "2024-06-15"}, domain.KindLost)
	require.NoError(t, err)
	assert.True(t, f.Matches(item), "range is inclusive on both bounds")

	f, err = Build(RawParams{DateFrom: "2024-06-16"}, domain.KindLost)
	require.NoError(t, err)
	assert.False(t, f.Matches(item))

	assert.False(t, f.ForKind(domain.KindFound).Matches(item), "kind must match")
	assert.True(t, Filter{Kind: domain.KindLost}.WithCategory(categoryID).Matches(item))
	assert.False(t, Filter{Kind: domain.KindLost}.WithCategory(uuid.New()).Matches(item))
}
