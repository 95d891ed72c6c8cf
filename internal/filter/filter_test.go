package filter

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/fredseries/internal/errs"
	"github.com/seenimoa/fredseries/pkg/models"
)

func d(s string) models.Date { return models.MustParseDate(s) }

func dp(s string) *models.Date {
	v := d(s)
	return &v
}

func series(rows ...any) models.Series {
	s := models.Series{ID: "TEST"}
	for i := 0; i < len(rows); i += 2 {
		v := models.Missing()
		if f, ok := rows[i+1].(float64); ok {
			v = models.Float64(f)
		}
		s.Observations = append(s.Observations, models.Observation{Date: d(rows[i].(string)), Value: v})
	}
	return s
}

func values(s models.Series) []any {
	out := make([]any, s.Len())
	for i, o := range s.Observations {
		if o.Value.Valid {
			out[i] = o.Value.Float
		}
	}
	return out
}

var daily = series(
	"2019-12-31", 1.0,
	"2020-01-01", 2.0,
	"2020-06-01", nil,
	"2020-06-02", 4.0,
	"2020-12-31", 5.0,
	"2021-01-01", 6.0,
)

func TestByRangeInclusive(t *testing.T) {
	f := New(zerolog.Nop())

	got := f.ByRange(daily, dp("2020-01-01"), dp("2020-12-31"))
	assert.Equal(t, []string{"2020-01-01", "2020-06-01", "2020-06-02", "2020-12-31"}, models.DateStrings(got.Dates()))
	assert.Equal(t, "TEST", got.ID)
	for _, o := range got.Observations {
		assert.False(t, o.Date.Before(d("2020-01-01")))
		assert.False(t, o.Date.After(d("2020-12-31")))
	}
}

func TestByRangeOpenBounds(t *testing.T) {
	f := New(zerolog.Nop())

	assert.Equal(t, 2, f.ByRange(daily, dp("2020-12-31"), nil).Len())
	assert.Equal(t, 2, f.ByRange(daily, nil, dp("2020-01-01")).Len())
	assert.Equal(t, daily.Len(), f.ByRange(daily, nil, nil).Len())
	assert.Equal(t, 0, f.ByRange(daily, dp("2030-01-01"), nil).Len())
}

func TestByRangeIdempotent(t *testing.T) {
	f := New(zerolog.Nop())

	once := f.ByRange(daily, dp("2020-01-01"), dp("2020-12-31"))
	twice := f.ByRange(once, dp("2020-01-01"), dp("2020-12-31"))
	assert.Equal(t, once, twice)
}

func TestByRangeDoesNotMutateInput(t *testing.T) {
	f := New(zerolog.Nop())
	before := daily.Len()

	out := f.ByRange(daily, dp("2020-06-01"), nil)
	out.Observations[0].Value = models.Float64(99)
	assert.Equal(t, before, daily.Len())
	assert.True(t, daily.Observations[2].Value.IsMissing())
}

func TestByDatesExactMatch(t *testing.T) {
	f := New(zerolog.Nop())

	got, warn, err := f.ByDates(daily, []models.Date{d("2020-01-01"), d("2020-06-02"), d("2020-12-31")}, d("2019-12-31"))
	require.NoError(t, err)
	assert.Nil(t, warn)
	assert.Equal(t, []string{"2020-01-01", "2020-06-02", "2020-12-31"}, models.DateStrings(got.Dates()))
	assert.Equal(t, []any{2.0, 4.0, 5.0}, values(got))
}

func TestByDatesForwardFill(t *testing.T) {
	var buf bytes.Buffer
	f := New(zerolog.New(&buf))

	// 2020-06-01 exists with a missing value, 2020-07-04 does not exist.
	req := []models.Date{d("2020-01-01"), d("2020-06-01"), d("2020-07-04"), d("2020-12-31")}
	got, warn, err := f.ByDates(daily, req, d("2019-12-31"))
	require.NoError(t, err)
	require.NotNil(t, warn)
	assert.Equal(t, []string{"2020-06-01", "2020-07-04"}, models.DateStrings(warn.Dates))
	assert.Contains(t, warn.String(), "2020-06-01 2020-07-04")
	assert.Equal(t, []any{2.0, 2.0, 2.0, 5.0}, values(got))
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestByDatesBackwardFillsLeadingGap(t *testing.T) {
	f := New(zerolog.Nop())

	req := []models.Date{d("2020-03-15"), d("2020-04-15"), d("2020-06-02"), d("2020-09-09")}
	got, warn, err := f.ByDates(daily, req, d("2019-12-31"))
	require.NoError(t, err)
	require.NotNil(t, warn)
	assert.Len(t, warn.Dates, 3)
	assert.Equal(t, []any{4.0, 4.0, 4.0, 4.0}, values(got))
}

func TestByDatesLengthMatchesRequestWithDuplicates(t *testing.T) {
	f := New(zerolog.Nop())

	req := []models.Date{d("2020-01-01"), d("2020-01-01"), d("2021-01-01"), d("2020-01-01")}
	got, warn, err := f.ByDates(daily, req, d("2019-12-31"))
	require.NoError(t, err)
	assert.Nil(t, warn)
	assert.Equal(t, len(req), got.Len())
	assert.Equal(t, []any{2.0, 2.0, 6.0, 2.0}, values(got))
}

func TestByDatesNoMatchesAtAll(t *testing.T) {
	f := New(zerolog.Nop())

	req := []models.Date{d("2020-02-01"), d("2020-03-01"), d("2020-04-01")}
	got, warn, err := f.ByDates(daily, req, d("2019-12-31"))
	require.NoError(t, err)
	require.NotNil(t, warn)
	assert.Equal(t, 3, got.Len())
	assert.Len(t, warn.Dates, 3)
	assert.Equal(t, 3, got.MissingCount())
}

// Gap filling follows requested order, not chronological order.
func TestByDatesFillUsesRequestedOrder(t *testing.T) {
	f := New(zerolog.Nop())

	req := []models.Date{d("2021-01-01"), d("2020-07-04"), d("2020-01-01")}
	got, warn, err := f.ByDates(daily, req, d("2019-12-31"))
	require.NoError(t, err)
	require.NotNil(t, warn)
	assert.Equal(t, []string{"2021-01-01", "2020-07-04", "2020-01-01"}, models.DateStrings(got.Dates()))
	// 2020-07-04 takes the value of the row before it in the request
	// (2021-01-01), not the chronologically preceding observation.
	assert.Equal(t, []any{6.0, 6.0, 2.0}, values(got))
}

func TestByDatesRejectsDatesBeforeInception(t *testing.T) {
	f := New(zerolog.Nop())

	req := []models.Date{d("2019-01-01"), d("2020-01-01"), d("2018-05-05")}
	_, _, err := f.ByDates(daily, req, d("2019-12-31"))
	require.Error(t, err)
	assert.Equal(t, errs.KindInvalidArgument, errs.KindOf(err))
	assert.Contains(t, err.Error(), "2019-01-01 2018-05-05")
	assert.Contains(t, err.Error(), "before series inception date 2019-12-31")
}

func TestByDatesInceptionDateItselfAllowed(t *testing.T) {
	f := New(zerolog.Nop())

	got, _, err := f.ByDates(daily, []models.Date{d("2019-12-31")}, d("2019-12-31"))
	require.NoError(t, err)
	assert.Equal(t, []any{1.0}, values(got))
}

func TestByDatesFirstDuplicateSourceRowWins(t *testing.T) {
	f := New(zerolog.Nop())

	dup := series("2020-01-01", 1.0, "2020-01-01", 7.0)
	got, _, err := f.ByDates(dup, []models.Date{d("2020-01-01")}, d("2020-01-01"))
	require.NoError(t, err)
	assert.Equal(t, []any{1.0}, values(got))
}
