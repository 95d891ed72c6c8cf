// Package filter narrows a parsed series to what the caller asked for:
// an inclusive date range, or an explicit list of dates with gap filling.
package filter

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/seenimoa/fredseries/internal/errs"
	"github.com/seenimoa/fredseries/pkg/models"
)

// FillWarning is the non-fatal outcome of ByDates when some requested
// dates had no value and were filled from neighbouring rows.
type FillWarning struct {
	// Dates lists the requested dates that had no value before filling,
	// in requested order.
	Dates []models.Date
}

func (w *FillWarning) String() string {
	return fmt.Sprintf("missing data for dates [%s]; forward filling from previous values",
		strings.Join(models.DateStrings(w.Dates), " "))
}

// Filter applies range and explicit-date selection.
type Filter struct {
	log zerolog.Logger
}

// New creates a Filter logging to log.
func New(log zerolog.Logger) *Filter {
	return &Filter{log: log.With().Str("component", "filter").Logger()}
}

// ByRange keeps observations with start <= date <= end, preserving order.
// A nil bound is open. The input series is not modified.
func (f *Filter) ByRange(series models.Series, start, end *models.Date) models.Series {
	f.log.Info().Str("start_date", optional(start)).Str("end_date", optional(end)).Msg("filtering by date range")

	out := models.Series{ID: series.ID, Observations: make([]models.Observation, 0, series.Len())}
	for _, o := range series.Observations {
		if start != nil && o.Date.Before(*start) {
			continue
		}
		if end != nil && o.Date.After(*end) {
			continue
		}
		out.Observations = append(out.Observations, o)
	}

	f.log.Info().Int("rows", out.Len()).Msg("date range filter complete")
	return out
}

// ByDates returns exactly one row per requested date, in requested order,
// duplicates included. Each row takes the value observed on that exact date
// in series; when the series has several rows for a date the first wins.
//
// Rows left without a value are forward filled and then backward filled,
// walking the result in requested order, and a FillWarning lists them.
// Requesting any date before inception is an error.
func (f *Filter) ByDates(series models.Series, requested []models.Date, inception models.Date) (models.Series, *FillWarning, error) {
	f.log.Info().Int("requested", len(requested)).Msg("filtering by specific dates")

	var early []models.Date
	for _, d := range requested {
		if d.Before(inception) {
			early = append(early, d)
		}
	}
	if len(early) > 0 {
		f.log.Error().Strs("dates", models.DateStrings(early)).Msg("dates before series inception")
		return models.Series{}, nil, errs.InvalidArgument("requested dates [%s] are before series inception date %s",
			strings.Join(models.DateStrings(early), " "), inception)
	}

	byDate := make(map[string]models.Value, series.Len())
	for _, o := range series.Observations {
		key := o.Date.String()
		if _, seen := byDate[key]; !seen {
			byDate[key] = o.Value
		}
	}

	out := models.Series{ID: series.ID, Observations: make([]models.Observation, len(requested))}
	var missing []models.Date
	for i, d := range requested {
		v := byDate[d.String()]
		out.Observations[i] = models.Observation{Date: d, Value: v}
		if !v.Valid {
			missing = append(missing, d)
		}
	}

	var warning *FillWarning
	if len(missing) > 0 {
		warning = &FillWarning{Dates: missing}
		f.log.Warn().Int("missing", len(missing)).Strs("dates", models.DateStrings(missing)).Msg("missing data for dates, forward filling")
		fill(out.Observations)
	}

	f.log.Info().Int("rows", out.Len()).Msg("filtered to requested dates")
	return out, warning, nil
}

// fill carries the last seen value forward, then the next seen value
// backward over whatever leading gap remains.
func fill(obs []models.Observation) {
	var carry models.Value
	for i := range obs {
		if obs[i].Value.Valid {
			carry = obs[i].Value
		} else if carry.Valid {
			obs[i].Value = carry
		}
	}

	carry = models.Missing()
	for i := len(obs) - 1; i >= 0; i-- {
		if obs[i].Value.Valid {
			carry = obs[i].Value
		} else if carry.Valid {
			obs[i].Value = carry
		}
	}
}

func optional(d *models.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
