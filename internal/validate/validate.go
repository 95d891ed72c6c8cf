// Package validate checks caller-supplied request parameters before any I/O
// happens. Inputs arrive as untyped values (decoded JSON, query strings, CLI
// flags) so that a value of the wrong type is reported as a type mismatch
// rather than a format problem. Successful checks return the parsed value.
package validate

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/seenimoa/fredseries/internal/errs"
	"github.com/seenimoa/fredseries/pkg/models"
)

// Parameter labels used in messages.
const (
	LabelSeriesID  = "series_id"
	LabelDates     = "dates"
	LabelStartDate = "start_date"
	LabelEndDate   = "end_date"
)

// Validator runs the parameter checks and reports them to its logger.
type Validator struct {
	log zerolog.Logger
}

// New creates a Validator logging to log.
func New(log zerolog.Logger) *Validator {
	return &Validator{log: log.With().Str("component", "validator").Logger()}
}

// SeriesID checks that value is a non-blank string.
func (v *Validator) SeriesID(value any) (string, error) {
	v.log.Debug().Interface(LabelSeriesID, value).Msg("validating series_id")

	s, ok := asString(value)
	if !ok {
		v.log.Error().Str("type", fmt.Sprintf("%T", value)).Msg("series_id must be string")
		return "", errs.TypeMismatch(LabelSeriesID, "string", value)
	}
	if strings.TrimSpace(s) == "" {
		v.log.Error().Msg("series_id is empty")
		return "", errs.InvalidArgument("series_id cannot be empty")
	}
	return s, nil
}

// DateFormat checks that value is a string holding exactly YYYY-MM-DD and a
// real calendar day. label names the parameter in messages.
func (v *Validator) DateFormat(value any, label string) (models.Date, error) {
	v.log.Debug().Interface(label, value).Msg("validating date")

	s, ok := asString(value)
	if !ok {
		v.log.Error().Str("param", label).Str("type", fmt.Sprintf("%T", value)).Msg("date must be string")
		return models.Date{}, errs.TypeMismatch(label, "string", value)
	}
	d, err := models.ParseDate(s)
	if err != nil {
		v.log.Error().Str("param", label).Str("value", s).Msg("invalid date format")
		return models.Date{}, errs.InvalidArgument("%s must be in YYYY-MM-DD format, got '%s'", label, s)
	}
	return d, nil
}

// DatesList checks that value is a non-empty list of valid dates. Elements
// are checked in index order and the first failure is returned.
func (v *Validator) DatesList(value any) ([]models.Date, error) {
	items, ok := asList(value)
	if !ok {
		v.log.Error().Str("type", fmt.Sprintf("%T", value)).Msg("dates must be list")
		return nil, errs.TypeMismatch(LabelDates, "list", value)
	}
	v.log.Debug().Int("count", len(items)).Msg("validating dates list")

	if len(items) == 0 {
		v.log.Error().Msg("dates list is empty")
		return nil, errs.InvalidArgument("dates list cannot be empty")
	}

	dates := make([]models.Date, 0, len(items))
	for i, item := range items {
		d, err := v.DateFormat(item, fmt.Sprintf("%s[%d]", LabelDates, i))
		if err != nil {
			v.log.Error().Int("index", i).Interface("date", item).Msg("invalid date in list")
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// DateParameters validates the date-related request parameters together and
// returns the selector they describe. A nil parameter is absent.
//
// Explicit dates exclude both range bounds. With no parameters at all the
// selector covers the full series.
func (v *Validator) DateParameters(dates, start, end any) (models.DateSelector, error) {
	v.log.Info().Msg("validating date parameters")

	hasDates, hasStart, hasEnd := !absent(dates), !absent(start), !absent(end)

	if hasDates && (hasStart || hasEnd) {
		v.log.Error().Msg("cannot specify both 'dates' and 'start_date/end_date'")
		return models.DateSelector{}, errs.InvalidArgument(
			"cannot specify both 'dates' list and 'start_date'/'end_date'; use one or the other")
	}

	if hasDates {
		list, err := v.DatesList(dates)
		if err != nil {
			return models.DateSelector{}, err
		}
		v.log.Info().Msg("date parameters validation passed")
		return models.ExplicitDates(list), nil
	}

	var startDate, endDate *models.Date
	if hasStart {
		d, err := v.DateFormat(start, LabelStartDate)
		if err != nil {
			return models.DateSelector{}, err
		}
		startDate = &d
	}
	if hasEnd {
		d, err := v.DateFormat(end, LabelEndDate)
		if err != nil {
			return models.DateSelector{}, err
		}
		endDate = &d
	}

	if startDate != nil && endDate != nil && startDate.After(*endDate) {
		v.log.Error().Stringer(LabelStartDate, startDate).Stringer(LabelEndDate, endDate).Msg("start_date is after end_date")
		return models.DateSelector{}, errs.InvalidArgument(
			"start_date (%s) cannot be after end_date (%s)", startDate, endDate)
	}

	v.log.Info().Msg("date parameters validation passed")
	return models.Range(startDate, endDate), nil
}

// absent treats untyped nil and typed nil pointers/slices as "not supplied".
func absent(value any) bool {
	switch x := value.(type) {
	case nil:
		return true
	case *string:
		return x == nil
	case []string:
		return x == nil
	case []any:
		return x == nil
	}
	return false
}

func asString(value any) (string, bool) {
	switch x := value.(type) {
	case string:
		return x, true
	case *string:
		if x == nil {
			return "", false
		}
		return *x, true
	}
	return "", false
}

func asList(value any) ([]any, bool) {
	switch x := value.(type) {
	case []any:
		return x, true
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}
