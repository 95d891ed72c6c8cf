// Package parser turns the two-column CSV delivered by FRED's graph
// download endpoint into a models.Series.
package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/seenimoa/fredseries/internal/errs"
	"github.com/seenimoa/fredseries/pkg/models"
)

// ExpectedColumns is the column count of a series payload: date and value.
const ExpectedColumns = 2

var errNoColumns = errors.New("no columns to parse from payload")

// Parser converts raw payloads into series.
type Parser struct {
	log zerolog.Logger
}

// New creates a Parser logging to log.
func New(log zerolog.Logger) *Parser {
	return &Parser{log: log.With().Str("component", "parser").Logger()}
}

// Parse reads raw as CSV with a header row and exactly two columns. Whatever
// the header says, the first column is the observation date and the second
// the value.
//
// A date that does not parse fails the whole payload. A value that does not
// parse (FRED uses "." for gaps) becomes a missing value and the row is kept.
func (p *Parser) Parse(seriesID, raw string) (models.Series, error) {
	p.log.Info().Str("series_id", seriesID).Msg("parsing CSV data from FRED")

	records, err := readRecords(raw)
	if err != nil {
		p.log.Error().Err(err).Msg("failed to parse CSV")
		return models.Series{}, errs.Wrap(errs.KindMalformedPayload, err, "failed to parse FRED data")
	}

	header := records[0]
	p.log.Debug().Int("rows", len(records)-1).Strs("columns", header).Msg("CSV parsed")
	if len(header) != ExpectedColumns {
		p.log.Error().Int("columns", len(header)).Msg("unexpected column count")
		return models.Series{}, errs.New(errs.KindMalformedPayload,
			"invalid CSV format: expected %d columns, got %d", ExpectedColumns, len(header))
	}

	series := models.Series{
		ID:           seriesID,
		Observations: make([]models.Observation, 0, len(records)-1),
	}
	for i, rec := range records[1:] {
		date, err := models.ParseDate(strings.TrimSpace(rec[0]))
		if err != nil {
			p.log.Error().Int("row", i+1).Str("date", rec[0]).Msg("unparseable date")
			return models.Series{}, errs.Wrap(errs.KindMalformedPayload,
				fmt.Errorf("row %d: %w", i+1, err), "failed to parse FRED data")
		}
		series.Observations = append(series.Observations, models.Observation{
			Date:  date,
			Value: parseValue(rec[1]),
		})
	}

	if earliest, ok := series.MinDate(); ok {
		p.log.Debug().Stringer("min_date", earliest).Msg("date column converted")
	}
	p.log.Info().Int("rows", series.Len()).Msg("successfully parsed rows")
	p.log.Debug().Int("missing", series.MissingCount()).Msg("missing values in value column")
	return series, nil
}

// CheckNotAllMissing fails when the series holds no usable value at all.
func (p *Parser) CheckNotAllMissing(series models.Series) error {
	if series.AllMissing() {
		p.log.Error().Str("series_id", series.ID).Msg("all values in the series are missing")
		return errs.InvalidArgument("all values from FRED are missing for series '%s'", series.ID)
	}
	return nil
}

func readRecords(raw string) ([][]string, error) {
	raw = strings.TrimPrefix(raw, "\ufeff")

	r := csv.NewReader(strings.NewReader(raw))
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errNoColumns
	}
	return records, nil
}

// decimalPattern is the only numeric text accepted: a signed decimal with an
// optional exponent. ParseFloat alone would also take hex floats and "Inf".
var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// parseValue coerces a value cell. Anything that is not a finite decimal
// number is missing.
func parseValue(cell string) models.Value {
	cell = strings.TrimSpace(cell)
	if !decimalPattern.MatchString(cell) {
		return models.Missing()
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return models.Missing()
	}
	return models.Float64(f)
}
