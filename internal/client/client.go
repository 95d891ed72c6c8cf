// Package client retrieves a single FRED series end to end. A request runs
// as one sequential pipeline:
//
//	validating -> fetching -> parsing -> checking_missing -> [filtering] -> done
//
// Any stage may move the request to failed; the stage's error is returned to
// the caller unchanged and no partial result accompanies it. Requests share
// no mutable state, so one Client may serve concurrent callers.
package client

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/seenimoa/fredseries/internal/errs"
	"github.com/seenimoa/fredseries/internal/filter"
	"github.com/seenimoa/fredseries/internal/parser"
	"github.com/seenimoa/fredseries/internal/provider"
	"github.com/seenimoa/fredseries/internal/validate"
	"github.com/seenimoa/fredseries/pkg/models"
)

// Stage is a state of the request pipeline.
type Stage string

const (
	StageValidating      Stage = "validating"
	StageFetching        Stage = "fetching"
	StageParsing         Stage = "parsing"
	StageCheckingMissing Stage = "checking_missing"
	StageFiltering       Stage = "filtering"
	StageDone            Stage = "done"
	StageFailed          Stage = "failed"
)

// Params is the raw request as supplied by a caller. Fields are untyped so
// that input decoded from JSON or flags is checked here; nil means absent.
//
// SeriesID must be a string. Dates must be a list of YYYY-MM-DD strings and
// excludes StartDate/EndDate, which must be YYYY-MM-DD strings.
type Params struct {
	SeriesID  any
	Dates     any
	StartDate any
	EndDate   any
}

// Result is a successfully retrieved series.
type Result struct {
	models.Series
	// Selector is the kind of date selection that was applied.
	Selector models.SelectorKind `json:"-"`
	// FilledDates lists requested dates that had no value and were filled
	// from neighbouring rows. Only explicit-date requests fill.
	FilledDates []models.Date `json:"filled_dates,omitempty"`
	// Warnings carries non-fatal diagnostics for the caller.
	Warnings []string `json:"warnings,omitempty"`
}

// Metrics receives request telemetry. *metrics.Recorder implements it.
type Metrics interface {
	RecordRequest(selector, outcome string)
	RecordStage(stage string, d time.Duration)
	RecordFilled(n int)
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics sets the telemetry sink.
func WithMetrics(m Metrics) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithStageHook registers fn to be called on every stage transition. fn
// must be safe for concurrent use if the Client is.
func WithStageHook(fn func(requestID string, stage Stage)) Option {
	return func(c *Client) { c.hook = fn }
}

// Client runs series requests against one fetcher.
type Client struct {
	fetcher provider.Fetcher
	log     zerolog.Logger
	metrics Metrics
	hook    func(string, Stage)
}

// New creates a Client using fetcher as its data source.
func New(fetcher provider.Fetcher, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		fetcher: fetcher,
		log:     log,
		metrics: noopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log.Debug().Str("provider", fetcher.Info().Name).Msg("client initialized")
	return c
}

// Get is GetSeries for callers that already hold typed values.
func (c *Client) Get(ctx context.Context, seriesID string, sel models.DateSelector) (*Result, error) {
	p := Params{SeriesID: seriesID}
	switch sel.Kind() {
	case models.SelectDates:
		p.Dates = models.DateStrings(sel.Dates())
	case models.SelectRange:
		start, end := sel.Bounds()
		if start != nil {
			p.StartDate = start.String()
		}
		if end != nil {
			p.EndDate = end.String()
		}
	}
	return c.GetSeries(ctx, p)
}

// GetSeries validates p, fetches and parses the series, and applies the
// requested date selection.
func (c *Client) GetSeries(ctx context.Context, p Params) (*Result, error) {
	r := &request{
		id:      uuid.NewString(),
		client:  c,
		started: time.Now(),
	}
	r.log = c.log.With().Str("request_id", r.id).Logger()
	r.log.Info().Interface("series_id", p.SeriesID).Msg("getting series")
	r.log.Debug().
		Interface("dates", p.Dates).
		Interface("start_date", p.StartDate).
		Interface("end_date", p.EndDate).
		Msg("parameters")

	res, err := r.run(ctx, p)
	if err != nil {
		r.enter(StageFailed)
		c.metrics.RecordRequest(r.selector.String(), string(errs.KindOf(err)))
		return nil, err
	}
	r.enter(StageDone)
	c.metrics.RecordRequest(r.selector.String(), "ok")
	r.log.Info().Int("rows", res.Len()).Str("series_id", res.ID).Dur("elapsed", time.Since(r.started)).Msg("successfully retrieved series")
	return res, nil
}

// request is the state of one pipeline run.
type request struct {
	id       string
	client   *Client
	log      zerolog.Logger
	started  time.Time
	stage    Stage
	since    time.Time
	selector models.SelectorKind
}

func (r *request) enter(s Stage) {
	now := time.Now()
	if r.stage != "" {
		r.client.metrics.RecordStage(string(r.stage), now.Sub(r.since))
	}
	r.stage, r.since = s, now
	r.log.Debug().Str("stage", string(s)).Msg("stage")
	if r.client.hook != nil {
		r.client.hook(r.id, s)
	}
}

func (r *request) run(ctx context.Context, p Params) (*Result, error) {
	v := validate.New(r.log)
	ps := parser.New(r.log)
	flt := filter.New(r.log)

	r.enter(StageValidating)
	seriesID, err := v.SeriesID(p.SeriesID)
	if err != nil {
		r.log.Error().Err(err).Msg("validation failed")
		return nil, err
	}
	sel, err := v.DateParameters(p.Dates, p.StartDate, p.EndDate)
	if err != nil {
		r.log.Error().Err(err).Msg("validation failed")
		return nil, err
	}
	r.selector = sel.Kind()
	r.log = r.log.With().Str("series_id", seriesID).Logger()

	// Explicit dates need the whole series for the inception check.
	start, end := sel.Bounds()

	r.enter(StageFetching)
	raw, err := r.client.fetcher.Fetch(ctx, seriesID, start, end)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to fetch data")
		return nil, err
	}

	r.enter(StageParsing)
	series, err := ps.Parse(seriesID, raw)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to parse data")
		return nil, err
	}

	r.enter(StageCheckingMissing)
	if err := ps.CheckNotAllMissing(series); err != nil {
		r.log.Error().Err(err).Msg("data validation failed")
		return nil, err
	}

	res := &Result{Selector: sel.Kind()}
	switch sel.Kind() {
	case models.SelectDates:
		r.enter(StageFiltering)
		inception, _ := series.MinDate()
		r.log.Debug().Stringer("inception", inception).Msg("series starts at")
		filtered, warning, err := flt.ByDates(series, sel.Dates(), inception)
		if err != nil {
			r.log.Error().Err(err).Msg("date filtering failed")
			return nil, err
		}
		series = filtered
		if warning != nil {
			res.FilledDates = warning.Dates
			res.Warnings = append(res.Warnings, warning.String())
			r.client.metrics.RecordFilled(len(warning.Dates))
		}
	case models.SelectRange:
		r.enter(StageFiltering)
		series = flt.ByRange(series, start, end)
	}

	res.Series = series
	return res, nil
}

type noopMetrics struct{}

func (noopMetrics) RecordRequest(string, string) {}
func (noopMetrics) RecordStage(string, time.Duration) {}
func (noopMetrics) RecordFilled(int) {}
