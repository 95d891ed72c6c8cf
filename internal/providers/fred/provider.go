// Package fred implements the FRED (Federal Reserve Economic Data) fetcher.
// Series are downloaded as CSV from the public graph endpoint, which needs
// no API key:
//
//	https://fred.stlouisfed.org/graph/fredgraph.csv?id=DTB3
//
// The payload has a header row and two columns, observation date and value.
package fred

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/fredseries/internal/errs"
	"github.com/seenimoa/fredseries/internal/infra"
	"github.com/seenimoa/fredseries/internal/provider"
	"github.com/seenimoa/fredseries/pkg/models"
)

const (
	providerName = "fred"
	// DefaultBaseURL is the graph CSV download endpoint.
	DefaultBaseURL = "https://fred.stlouisfed.org/graph/fredgraph.csv"
	// maxPayloadLen caps how much of a response is read.
	maxPayloadLen = 64 << 20
)

// Options configures the fetcher.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	RateLimit float64 // requests per second; <= 0 disables limiting
	RateBurst int
}

// Provider implements provider.Fetcher for FRED.
type Provider struct {
	baseURL string
	client  *infra.Client
	log     zerolog.Logger
}

// New creates a FRED fetcher.
func New(opts Options, log zerolog.Logger) *Provider {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &Provider{
		baseURL: base,
		client:  infra.NewClient(opts.Timeout, opts.UserAgent, infra.NewRateLimiter(opts.RateLimit, opts.RateBurst)),
		log:     log.With().Str("component", "fetcher").Str("provider", providerName).Logger(),
	}
}

// Info returns metadata about the fetcher.
func (p *Provider) Info() provider.Info {
	return provider.Info{
		Name:        providerName,
		Description: "Federal Reserve Economic Data - graph CSV download",
		Website:     "https://fred.stlouisfed.org",
	}
}

// Fetch downloads the CSV payload for seriesID. start and end are passed
// to FRED as cosd/coed.
func (p *Provider) Fetch(ctx context.Context, seriesID string, start, end *models.Date) (string, error) {
	p.log.Info().Str("series_id", seriesID).Msg("fetching data")

	u := p.seriesURL(seriesID, start, end)
	p.log.Debug().Str("url", u).Msg("request URL")

	body, status, err := p.client.DoGet(ctx, u, nil)
	if err != nil {
		return "", p.classify(seriesID, err)
	}
	defer body.Close()
	p.log.Debug().Int("status", status).Msg("response status code")

	data, err := io.ReadAll(io.LimitReader(body, maxPayloadLen))
	if err != nil {
		return "", p.classify(seriesID, err)
	}
	text := string(data)

	if err := provider.CheckPayload(seriesID, text); err != nil {
		p.log.Error().Err(err).Int("length", len(text)).Msg("invalid or empty response")
		return "", err
	}

	p.log.Info().Str("series_id", seriesID).Int("length", len(text)).Msg("successfully fetched data")
	p.log.Debug().Str("head", head(text, 200)).Msg("response preview")
	return text, nil
}

func (p *Provider) seriesURL(seriesID string, start, end *models.Date) string {
	q := url.Values{}
	q.Set("id", seriesID)
	if start != nil {
		q.Set("cosd", start.String())
	}
	if end != nil {
		q.Set("coed", end.String())
	}
	return p.baseURL + "?" + q.Encode()
}

// classify maps transport failures onto the error taxonomy.
func (p *Provider) classify(seriesID string, err error) error {
	var httpErr *infra.ErrHTTP
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == http.StatusNotFound {
			p.log.Error().Str("series_id", seriesID).Msg("series not found (404)")
			return errs.New(errs.KindNotFound, "series '%s' not found on FRED", seriesID)
		}
		p.log.Error().Err(err).Msg("request failed")
		p.log.Debug().Str("body", head(httpErr.Body, 200)).Msg("error response preview")
		return errs.Wrap(errs.KindConnectivity, err, "error fetching data from FRED")
	}

	if isTimeout(err) {
		p.log.Error().Str("series_id", seriesID).Msg("timeout while fetching")
		return errs.Wrap(errs.KindConnectivity, err, "timeout connecting to FRED for series '%s'", seriesID)
	}

	p.log.Error().Err(err).Msg("connection error")
	return errs.Wrap(errs.KindConnectivity, err, "failed to connect to FRED")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
