// Package provider defines the contract between the series pipeline and a
// data source. A Fetcher returns raw CSV text for one series; it does not
// parse it. Implementations live under internal/providers.
package provider

import (
	"context"
	"fmt"

	"github.com/seenimoa/fredseries/pkg/models"
)

// Info holds metadata about a registered fetcher.
type Info struct {
	Name        string `json:"name"`        // e.g., "fred", "local"
	Description string `json:"description"` // human-readable description
	Website     string `json:"website,omitempty"`
}

// Fetcher retrieves the raw two-column CSV payload for a series.
//
// Implementations must classify failures with the errs package so callers
// can tell them apart:
//   - errs.KindNotFound         the series identifier is unknown to the source
//   - errs.KindConnectivity     timeout or transport failure
//   - errs.KindMalformedPayload empty, too short, or an HTML page instead of CSV
type Fetcher interface {
	// Info returns metadata about this fetcher.
	Info() Info

	// Fetch returns the payload for seriesID. start and end, when non-nil,
	// ask the source to bound the observations; callers must not rely on
	// the source honouring them.
	Fetch(ctx context.Context, seriesID string, start, end *models.Date) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, seriesID string, start, end *models.Date) (string, error)

func (f FetcherFunc) Info() Info { return Info{Name: "func", Description: "function-backed fetcher"} }

func (f FetcherFunc) Fetch(ctx context.Context, seriesID string, start, end *models.Date) (string, error) {
	return f(ctx, seriesID, start, end)
}

// ErrProviderNotFound is returned when a requested fetcher is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}
