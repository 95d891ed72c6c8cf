// Package local implements a fetcher backed by a directory of CSV files
// named <SERIES_ID>.csv, laid out exactly as FRED's graph download. It
// serves offline runs and fixtures.
package local

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/seenimoa/fredseries/internal/errs"
	"github.com/seenimoa/fredseries/internal/provider"
	"github.com/seenimoa/fredseries/pkg/models"
)

const providerName = "local"

// Provider reads series from a directory.
type Provider struct {
	fsys fs.FS
	root string
	log  zerolog.Logger
}

// New creates a fetcher reading from dir.
func New(dir string, log zerolog.Logger) *Provider {
	return NewFS(os.DirFS(dir), dir, log)
}

// NewFS creates a fetcher over an arbitrary file system. root is only used
// in messages.
func NewFS(fsys fs.FS, root string, log zerolog.Logger) *Provider {
	return &Provider{
		fsys: fsys,
		root: root,
		log:  log.With().Str("component", "fetcher").Str("provider", providerName).Logger(),
	}
}

// Info returns metadata about the fetcher.
func (p *Provider) Info() provider.Info {
	return provider.Info{
		Name:        providerName,
		Description: "CSV files from " + p.root,
	}
}

// Fetch returns the file contents for seriesID. The whole file is always
// returned; start and end are left to the range filter.
func (p *Provider) Fetch(ctx context.Context, seriesID string, _, _ *models.Date) (string, error) {
	p.log.Info().Str("series_id", seriesID).Msg("fetching data")

	if err := ctx.Err(); err != nil {
		return "", errs.Wrap(errs.KindConnectivity, err, "failed to read series '%s'", seriesID)
	}
	if !validName(seriesID) {
		return "", errs.New(errs.KindNotFound, "series '%s' not found in %s", seriesID, p.root)
	}

	data, err := fs.ReadFile(p.fsys, seriesID+".csv")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.log.Error().Str("series_id", seriesID).Msg("series file not found")
			return "", errs.New(errs.KindNotFound, "series '%s' not found in %s", seriesID, p.root)
		}
		p.log.Error().Err(err).Msg("read failed")
		return "", errs.Wrap(errs.KindConnectivity, err, "failed to read series '%s'", seriesID)
	}

	text := string(data)
	if err := provider.CheckPayload(seriesID, text); err != nil {
		p.log.Error().Err(err).Msg("invalid payload")
		return "", err
	}
	return text, nil
}

// validName rejects identifiers that would escape the directory.
func validName(id string) bool {
	return fs.ValidPath(id) && !strings.ContainsAny(id, `/\`) && filepath.Base(id) == id
}
