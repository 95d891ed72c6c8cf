package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/fredseries/internal/client"
	"github.com/seenimoa/fredseries/internal/errs"
)

// getOptions carries the get command's flags. Unset flags stay nil in the
// request so that the validator sees them as absent.
type getOptions struct {
	Start    *string
	End      *string
	Dates    []string
	JSON     bool
	Parallel int
}

func (o getOptions) params(id string) client.Params {
	p := client.Params{SeriesID: id}
	if o.Dates != nil {
		p.Dates = o.Dates
	}
	if o.Start != nil {
		p.StartDate = *o.Start
	}
	if o.End != nil {
		p.EndDate = *o.End
	}
	return p
}

// seriesOutcome is one identifier's result in JSON output.
type seriesOutcome struct {
	SeriesID string         `json:"series_id"`
	Result   *client.Result `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
	Kind     string         `json:"kind,omitempty"`
}

// runGet retrieves every id concurrently and prints the results in argument
// order. A failed id does not cancel the others; the first failure is
// returned after everything has been printed.
func runGet(ctx context.Context, c *client.Client, ids []string, opts getOptions, out io.Writer) error {
	results := make([]*client.Result, len(ids))
	failures := make([]error, len(ids))

	var g errgroup.Group
	if opts.Parallel > 0 {
		g.SetLimit(opts.Parallel)
	}
	for i, id := range ids {
		g.Go(func() error {
			results[i], failures[i] = c.GetSeries(ctx, opts.params(id))
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	if opts.JSON {
		if err := writeJSONOutcomes(out, ids, results, failures); err != nil {
			return err
		}
	} else {
		for i, id := range ids {
			if i > 0 {
				fmt.Fprintln(out)
			}
			if failures[i] != nil {
				fmt.Fprintf(out, "%s: error: %v\n", id, failures[i])
				continue
			}
			if err := writeTable(out, results[i]); err != nil {
				return err
			}
		}
	}

	for i, err := range failures {
		if err != nil {
			return fmt.Errorf("%s: %w", ids[i], err)
		}
	}
	return nil
}

func writeJSONOutcomes(out io.Writer, ids []string, results []*client.Result, failures []error) error {
	outcomes := make([]seriesOutcome, len(ids))
	for i, id := range ids {
		outcomes[i] = seriesOutcome{SeriesID: id, Result: results[i]}
		if failures[i] != nil {
			outcomes[i].Error = failures[i].Error()
			outcomes[i].Kind = string(errs.KindOf(failures[i]))
		}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(outcomes)
}

func writeTable(out io.Writer, res *client.Result) error {
	fmt.Fprintf(out, "%s (%d observations, %s)\n", res.ID, res.Len(), res.Selector)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tVALUE")
	for _, o := range res.Observations {
		fmt.Fprintf(tw, "%s\t%s\n", o.Date, o.Value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	if n := res.MissingCount(); n > 0 {
		fmt.Fprintf(out, "%d of %d values missing\n", n, res.Len())
	}
	return nil
}
