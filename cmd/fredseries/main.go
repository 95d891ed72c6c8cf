// fredseries retrieves economic time series from FRED.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seenimoa/fredseries/api"
	"github.com/seenimoa/fredseries/internal/client"
	"github.com/seenimoa/fredseries/internal/config"
	"github.com/seenimoa/fredseries/internal/logging"
	"github.com/seenimoa/fredseries/internal/metrics"
	"github.com/seenimoa/fredseries/internal/providers"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, populated by the root command.
var (
	cfg    *config.Config
	logger zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fredseries",
	Short: "Retrieve economic time series from FRED",
	Long: `fredseries downloads a series from the Federal Reserve Economic Data
service, validates and parses it, and optionally narrows it to a date range
or to an explicit list of dates with gap filling.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		if src, _ := cmd.Flags().GetString("source"); src != "" {
			cfg.Source.Kind = src
		}
		if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
			cfg.Source.Dir = dir
		}

		logger, err = logging.New(cfg.Logging, os.Stderr)
		if err != nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("source", "", "default series source override (fred, local)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory of <ID>.csv files for the local source")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "fredseries %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Get Command ---

var getCmd = &cobra.Command{
	Use:   "get [series_id...]",
	Short: "Retrieve one or more series",
	Long: `Retrieve series by identifier. Each identifier is an independent request.

  fredseries get DTB3
  fredseries get DTB3 --start 2020-01-01 --end 2020-12-31
  fredseries get DTB3 GDP --dates 2020-01-01,2020-06-01 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := providers.NewRegistry(cfg, logger)
		if err != nil {
			return err
		}
		f, err := reg.Get("")
		if err != nil {
			return err
		}
		c := client.New(f, logger)

		opts := getOptions{}
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Parallel, _ = cmd.Flags().GetInt("parallel")
		if cmd.Flags().Changed("start") {
			start, _ := cmd.Flags().GetString("start")
			opts.Start = &start
		}
		if cmd.Flags().Changed("end") {
			end, _ := cmd.Flags().GetString("end")
			opts.End = &end
		}
		if cmd.Flags().Changed("dates") {
			opts.Dates, _ = cmd.Flags().GetStringSlice("dates")
		}
		return runGet(cmd.Context(), c, args, opts, cmd.OutOrStdout())
	},
}

func init() {
	getCmd.Flags().String("start", "", "inclusive start date (YYYY-MM-DD)")
	getCmd.Flags().String("end", "", "inclusive end date (YYYY-MM-DD)")
	getCmd.Flags().StringSlice("dates", nil, "explicit dates, comma separated (YYYY-MM-DD)")
	getCmd.Flags().Bool("json", false, "print JSON instead of a table")
	getCmd.Flags().Int("parallel", 4, "maximum concurrent requests")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := providers.NewRegistry(cfg, logger)
		if err != nil {
			return err
		}

		promReg := prometheus.NewRegistry()
		promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		srv := api.NewServer(cfg, reg, logger, promReg, client.WithMetrics(metrics.New(promReg)))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "Starting fredseries API server on %s (source: %s)\n", cfg.API.Addr(), reg.Default())
		return srv.ListenAndServe(ctx, cfg.API.Addr())
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and available sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := providers.NewRegistry(cfg, logger)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  fredseries status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Configuration:")
		fmt.Fprintf(out, "    FRED URL:      %s\n", cfg.FRED.BaseURL)
		fmt.Fprintf(out, "    Timeout:       %s\n", cfg.FRED.Timeout)
		fmt.Fprintf(out, "    Rate limit:    %.1f/s (burst %d)\n", cfg.FRED.RateLimit, cfg.FRED.RateBurst)
		fmt.Fprintf(out, "    API Server:    %s\n", cfg.API.Addr())
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Sources:")
		for _, info := range reg.List() {
			marker := " "
			if info.Name == reg.Default() {
				marker = "*"
			}
			fmt.Fprintf(out, "   %s %-8s %s\n", marker, info.Name, info.Description)
		}
		fmt.Fprintln(out, "═══════════════════════════════════════")
		return nil
	},
}
