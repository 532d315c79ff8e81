package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/stockpile/internal/host"
	"github.com/ajitpratap0/stockpile/internal/soak"
	"github.com/ajitpratap0/stockpile/pkg/catalog"
	"github.com/ajitpratap0/stockpile/pkg/config"
	"github.com/ajitpratap0/stockpile/pkg/json"
	"github.com/ajitpratap0/stockpile/pkg/logger"
	"github.com/ajitpratap0/stockpile/pkg/prototypes"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "stockpile",
		Short: "Stockpile - keyed object pool host",
		Long: `Stockpile hosts a keyed object pool configured from a YAML catalog of prototypes.
It validates and normalizes catalogs and runs a reproducible borrow/return soak workload
with Prometheus metrics and OpenTelemetry tracing.`,
		SilenceUsage: true,
	}
	root.SetOut(out)

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Stockpile v%s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})
	root.AddCommand(newValidateCmd(), newSortCmd(), newSoakCmd())
	return root
}

// loadConfig reads path through viper and initializes the global logger from
// the logging section.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadViper(path)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Encoding:    cfg.Logging.Encoding,
		Development: cfg.Logging.Development,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

// validateResult is printed by the validate command.
type validateResult struct {
	Name       string         `json:"name"`
	Valid      bool           `json:"valid"`
	Error      string         `json:"error,omitempty"`
	Categories []string       `json:"categories"`
	Catalog    catalog.Report `json:"catalog"`
}

func newValidateCmd() *cobra.Command {
	var configFile string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a pool configuration and its catalog",
		Long: `Validate checks the configuration ranges, resolves every catalog entry to a
prototype and builds the pool manifest without configuring a pool.

Example:
  stockpile validate --config pool.yaml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}

			res := validateResult{Name: cfg.Name, Valid: true}
			if err := cfg.Validate(); err != nil {
				res.Valid, res.Error = false, err.Error()
			} else {
				lib := prototypes.NewLibrary()
				tree, err := catalog.FromConfig(cfg.Catalog, lib.Resolve)
				if err != nil {
					res.Valid, res.Error = false, err.Error()
				} else {
					manifest, rep := tree.Build(logger.Get())
					sorted, _ := tree.Sort(nil)
					res.Categories = sorted.Keys()
					res.Catalog = rep
					if manifest.Len() == 0 {
						res.Valid, res.Error = false, "empty prototype catalog"
					}
				}
			}

			if asJSON {
				if err := json.Write(cmd.OutOrStdout(), res, true); err != nil {
					return err
				}
			} else {
				printValidate(cmd.OutOrStdout(), res)
			}
			if !res.Valid {
				return fmt.Errorf("configuration %q is invalid", configFile)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to pool configuration YAML file (required)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func printValidate(w io.Writer, res validateResult) {
	if !res.Valid {
		fmt.Fprintf(w, "Pool %q: invalid: %s\n", res.Name, res.Error)
		return
	}
	fmt.Fprintf(w, "Pool %q: valid\n", res.Name)
	fmt.Fprintf(w, "  Categories: %d\n", len(res.Categories))
	fmt.Fprintf(w, "  Bindings: %d\n", res.Catalog.Bindings)
	fmt.Fprintf(w, "  Defaulted keys: %d\n", res.Catalog.DefaultedKeys)
	fmt.Fprintf(w, "  Dropped entries: %d\n", res.Catalog.DroppedEntries)
	fmt.Fprintf(w, "  Dropped categories: %d\n", res.Catalog.DroppedCategories)
	fmt.Fprintf(w, "  Duplicates: %d\n", res.Catalog.Duplicates)
}

func newSortCmd() *cobra.Command {
	var configFile, output string

	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Normalize and sort a pool catalog",
		Long: `Sort drops entries without a prototype and categories left empty, fills in
default entry keys, orders categories and entries by key and writes the
configuration back.

Example:
  stockpile sort --config pool.yaml --output pool.sorted.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if err := config.Load(configFile, cfg); err != nil {
				return err
			}

			lib := prototypes.NewLibrary()
			tree, err := catalog.FromConfig(cfg.Catalog, lib.Resolve)
			if err != nil {
				return err
			}
			sorted, rep := tree.Sort(logger.Get())
			cfg.Catalog = sorted.ToConfig(lib.Describe)

			if output == "" {
				output = configFile
			}
			if err := config.Save(output, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sorted %d categories into %s (defaulted %d keys, dropped %d entries, %d categories)\n",
				len(sorted), output, rep.DefaultedKeys, rep.DroppedEntries, rep.DroppedCategories)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to pool configuration YAML file (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (defaults to rewriting the input)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func newSoakCmd() *cobra.Command {
	var configFile, metricsAddr, cpuProfile, memProfile string
	var rounds int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "soak",
		Short: "Run a borrow/return workload against a configured pool",
		Long: `Soak builds the pool described by the configuration, configures and prewarms it,
and runs a reproducible borrow/return workload that checks instance reuse.

Example:
  stockpile soak --config pool.yaml --rounds 10000 --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("rounds") {
				cfg.Soak.Rounds = rounds
			}
			if metricsAddr != "" {
				cfg.Metrics.Enabled = true
				cfg.Metrics.Address = metricsAddr
			}

			stopProfiling, err := startProfiling(cpuProfile, memProfile)
			if err != nil {
				return err
			}
			runErr := runSoak(cmd.Context(), cmd.OutOrStdout(), cfg, asJSON)
			if err := stopProfiling(); err != nil && runErr == nil {
				runErr = err
			}
			return runErr
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to pool configuration YAML file (required)")
	cmd.Flags().IntVar(&rounds, "rounds", 0, "Number of rounds (overrides soak.rounds)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().StringVar(&cpuProfile, "cpuprofile", "", "Write a CPU profile of the run to file")
	cmd.Flags().StringVar(&memProfile, "memprofile", "", "Write a heap profile taken after the run to file")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func runSoak(ctx context.Context, out io.Writer, cfg *config.Config, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Soak.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Soak.Timeout)
		defer cancel()
	}

	ctx = context.WithValue(ctx, logger.RunIDKey, fmt.Sprintf("%s-%d", cfg.Name, time.Now().UnixNano()))
	log := logger.WithContext(ctx).With(zap.String("component", "stockpile-cli"))
	defer func() { _ = logger.Sync() }()

	h, err := host.New(ctx, cfg, host.Options{Log: log})
	if err != nil {
		return err
	}
	defer func() {
		if err := h.Close(context.Background()); err != nil {
			log.Warn("failed to flush traces", zap.Error(err))
		}
	}()
	h.Tracer.SetGlobal()

	if !h.Pool.Configured() {
		log.Info("auto_initialize disabled, configuring pool for soak")
		if err := h.Initialize(ctx); err != nil {
			return err
		}
	}

	if cfg.Metrics.Enabled {
		serveCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := h.Serve(serveCtx, cfg.Metrics.Address); err != nil {
				log.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	runner := &soak.Runner{
		Pool:    h.Pool,
		Keys:    h.Pool.Keys(),
		Rounds:  cfg.Soak.Rounds,
		Hold:    cfg.Soak.Hold,
		Seed:    cfg.Soak.Seed,
		Tracer:  h.Tracer,
		Metrics: h.Metrics,
		Log:     log,
	}
	rep, err := runner.Run(ctx)
	if rep != nil {
		if asJSON {
			if werr := json.Write(out, rep, true); werr != nil {
				return werr
			}
		} else {
			printSoak(out, rep)
		}
	}
	return err
}

func printSoak(w io.Writer, rep *soak.Report) {
	fmt.Fprintf(w, "Soak of pool %q finished in %s\n", rep.Stats.Name, rep.Duration)
	fmt.Fprintf(w, "  Rounds: %d\n", rep.Rounds)
	fmt.Fprintf(w, "  Borrows: %d (hits %d, misses %d)\n", rep.Borrows, rep.Stats.Hits, rep.Stats.Misses)
	fmt.Fprintf(w, "  Returns: %d\n", rep.Returns)
	fmt.Fprintf(w, "  Spawned: %d\n", rep.Stats.Spawned)
	fmt.Fprintf(w, "  Idle/Active: %d/%d\n", rep.Stats.Idle, rep.Stats.Active)
	fmt.Fprintf(w, "  RSS: %d -> %d bytes\n", rep.Before.RSS, rep.After.RSS)
}
