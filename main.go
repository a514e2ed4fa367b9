// main.go
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appconfig "github.com/gewnthar/ideatrack/config"
	"github.com/gewnthar/ideatrack/productplan"
	"github.com/gewnthar/ideatrack/sla"
	"github.com/gewnthar/ideatrack/storage"
)

var (
	flagConfig  string
	flagEnv     string
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:           "ideatrack",
		Short:         "SLA compliance tracking for externally sourced ideas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "config.yaml", "path to config.yaml")
	root.PersistentFlags().StringVar(&flagEnv, "env", "env/.env", "path to env file with secrets")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(initCmd(), updateCmd(), summaryCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger; --verbose switches on debug output.
func newLogger() (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if flagVerbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.Sugar(), nil
}

// setup loads configuration and wires the manager, store and source.
func setup(cmd *cobra.Command) (*sla.Manager, storage.Store, *productplan.Client, func() error, error) {
	log, err := newLogger()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	cfg, err := appconfig.Load(flagConfig, flagEnv)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if cfg.API.Token == "" {
		return nil, nil, nil, nil, fmt.Errorf("PRODUCTPLAN_API_TOKEN is not set; add it to %s", flagEnv)
	}

	store, closeStore, err := storage.Resolve(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	mgr := sla.NewManager(engineConfig(cfg), log)
	client := productplan.NewClient(cfg.API.BaseURL, cfg.API.Token, log)
	return mgr, store, client, closeStore, nil
}

// engineConfig converts the loaded file configuration into the engine's
// explicit construction-time value.
func engineConfig(cfg *appconfig.Config) sla.Config {
	return sla.Config{
		ResponseWindowDays: cfg.SLA.ResponseWindowDays,
		RoadmapWindowDays:  cfg.SLA.RoadmapWindowDays,
		InitialStatus:      cfg.SLA.InitialStatus,
		TerminalStatuses:   cfg.SLA.TerminalStatuses,
		LookbackDays:       cfg.SLA.LookbackDays,
		URLPrefix:          cfg.API.URLPrefix,
		Filters: sla.FilterConfig{
			CreatedAfter:        cfg.Filters.CreatedAfterDate,
			ExcludeSource:       cfg.Filters.ExcludeSource,
			ExcludeSourceBefore: cfg.Filters.ExcludeSourceBeforeDate,
			ExcludeCustomer:     cfg.Filters.ExcludeCustomer,
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Full resync: rebuild the tracking table from every eligible record",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, store, src, closeStore, err := setup(cmd)
			if err != nil {
				return err
			}
			defer closeStore()
			return mgr.RunInit(cmd.Context(), store, src)
		},
	}
}

func updateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Incremental pass: reconcile recently changed records into the table",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, store, src, closeStore, err := setup(cmd)
			if err != nil {
				return err
			}
			defer closeStore()
			return mgr.RunUpdate(cmd.Context(), store, src)
		},
	}
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print a compliance breakdown of the stored table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(flagConfig, flagEnv)
			if err != nil {
				return err
			}
			store, closeStore, err := storage.Resolve(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			table, err := store.Read()
			if err != nil {
				return err
			}

			statusCounts := map[string]int{}
			var respMet, roadMet int
			for _, row := range table.Rows {
				status := row.Status
				if status == "" {
					status = "(no status)"
				}
				statusCounts[status]++
				if row.ResponseMet {
					respMet++
				}
				if row.RoadmapMet {
					roadMet++
				}
			}

			fmt.Printf("Tracking table: %s\n", store.Location())
			fmt.Printf("Rows: %d\n\nStatus breakdown:\n", len(table.Rows))
			statuses := make([]string, 0, len(statusCounts))
			for s := range statusCounts {
				statuses = append(statuses, s)
			}
			sort.Strings(statuses)
			for _, s := range statuses {
				fmt.Printf("  %s: %d\n", s, statusCounts[s])
			}
			if n := len(table.Rows); n > 0 {
				fmt.Printf("\nResponse SLA met: %d/%d (%.1f%%)\n", respMet, n, float64(respMet)/float64(n)*100)
				fmt.Printf("Roadmap SLA met:  %d/%d (%.1f%%)\n", roadMet, n, float64(roadMet)/float64(n)*100)
			}
			return nil
		},
	}
}
