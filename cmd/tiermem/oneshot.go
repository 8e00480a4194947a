package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/flemzord/tiermem/internal/cache"
	"github.com/flemzord/tiermem/internal/config"
	"github.com/flemzord/tiermem/internal/metrics"
	"github.com/flemzord/tiermem/internal/migrate"
	"github.com/flemzord/tiermem/internal/retrieval"
	"github.com/flemzord/tiermem/modules/mcp"
	"github.com/flemzord/tiermem/modules/store/sqlite"
	"github.com/flemzord/tiermem/pkg/app"
)

// env bundles the collaborators a one-shot command needs outside the module
// lifecycle.
type env struct {
	cfg      *config.Config
	resolver *retrieval.Resolver
	agg      *metrics.Aggregator
	migrator *migrate.Adapter
	db       *sql.DB
}

func (e *env) close() {
	if err := e.agg.Save(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: saving stats:", err)
	}
	_ = e.db.Close()
}

// openEnv loads configuration, opens the tier store directly, and wires the
// resolver for a single command invocation.
func openEnv(cfgPath, dataDir string) (*env, error) {
	if cfgPath == "" {
		resolved, err := app.ResolveConfigPath()
		if err != nil {
			return nil, err
		}
		cfgPath = resolved
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	if dataDir == "" {
		dataDir = app.DefaultDataDir()
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", dataDir, err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	dbPath := sqlite.DefaultPath(dataDir)
	if node, ok := cfg.Modules["store.sqlite"]; ok {
		var sc sqlite.Config
		if err := node.Decode(&sc); err == nil && sc.Path != "" {
			dbPath = sc.Path
		}
	}

	store, db, err := sqlite.OpenStore(dbPath, logger)
	if err != nil {
		return nil, err
	}

	statsPath := cfg.Memory.Monitoring.StatsPath
	if !filepath.IsAbs(statsPath) {
		statsPath = filepath.Join(dataDir, statsPath)
	}
	agg := metrics.NewAggregator(logger, metrics.WithPersistence(statsPath))
	if err := agg.Load(); err != nil {
		_ = db.Close()
		return nil, err
	}

	provider := config.NewProvider(cfg)
	mem := cfg.Memory
	resultCache := cache.New[retrieval.Result](
		time.Duration(mem.Cache.TTLSeconds)*time.Second,
		mem.Cache.Enabled,
	)
	resolver := retrieval.NewResolver(store, provider, agg, resultCache, logger)
	migrator := migrate.NewAdapter(store, migrate.Limits{
		ShortMaxChars:    mem.Layers.ShortMaxChars,
		OverviewMaxChars: mem.Layers.OverviewMaxChars,
	}, logger)

	return &env{
		cfg:      cfg,
		resolver: resolver,
		agg:      agg,
		migrator: migrator,
		db:       db,
	}, nil
}

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Answer a question from tiered memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			override, _ := cmd.Flags().GetString("tier")
			asJSON, _ := cmd.Flags().GetBool("json")

			e, err := openEnv(cfgPath, dataDir)
			if err != nil {
				return err
			}
			defer e.close()

			res, err := e.resolver.Resolve(cmd.Context(), args[0], override)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(res)
			}

			fmt.Println(res.Answer)
			fmt.Fprintf(os.Stderr, "\n[%s tier, %s, saved %.0f tokens (%.0f%%)]\n",
				res.TierUsed, res.Classification.Category,
				res.TokensSaved, res.SavingRate*100)
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	cmd.Flags().String("data-dir", "", "Persistent data directory")
	cmd.Flags().StringP("tier", "t", "auto", "Tier override: auto, short, overview, full")
	cmd.Flags().Bool("json", false, "Print the full result as JSON")
	return cmd
}

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <key> <file>",
		Short: "Store a file's content as a tiered record (use - for stdin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			dataDir, _ := cmd.Flags().GetString("data-dir")

			var raw []byte
			var err error
			if args[1] == "-" {
				raw, err = io.ReadAll(os.Stdin)
			} else {
				raw, err = os.ReadFile(args[1])
			}
			if err != nil {
				return err
			}

			e, err := openEnv(cfgPath, dataDir)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.resolver.Ingest(cmd.Context(), args[0], string(raw)); err != nil {
				return err
			}
			fmt.Printf("Stored record %q (%d bytes)\n", args[0], len(raw))
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	cmd.Flags().String("data-dir", "", "Persistent data directory")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate <dir>",
		Short: "Import flat markdown memory files into the tier store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			dataDir, _ := cmd.Flags().GetString("data-dir")

			e, err := openEnv(cfgPath, dataDir)
			if err != nil {
				return err
			}
			defer e.close()

			res, err := e.migrator.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Migrated %d, skipped %d, failed %d\n", res.Migrated, res.Skipped, res.Failed)
			fmt.Printf("Tiers written: %d short, %d overview, %d full\n",
				res.Tiers.Short, res.Tiers.Overview, res.Tiers.Full)
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	cmd.Flags().String("data-dir", "", "Persistent data directory")
	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a performance report from recorded statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			periodArg, _ := cmd.Flags().GetString("period")
			formatArg, _ := cmd.Flags().GetString("format")

			period, err := metrics.ParsePeriod(periodArg)
			if err != nil {
				return err
			}
			format, err := metrics.ParseFormat(formatArg)
			if err != nil {
				return err
			}

			e, err := openEnv(cfgPath, dataDir)
			if err != nil {
				return err
			}
			defer e.close()

			report, err := e.agg.Report(period, format)
			if err != nil {
				return err
			}
			fmt.Println(report)
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	cmd.Flags().String("data-dir", "", "Persistent data directory")
	cmd.Flags().StringP("period", "p", "daily", "Report period: daily, weekly, monthly")
	cmd.Flags().StringP("format", "f", "text", "Report format: structured, text")
	return cmd
}

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve memory tools over the Model Context Protocol on stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			dataDir, _ := cmd.Flags().GetString("data-dir")

			e, err := openEnv(cfgPath, dataDir)
			if err != nil {
				return err
			}
			defer e.close()

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			}))

			srv := mcp.BuildServer(version, mcp.Deps{
				Resolver:   e.resolver,
				Aggregator: e.agg,
				Migrator:   e.migrator,
				Logger:     logger,
			})
			return mcp.ServeStdio(srv)
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	cmd.Flags().String("data-dir", "", "Persistent data directory")
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
