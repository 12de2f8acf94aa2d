package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/lunchdesk/core/internal/adapters/repository"
	"github.com/lunchdesk/core/internal/application/services"
	"github.com/lunchdesk/core/internal/infrastructure/config"
	"github.com/lunchdesk/core/internal/infrastructure/csvstore"
	"github.com/lunchdesk/core/internal/infrastructure/logger"
	"github.com/lunchdesk/core/internal/infrastructure/mirror"
	"github.com/lunchdesk/core/internal/infrastructure/server"
)

// Build information, set with -ldflags
var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "development"
)

// NewRootCommand creates the lunchdesk command tree
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "lunchdesk",
		Short:         "LunchDesk API Server",
		Long:          `LunchDesk keeps a lunch menu, customer orders and kitchen expenses in CSV files and serves them over a JSON API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (yaml, json or toml)")

	rootCmd.AddCommand(NewServeCommand(&configPath))
	rootCmd.AddCommand(NewBackupCommand(&configPath))
	rootCmd.AddCommand(NewExportCommand(&configPath))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// NewServeCommand creates the serve command
func NewServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the LunchDesk API server",
		Long:  "Start the LunchDesk API server with all configured routes and middleware",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath)
		},
	}
}

// NewBackupCommand creates the backup command with subcommands
func NewBackupCommand(configPath *string) *cobra.Command {
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Collection snapshot commands",
		Long:  "List, restore, prune and verify the timestamped snapshots taken after every write",
	}

	backupCmd.AddCommand(&cobra.Command{
		Use:   "list <collection>",
		Short: "List snapshots of a collection, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackupService(cmd, *configPath, func(ctx context.Context, svc *services.BackupService) error {
				snaps, err := svc.ListSnapshots(ctx, args[0])
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tTIME\tSIZE")
				for _, snap := range snaps {
					fmt.Fprintf(w, "%s\t%s\t%d\n", snap.Name, snap.Time.Format(time.RFC3339), snap.Size)
				}
				return w.Flush()
			})
		},
	})

	backupCmd.AddCommand(&cobra.Command{
		Use:   "restore <collection> <snapshot>",
		Short: "Replace a collection file with one of its snapshots",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackupService(cmd, *configPath, func(ctx context.Context, svc *services.BackupService) error {
				if err := svc.RestoreSnapshot(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Restored %s from %s\n", args[0], args[1])
				return nil
			})
		},
	})

	pruneCmd := &cobra.Command{
		Use:   "prune <collection>",
		Short: "Remove all but the newest snapshots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keep, _ := cmd.Flags().GetInt("keep")
			if keep < 1 {
				return fmt.Errorf("--keep must be at least 1")
			}
			return withBackupService(cmd, *configPath, func(ctx context.Context, svc *services.BackupService) error {
				removed, err := svc.PruneSnapshots(ctx, args[0], keep)
				if err != nil {
					return err
				}
				for _, name := range removed {
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", name)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d snapshot(s) removed\n", len(removed))
				return nil
			})
		},
	}
	pruneCmd.Flags().Int("keep", 10, "number of snapshots to keep")
	backupCmd.AddCommand(pruneCmd)

	backupCmd.AddCommand(&cobra.Command{
		Use:   "verify <collection> <snapshot>",
		Short: "Check that every row of a snapshot decodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackupService(cmd, *configPath, func(ctx context.Context, svc *services.BackupService) error {
				n, err := svc.VerifySnapshot(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d row(s) OK\n", args[1], n)
				return nil
			})
		},
	})

	return backupCmd
}

// NewExportCommand creates the export command
func NewExportCommand(configPath *string) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write all collections to an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")

			rt, err := bootstrap(cmd.Context(), *configPath, false)
			if err != nil {
				return err
			}
			defer rt.close()

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}

			log := rt.logger.WithComponent("csvstore")
			svc := services.NewReportService(
				repository.NewLunchRepository(rt.store, log),
				repository.NewOrderRepository(rt.store, log),
				repository.NewExpenseRepository(rt.store, log),
				rt.logger,
			)
			if err := svc.ExportWorkbook(cmd.Context(), f); err != nil {
				f.Close()
				os.Remove(out)
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Workbook written to %s\n", out)
			return nil
		},
	}
	exportCmd.Flags().String("out", "lunchdesk.xlsx", "output file")

	return exportCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print LunchDesk version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "LunchDesk %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Build Date: %s\n", BuildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "Git Commit: %s\n", GitCommit)
		},
	}
}

// runtime is the state every command needs: configuration, logging and an
// initialised store
type runtime struct {
	cfg      *config.Config
	logger   *logger.Logger
	store    *csvstore.Store
	registry *prometheus.Registry
}

func (rt *runtime) close() {
	_ = rt.logger.Close()
}

// bootstrap loads configuration and opens the store. The snapshot mirror
// is only attached when withMirror is set, so offline maintenance commands
// never reach for the network.
func bootstrap(ctx context.Context, configPath string, withMirror bool) (*runtime, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: appLogger}

	var opts []csvstore.Option
	if cfg.Metrics.Enabled {
		rt.registry = prometheus.NewRegistry()
		rt.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts = append(opts, csvstore.WithMetrics(csvstore.NewMetrics(rt.registry)))
	}

	if withMirror && cfg.Mirror.Enabled {
		m, err := mirror.New(ctx, mirror.Config{
			Endpoint:  cfg.Mirror.Endpoint,
			AccessKey: cfg.Mirror.AccessKey,
			SecretKey: cfg.Mirror.SecretKey,
			Bucket:    cfg.Mirror.Bucket,
			Prefix:    cfg.Mirror.Prefix,
			UseSSL:    cfg.Mirror.UseSSL,
		})
		if err != nil {
			rt.close()
			return nil, fmt.Errorf("failed to connect snapshot mirror: %w", err)
		}
		opts = append(opts, csvstore.WithMirror(m))
		appLogger.Infow("Snapshot mirror enabled", "endpoint", cfg.Mirror.Endpoint, "bucket", cfg.Mirror.Bucket)
	}

	store, err := csvstore.New(csvstore.Config{
		DataDir:   cfg.Storage.DataDir,
		BackupDir: cfg.Storage.BackupDir,
		Retention: cfg.Storage.BackupRetention,
	}, opts...)
	if err != nil {
		rt.close()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if err := repository.InitCollections(store); err != nil {
		rt.close()
		return nil, fmt.Errorf("failed to initialize collections: %w", err)
	}
	if err := os.MkdirAll(cfg.Storage.UploadsDir, 0755); err != nil {
		rt.close()
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	rt.store = store

	return rt, nil
}

func withBackupService(cmd *cobra.Command, configPath string, fn func(ctx context.Context, svc *services.BackupService) error) error {
	rt, err := bootstrap(cmd.Context(), configPath, false)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, services.NewBackupService(repository.NewSnapshotRepository(rt.store), rt.logger))
}

func runServer(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap(ctx, configPath, true)
	if err != nil {
		return err
	}
	defer rt.close()

	srv, err := server.New(rt.cfg, rt.store, rt.registry, rt.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	rt.logger.Infow("Starting LunchDesk API server",
		"port", rt.cfg.Server.Port,
		"environment", rt.cfg.App.Environment,
		"data_dir", rt.cfg.Storage.DataDir,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
