package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/adapters/driven/storage/sqlite"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/adapters/driving/httpapi"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/domain"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/ports/driving"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/core/services"
	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP trigger server and background scheduler",
	Long: `Runs the long-lived service: an HTTP endpoint for on-demand sync
runs and a scheduler that keeps the index current on business-hours
and off-hours intervals. Stops cleanly on SIGINT or SIGTERM.`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return configureServices()
	},
	RunE: runServeCmd,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	if syncOrchestrator == nil || appConfig == nil {
		return errors.New("sync service not configured")
	}

	opts, err := scheduledRunOptions()
	if err != nil {
		return err
	}

	dataDir, err := appConfig.DataDir()
	if err != nil {
		return err
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	scheduler := services.NewScheduler(store, appConfig.SchedulerDomainConfig(),
		func(ctx context.Context) (*domain.RunSummary, error) {
			return syncOrchestrator.Run(ctx, opts)
		})

	server := httpapi.NewServer(appConfig.Server.ListenAddr, syncOrchestrator)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := scheduler.Start(ctx); err != nil {
		return err
	}

	cmd.Printf("Listening on %s\n", appConfig.Server.ListenAddr)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		scheduler.Stop()
		return nil
	})

	err = g.Wait()
	logger.Info("serve: shut down")
	return err
}

// scheduledRunOptions builds the options the scheduler passes to every
// run, from the sync section of the configuration. The lookback
// override applies to incremental mode only; full and test keep their
// defaults.
func scheduledRunOptions() (driving.RunOptions, error) {
	mode := domain.SyncMode(appConfig.Sync.Mode)
	opts := driving.RunOptions{
		Mode:           mode,
		FlushThreshold: appConfig.Sync.FlushThreshold,
	}
	if mode == domain.ModeIncremental {
		opts.LookbackDays = appConfig.Sync.IncrementalDays
	}

	backfill, err := appConfig.BackfillUntilTime()
	if err != nil {
		return driving.RunOptions{}, err
	}
	opts.BackfillUntil = backfill
	return opts, nil
}
