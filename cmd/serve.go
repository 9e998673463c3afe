package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/matchscope/matchscope/internal/server"
	"github.com/matchscope/matchscope/internal/utils"
	"github.com/matchscope/matchscope/pkg/processor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server and the background polling loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		pollInterval, _ := cmd.Flags().GetInt("poll-interval")
		listenAddr, _ := cmd.Flags().GetString("listen")

		lock, err := utils.NewDataLock(dataDir())
		if err != nil {
			return err
		}
		if err := lock.Lock(); err != nil {
			return err
		}
		defer lock.Unlock()

		proc, db, cleanup, err := buildProcessor()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if pollInterval > 0 {
			go pollLoop(ctx, proc, time.Duration(pollInterval)*time.Minute)
		} else {
			utils.Log.Info("Background polling disabled, cycles run only via POST /api/process")
		}

		srv := server.New(listenAddr, proc, db, dependencyURLs())

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		utils.Log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

// pollLoop runs a cycle immediately, then on every tick until the context is
// cancelled. Cycle failures are logged and the loop keeps going.
func pollLoop(ctx context.Context, proc *processor.Processor, interval time.Duration) {
	utils.Log.Infof("Polling upstream every %s", interval)

	runOnce := func() {
		cycleCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		if _, err := proc.RunCycle(cycleCtx); err != nil && err != processor.ErrCycleInFlight {
			utils.Log.Errorf("Polling cycle failed: %v", err)
		}
	}

	runOnce()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("poll-interval", 5, "Minutes between polling cycles (0 to disable)")
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
}
