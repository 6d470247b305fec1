package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/toodledo/internal/instrumentation"
	"github.com/teemow/toodledo/internal/logging"
	"github.com/teemow/toodledo/internal/server"
	"github.com/teemow/toodledo/internal/toodledo"
)

func newWatchCmd(cc *commandContext) *cobra.Command {
	var (
		interval    time.Duration
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Report task changes as they happen",
		Long: `Poll the account for task edits and deletions and print every change.

The account's last edit times are checked on every poll; tasks are only
fetched when they changed. Prometheus metrics and health endpoints are served
on the metrics address.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("interval") {
				interval = time.Duration(cc.cfg.Watch.IntervalSeconds) * time.Second
			}
			if !cmd.Flags().Changed("metrics-addr") {
				metricsAddr = cc.cfg.Watch.MetricsAddr
			}
			if interval < 5*time.Second {
				return fmt.Errorf("--interval must be at least 5s, got %s", interval)
			}
			return runWatch(cmd, cc, interval, metricsAddr)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", time.Minute, "Time between polls (default from config)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Address for /metrics and health endpoints; empty disables them (default from config)")
	return cmd
}

func runWatch(cmd *cobra.Command, cc *commandContext, interval time.Duration, metricsAddr string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrConfig := cc.cfg.Instrumentation
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			cc.logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()
	cc.metrics = provider.Metrics()

	health := server.NewHealthChecker(3 * interval)
	if metricsAddr != "" && provider.Enabled() && !provider.ServesPrometheus() {
		cc.logger.Warn("metrics are not exported to Prometheus; /metrics is disabled",
			slog.String("exporter", instrConfig.MetricsExporter))
	}
	if metricsAddr != "" && provider.Enabled() {
		metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsAddr,
			InstrumentationProvider: provider,
			Health:                  health,
			Logger:                  cc.logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Serve(ctx); err != nil {
				cc.logger.Error("metrics server failed", logging.Err(err))
			}
		}()
	}

	client, err := cc.newClient(ctx, cc.account, true)
	if err != nil {
		return err
	}

	w := &watcher{
		client:  client,
		out:     cmd.OutOrStdout(),
		logger:  logging.WithAccount(cc.logger, cc.account),
		metrics: cc.metrics,
		health:  health,
	}
	return w.run(ctx, interval)
}

// watcher polls one account and prints the tasks that changed since the
// previous poll.
type watcher struct {
	client  *toodledo.Client
	out     io.Writer
	logger  *slog.Logger
	metrics *instrumentation.Metrics
	health  *server.HealthChecker

	since   time.Time
	started bool
}

func (w *watcher) run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := w.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Warn("poll failed", logging.Err(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *watcher) poll(ctx context.Context) error {
	account, err := w.client.GetAccount(ctx)
	if err != nil {
		return w.fail(ctx, err)
	}

	lastEdit := account.LastEditTask.Value()
	lastDelete := account.LastDeleteTask.Value()
	latest := lastEdit
	if lastDelete.After(latest) {
		latest = lastDelete
	}

	if !w.started {
		w.started = true
		w.since = latest
		w.health.RecordPoll(nil)
		w.metrics.RecordWatchPoll(ctx, instrumentation.WatchResultUnchanged)
		w.logger.Info("watching for task changes",
			logging.UserHash(account.UserID.Value()),
			slog.Time("last_change", latest))
		return nil
	}

	if !account.TasksChangedSince(w.since) {
		w.health.RecordPoll(nil)
		w.metrics.RecordWatchPoll(ctx, instrumentation.WatchResultUnchanged)
		return nil
	}

	if lastEdit.After(w.since) {
		tasks, err := w.client.GetTasks(ctx, toodledo.TaskQuery{
			ModifiedAfter: w.since,
			Fields:        []string{"duedate", "priority"},
		})
		if err != nil {
			return w.fail(ctx, err)
		}
		for _, t := range tasks {
			w.printTask(t)
		}
	}

	if lastDelete.After(w.since) {
		deleted, err := w.client.GetDeletedTasks(ctx, w.since)
		if err != nil {
			return w.fail(ctx, err)
		}
		for _, d := range deleted {
			fmt.Fprintf(w.out, "%s  %-9s  %s\n", formatOptTime(d.Deleted), "deleted", formatOptID(d.ID))
		}
	}

	w.since = latest
	w.health.RecordPoll(nil)
	w.metrics.RecordWatchPoll(ctx, instrumentation.WatchResultChanged)
	return nil
}

func (w *watcher) fail(ctx context.Context, err error) error {
	w.health.RecordPoll(err)
	w.metrics.RecordWatchPoll(ctx, instrumentation.StatusError)
	return err
}

func (w *watcher) printTask(t toodledo.Task) {
	change := "changed"
	if t.IsComplete() {
		change = "completed"
	}
	line := fmt.Sprintf("%s  %-9s  %s  %s", formatOptTime(t.Modified), change, formatOptID(t.ID), t.Title.Value())
	if due := formatOptDate(t.DueDate); due != "" {
		line += "  (due " + due + ")"
	}
	fmt.Fprintln(w.out, line)
}
