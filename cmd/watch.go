package cmd

import (
	"context"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"redmine-planner.com/redmine-planner/internal/planner"
	"redmine-planner.com/redmine-planner/internal/scheduler"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the planner daemon",
	Long:  "Polls the clock once per interval and fires the end of day alert and the auto-log batch at the configured times",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := bootstrap()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, backend, done := newPlanner(cfg)
		defer done()

		if err := p.Refresh(ctx, false); err != nil {
			log.WithError(err).Warn("initial task load failed, will retry on the next action")
		}

		sched, err := scheduler.New(model.DefaultAlertTime, model.DefaultAutoLogTime)
		if err != nil {
			return err
		}

		hooks := watchHooks(p, func(ctx context.Context) (model.Settings, error) {
			return backend.Settings(ctx)
		})

		alertAt, autoLogAt := sched.Times()
		log.WithFields(log.Fields{
			"interval":    cfg.PollInterval,
			"alert_at":    alertAt,
			"auto_log_at": autoLogAt,
		}).Info("planner daemon started")

		sched.Run(ctx, cfg.PollInterval, hooks)

		log.Info("planner daemon stopped")
		return nil
	},
}

// watchHooks wires the scheduler to the planner. Times come from the backend
// settings on every tick.
func watchHooks(p *planner.Planner, settings func(ctx context.Context) (model.Settings, error)) scheduler.Hooks {
	return scheduler.Hooks{
		Times: func(ctx context.Context) (string, string, error) {
			s, err := settings(ctx)
			if err != nil {
				return "", "", err
			}
			return s.AlertTime, s.AutoLogTime, nil
		},
		Fire: func(ctx context.Context, action scheduler.Action) {
			// Refresh picks up the new day's carry-over on its own.
			if err := p.Refresh(ctx, true); err != nil {
				log.WithError(err).WithField("action", action).Warn("refresh before scheduled action failed")
			}

			switch action {
			case scheduler.ActionAlert:
				log.WithFields(log.Fields{
					"pending":       len(p.Pending()),
					"total_planned": p.TotalPlanned(),
				}).Warn("end of day: pending tasks will be logged at the auto-log time")

			case scheduler.ActionAutoLog:
				report, err := p.AutoLog(ctx, false)
				fields := log.Fields{
					"status":    report.Status,
					"submitted": report.Submitted,
					"logged":    report.Logged,
				}
				if err != nil {
					log.WithFields(fields).WithError(err).Error("auto-log: " + notice(err))
					return
				}
				if !report.Empty {
					log.WithFields(fields).Info("auto-log finished")
				}
			}
		},
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
