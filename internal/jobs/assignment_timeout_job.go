package jobs

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// AssignmentTimeoutJob sweeps assignments whose partner never responded
// within the acceptance window, cancels them and requeues their orders.
type AssignmentTimeoutJob struct {
	handler          commands.ExpireAssignmentsCommandHandler
	acceptanceWindow time.Duration
	cron             *cron.Cron
	logger           *slog.Logger
}

// NewAssignmentTimeoutJob creates the sweep job. acceptanceWindow is how
// long a partner may sit on an offered assignment before it expires.
func NewAssignmentTimeoutJob(
	handler commands.ExpireAssignmentsCommandHandler,
	acceptanceWindow time.Duration,
	logger *slog.Logger,
) *AssignmentTimeoutJob {
	return &AssignmentTimeoutJob{
		handler:          handler,
		acceptanceWindow: acceptanceWindow,
		cron:             cron.New(cron.WithSeconds()),
		logger:           logger.With("component", "assignment_timeout_job"),
	}
}

// Start begins the sweep, running every ten seconds.
func (j *AssignmentTimeoutJob) Start() error {
	_, err := j.cron.AddFunc("*/10 * * * * *", func() {
		ctx := context.Background()

		cmd, err := commands.NewExpireAssignmentsCommand(j.acceptanceWindow)
		if err != nil {
			j.logger.ErrorContext(ctx, "Assignment timeout sweep misconfigured", "error", err)
			return
		}

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Assignment timeout sweep failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(),
		"Assignment timeout job started", "acceptance_window", j.acceptanceWindow.String())
	return nil
}

// Stop stops the sweep.
func (j *AssignmentTimeoutJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Assignment timeout job stopped")
}
