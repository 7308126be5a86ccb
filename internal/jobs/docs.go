// Package jobs provides scheduled background tasks for the order
// coordination subsystem.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations.
//
// # Available Jobs
//
// 1. AssignmentTimeoutJob - Sweeps assignments whose partner never responded
// within the acceptance window, cancels them and requeues their orders for
// reassignment with the unresponsive partner excluded.
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(expireAssignmentsHandler, acceptanceWindow, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The timeout sweep uses the cron expression "*/10 * * * * *", running every
// ten seconds. An unresponsive partner therefore blocks an order for at most
// the acceptance window plus ten seconds.
//
// # Error Handling
//
// An exhausted candidate pool during requeue is an expected business outcome
// and is not treated as a sweep failure; genuine failures are logged and the
// next sweep retries the remaining stale assignments.
package jobs
