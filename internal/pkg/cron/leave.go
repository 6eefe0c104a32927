package cron

import (
	"context"
	"time"

	"github.com/cmlabs-hris/leave-backend-go/internal/domain/leave"
)

// LeaveJobs contains leave-related cron jobs
type LeaveJobs struct {
	leaveService leave.LeaveService
	interval     time.Duration
	runOnStart   bool
	now          func() time.Time
}

// NewLeaveJobs creates leave cron jobs
func NewLeaveJobs(leaveService leave.LeaveService, interval time.Duration, runOnStart bool) *LeaveJobs {
	return &LeaveJobs{
		leaveService: leaveService,
		interval:     interval,
		runOnStart:   runOnStart,
		now:          time.Now,
	}
}

// RegisterJobs registers all leave-related cron jobs
func (j *LeaveJobs) RegisterJobs(scheduler *Scheduler) {
	// Make sure every active employee has a record for the current year.
	// Picks up new hires and the January rollover.
	scheduler.AddJob(Job{
		Name:       "provision_leave_records",
		Interval:   j.interval,
		RunOnStart: j.runOnStart,
		Fn:         j.ProvisionCurrentYear,
	})
}

// ProvisionCurrentYear provisions leave records for the current calendar year.
func (j *LeaveJobs) ProvisionCurrentYear(ctx context.Context) error {
	_, err := j.leaveService.ProvisionYear(ctx, j.now().Year())
	return err
}
