package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/breeder/internal/cache"
	"github.com/aristath/breeder/internal/config"
	"github.com/aristath/breeder/internal/reliability"
	"github.com/aristath/breeder/internal/scheduler"
)

type scheduledJob struct {
	schedule string
	job      scheduler.Job
}

// RegisterJobs creates the scheduler and registers the background jobs. The
// scheduler is returned stopped.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	sched := scheduler.New(log)

	jobs := []scheduledJob{
		{cfg.CacheCleanupSchedule, cache.NewCleanupJob(container.Cache)},
		{cfg.WALCheckpointSchedule, scheduler.NewCheckWALCheckpointsJob(log, container.Databases()...)},
		{cfg.MaintenanceSchedule, reliability.NewDailyMaintenanceJob(cfg.DataDir, log, container.Databases()...)},
	}
	if container.BackupService != nil {
		jobs = append(jobs, scheduledJob{cfg.Backup.Schedule, reliability.NewBackupJob(container.BackupService)})
	}

	for _, j := range jobs {
		if err := sched.AddJob(j.schedule, j.job); err != nil {
			return err
		}
	}

	container.Scheduler = sched
	return nil
}
