package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/aristath/breeder/internal/database"
)

const (
	criticalFreeBytes = 500 << 20
	lowFreeBytes      = 5 << 30
)

// DailyMaintenanceJob checks database integrity and free disk space
type DailyMaintenanceJob struct {
	databases []*database.DB
	dataDir   string
	usage     func(path string) (*disk.UsageStat, error)
	log       zerolog.Logger
}

// NewDailyMaintenanceJob creates the maintenance job for the given databases,
// checking free space on the filesystem holding dataDir
func NewDailyMaintenanceJob(dataDir string, log zerolog.Logger, databases ...*database.DB) *DailyMaintenanceJob {
	return &DailyMaintenanceJob{
		databases: databases,
		dataDir:   dataDir,
		usage:     disk.Usage,
		log:       log.With().Str("job", "daily_maintenance").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *DailyMaintenanceJob) Name() string {
	return "daily_maintenance"
}

// Run executes the maintenance. A failed integrity check or critically low disk
// space fails the job; everything else is logged.
func (j *DailyMaintenanceJob) Run() error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for _, db := range j.databases {
		if db == nil {
			continue
		}
		if err := db.HealthCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("Database health check failed")
			return err
		}

		stats, err := db.GetStats()
		if err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to read database stats")
			continue
		}
		j.log.Info().
			Str("database", db.Name()).
			Int64("size_bytes", stats.SizeBytes).
			Int64("wal_size_bytes", stats.WALSizeBytes).
			Int64("freelist_pages", stats.FreelistCount).
			Msg("Database stats")
	}

	if err := j.checkDiskSpace(); err != nil {
		return err
	}

	j.log.Info().Dur("duration_ms", time.Since(start)).Msg("Daily maintenance completed")
	return nil
}

func (j *DailyMaintenanceJob) checkDiskSpace() error {
	usage, err := j.usage(j.dataDir)
	if err != nil {
		return fmt.Errorf("failed to read disk usage for %s: %w", j.dataDir, err)
	}

	event := j.log.Debug()
	switch {
	case usage.Free < criticalFreeBytes:
		j.log.Error().Uint64("free_bytes", usage.Free).Msg("Insufficient disk space")
		return fmt.Errorf("only %d bytes free on %s", usage.Free, usage.Path)
	case usage.Free < lowFreeBytes:
		event = j.log.Warn()
	}
	event.Uint64("free_bytes", usage.Free).Float64("used_percent", usage.UsedPercent).Msg("Disk space check")
	return nil
}
