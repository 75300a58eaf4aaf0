package server

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/breeder/internal/database"
	"github.com/aristath/breeder/internal/reliability"
)

// JobRunner lists and triggers scheduled jobs
type JobRunner interface {
	JobNames() []string
	RunNow(name string) error
}

// BackupRunner creates and lists backups
type BackupRunner interface {
	CreateAndUpload(ctx context.Context) (*reliability.BackupResult, error)
	List(ctx context.Context) ([]reliability.BackupInfo, error)
}

// SystemHandlers serves status and operations endpoints
type SystemHandlers struct {
	log       zerolog.Logger
	dataDir   string
	databases []*database.DB
	jobs      JobRunner
	backup    BackupRunner
	startedAt time.Time
}

// NewSystemHandlers creates the system handlers. jobs may be nil.
func NewSystemHandlers(log zerolog.Logger, dataDir string, databases []*database.DB, jobs JobRunner) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		dataDir:   dataDir,
		databases: databases,
		jobs:      jobs,
		startedAt: time.Now(),
	}
}

// SetBackupRunner enables the backup endpoints
func (h *SystemHandlers) SetBackupRunner(backup BackupRunner) {
	h.backup = backup
}

// DatabaseStatus is one database in the status response
type DatabaseStatus struct {
	Name string `json:"name"`
	*database.Stats
	Error string `json:"error,omitempty"`
}

// SystemStatusResponse is returned by GET /api/system/status
type SystemStatusResponse struct {
	Status         string           `json:"status"`
	UptimeSeconds  int64            `json:"uptime_seconds"`
	CPUPercent     float64          `json:"cpu_percent"`
	MemoryPercent  float64          `json:"memory_percent"`
	Databases      []DatabaseStatus `json:"databases"`
	Jobs           []string         `json:"jobs"`
	BackupsEnabled bool             `json:"backups_enabled"`
	LastChecked    string           `json:"last_checked"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:         "healthy",
		UptimeSeconds:  int64(time.Since(h.startedAt).Seconds()),
		CPUPercent:     cpuPercent,
		MemoryPercent:  memPercent,
		Databases:      make([]DatabaseStatus, 0, len(h.databases)),
		Jobs:           h.jobNames(),
		BackupsEnabled: h.backup != nil,
		LastChecked:    time.Now().Format(time.RFC3339),
	}

	for _, db := range h.databases {
		status := DatabaseStatus{Name: db.Name()}
		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to read database stats")
			status.Error = err.Error()
			response.Status = "degraded"
		} else {
			status.Stats = stats
		}
		response.Databases = append(response.Databases, status)
	}

	writeJSON(w, h.log, http.StatusOK, response)
}

// DiskUsageResponse is returned by GET /api/system/disk
type DiskUsageResponse struct {
	Path        string  `json:"path"`
	TotalBytes  uint64  `json:"total_bytes"`
	FreeBytes   uint64  `json:"free_bytes"`
	UsedPercent float64 `json:"used_percent"`
}

// HandleDiskUsage handles GET /api/system/disk
func (h *SystemHandlers) HandleDiskUsage(w http.ResponseWriter, r *http.Request) {
	usage, err := disk.Usage(h.dataDir)
	if err != nil {
		h.log.Error().Err(err).Str("dir", h.dataDir).Msg("Failed to read disk usage")
		writeError(w, h.log, http.StatusInternalServerError, "Failed to read disk usage")
		return
	}

	writeJSON(w, h.log, http.StatusOK, DiskUsageResponse{
		Path:        h.dataDir,
		TotalBytes:  usage.Total,
		FreeBytes:   usage.Free,
		UsedPercent: usage.UsedPercent,
	})
}

// HandleListJobs handles GET /api/system/jobs
func (h *SystemHandlers) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.log, http.StatusOK, map[string]interface{}{"jobs": h.jobNames()})
}

// HandleTriggerJob handles POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	known := false
	for _, n := range h.jobNames() {
		if n == name {
			known = true
			break
		}
	}
	if !known {
		writeError(w, h.log, http.StatusNotFound, "Unknown job: "+name)
		return
	}

	start := time.Now()
	if err := h.jobs.RunNow(name); err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Manually triggered job failed")
		writeError(w, h.log, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"job":         name,
		"status":      "completed",
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// HandleTriggerBackup handles POST /api/system/backup
func (h *SystemHandlers) HandleTriggerBackup(w http.ResponseWriter, r *http.Request) {
	if h.backup == nil {
		writeError(w, h.log, http.StatusServiceUnavailable, "Backups are not enabled")
		return
	}

	result, err := h.backup.CreateAndUpload(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Manual backup failed")
		writeError(w, h.log, http.StatusInternalServerError, "Backup failed: "+err.Error())
		return
	}
	writeJSON(w, h.log, http.StatusOK, result)
}

// HandleListBackups handles GET /api/system/backups
func (h *SystemHandlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	if h.backup == nil {
		writeError(w, h.log, http.StatusServiceUnavailable, "Backups are not enabled")
		return
	}

	backups, err := h.backup.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list backups")
		writeError(w, h.log, http.StatusInternalServerError, "Failed to list backups")
		return
	}
	writeJSON(w, h.log, http.StatusOK, map[string]interface{}{"backups": backups})
}

func (h *SystemHandlers) jobNames() []string {
	if h.jobs == nil {
		return []string{}
	}
	names := h.jobs.JobNames()
	sort.Strings(names)
	return names
}

// getSystemStats returns CPU and RAM usage percentages. CPU is sampled over
// 100ms to keep the endpoint responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuAvg := 0.0
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
	} else if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return cpuAvg, 0
	}

	return cpuAvg, memStat.UsedPercent
}
