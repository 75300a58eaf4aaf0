// Package reliability provides database backups to object storage and
// scheduled maintenance.
package reliability

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/rs/zerolog"

	"github.com/aristath/breeder/internal/database"
	"github.com/aristath/breeder/internal/events"
)

const (
	backupTimestampLayout = "2006-01-02-150405"
	backupContentType     = "application/gzip"
	minBackupsToKeep      = 3
)

// BackupResult describes an uploaded backup
type BackupResult struct {
	Key       string        `json:"key"`
	SizeBytes int64         `json:"size_bytes"`
	Duration  time.Duration `json:"duration"`
}

// BackupInfo is a backup found in the bucket
type BackupInfo struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
}

// BackupService snapshots a database, compresses it and uploads it
type BackupService struct {
	db            *database.DB
	store         ObjectStore
	prefix        string
	stagingDir    string
	retentionDays int
	events        *events.Manager
	log           zerolog.Logger
	now           func() time.Time
}

// NewBackupService creates a new backup service. eventManager may be nil.
func NewBackupService(
	db *database.DB,
	store ObjectStore,
	prefix string,
	stagingDir string,
	retentionDays int,
	eventManager *events.Manager,
	log zerolog.Logger,
) *BackupService {
	return &BackupService{
		db:            db,
		store:         store,
		prefix:        strings.Trim(prefix, "/"),
		stagingDir:    stagingDir,
		retentionDays: retentionDays,
		events:        eventManager,
		log:           log.With().Str("service", "backup").Logger(),
		now:           time.Now,
	}
}

func (s *BackupService) keyPrefix() string {
	name := s.db.Name() + "-"
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// CreateAndUpload writes a consistent copy of the database with VACUUM INTO,
// gzips it and uploads it as <prefix>/<name>-<timestamp>.db.gz. Old backups
// are rotated afterwards; rotation failures are logged, not returned.
func (s *BackupService) CreateAndUpload(ctx context.Context) (*BackupResult, error) {
	start := s.now()
	s.log.Info().Str("database", s.db.Name()).Msg("Starting backup")

	if err := os.MkdirAll(s.stagingDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	stamp := start.UTC().Format(backupTimestampLayout)
	snapshot := filepath.Join(s.stagingDir, fmt.Sprintf("%s-%s.db", s.db.Name(), stamp))
	archive := snapshot + ".gz"
	defer os.Remove(snapshot)
	defer os.Remove(archive)

	if err := s.db.VacuumInto(ctx, snapshot); err != nil {
		return nil, err
	}

	size, err := gzipFile(snapshot, archive)
	if err != nil {
		return nil, fmt.Errorf("failed to compress backup: %w", err)
	}

	f, err := os.Open(archive)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup archive: %w", err)
	}
	defer f.Close()

	key := s.keyPrefix() + stamp + ".db.gz"
	if err := s.store.Upload(ctx, key, f, backupContentType); err != nil {
		s.emitError(err, key)
		return nil, err
	}

	result := &BackupResult{Key: key, SizeBytes: size, Duration: s.now().Sub(start)}
	s.log.Info().
		Str("key", key).
		Int64("size_bytes", size).
		Dur("duration_ms", result.Duration).
		Msg("Backup uploaded")

	if s.events != nil {
		s.events.Emit("reliability", &events.BackupCompletedData{Key: key, SizeBytes: size})
	}

	if err := s.Rotate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Backup rotation failed")
	}
	return result, nil
}

// List returns the backups of this database, newest first
func (s *BackupService) List(ctx context.Context) ([]BackupInfo, error) {
	prefix := s.keyPrefix()
	objects, err := s.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	backups := make([]BackupInfo, 0, len(objects))
	for _, obj := range objects {
		key := aws.ToString(obj.Key)
		stamp := strings.TrimSuffix(strings.TrimPrefix(key, prefix), ".db.gz")
		ts, err := time.Parse(backupTimestampLayout, stamp)
		if err != nil {
			s.log.Debug().Str("key", key).Msg("Skipping object that is not a backup")
			continue
		}
		backups = append(backups, BackupInfo{Key: key, Timestamp: ts, SizeBytes: aws.ToInt64(obj.Size)})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

// Rotate deletes backups older than the retention period, always keeping the
// newest three. A retention of zero days keeps everything.
func (s *BackupService) Rotate(ctx context.Context) error {
	if s.retentionDays <= 0 {
		return nil
	}

	backups, err := s.List(ctx)
	if err != nil {
		return err
	}
	if len(backups) <= minBackupsToKeep {
		return nil
	}

	cutoff := s.now().UTC().AddDate(0, 0, -s.retentionDays)
	deleted := 0
	for _, b := range backups[minBackupsToKeep:] {
		if !b.Timestamp.Before(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, b.Key); err != nil {
			s.log.Error().Err(err).Str("key", b.Key).Msg("Failed to delete old backup")
			continue
		}
		deleted++
	}

	if deleted > 0 {
		s.log.Info().Int("deleted", deleted).Int("remaining", len(backups)-deleted).Msg("Old backups rotated")
	}
	return nil
}

func (s *BackupService) emitError(err error, key string) {
	if s.events != nil {
		s.events.EmitError("reliability", err, map[string]interface{}{"key": key})
	}
}

func gzipFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}

	zw := gzip.NewWriter(out)
	zw.Name = filepath.Base(src)
	if _, err := io.Copy(zw, in); err != nil {
		out.Close()
		return 0, err
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return 0, err
	}
	if err := out.Close(); err != nil {
		return 0, err
	}

	info, err := os.Stat(dst)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// BackupJob runs CreateAndUpload on a schedule
type BackupJob struct {
	service *BackupService
	timeout time.Duration
}

// NewBackupJob creates the scheduled backup job
func NewBackupJob(service *BackupService) *BackupJob {
	return &BackupJob{service: service, timeout: 10 * time.Minute}
}

// Name returns the job name
func (j *BackupJob) Name() string {
	return "backup"
}

// Run executes the backup
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	_, err := j.service.CreateAndUpload(ctx)
	return err
}
