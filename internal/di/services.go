package di

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/breeder/internal/cache"
	"github.com/aristath/breeder/internal/config"
	"github.com/aristath/breeder/internal/events"
	"github.com/aristath/breeder/internal/i18n"
	"github.com/aristath/breeder/internal/modules/odds"
	"github.com/aristath/breeder/internal/modules/rollers"
	"github.com/aristath/breeder/internal/reliability"
)

// InitializeRepositories creates the repositories over the open databases
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil || container.RollersDB == nil {
		return fmt.Errorf("rollers database is not initialized")
	}

	container.RollerRepo = rollers.NewRepository(container.RollersDB.Conn(), log)
	container.OddsRepo = odds.NewRepository(container.RollersDB.Conn(), log)
	return nil
}

// InitializeServices creates the services. Backups are only configured when
// enabled, since building the S3 client needs credentials.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	localizer, err := i18n.New()
	if err != nil {
		return fmt.Errorf("failed to load locales: %w", err)
	}
	container.Localizer = localizer

	container.EventBus = events.NewBus()
	container.EventManager = events.NewManager(container.EventBus, log)
	container.Cache = cache.New(container.CacheDB.Conn(), log)

	container.OddsService = odds.NewService(container.OddsRepo, log)
	container.RollersService = rollers.NewService(
		container.RollerRepo,
		container.OddsService,
		container.Cache,
		container.EventManager,
		rollers.Config{MaxGenes: cfg.MaxGenes, LastRollTTL: cfg.LastRollTTL},
		log,
	)

	if cfg.Backup.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store, err := reliability.NewS3Store(ctx, cfg.Backup)
		if err != nil {
			return fmt.Errorf("failed to configure backup storage: %w", err)
		}
		container.BackupService = reliability.NewBackupService(
			container.RollersDB,
			store,
			cfg.Backup.Prefix,
			cfg.BackupStagingDir(),
			cfg.Backup.RetentionDays,
			container.EventManager,
			log,
		)
		log.Info().Str("bucket", cfg.Backup.Bucket).Msg("Backups enabled")
	}

	return nil
}
