package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/breeder/internal/config"
	"github.com/aristath/breeder/internal/database"
)

// InitializeDatabases opens rollers.db and cache.db and applies their schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// rollers.db - rollers and odds templates
	rollersDB, err := database.New(database.Config{
		Path:    cfg.RollersDBPath(),
		Profile: database.ProfileStandard,
		Name:    "rollers",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rollers database: %w", err)
	}
	container.RollersDB = rollersDB

	// cache.db - last rolls, safe to lose
	cacheDB, err := database.New(database.Config{
		Path:    cfg.CacheDBPath(),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		rollersDB.Close()
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}
	container.CacheDB = cacheDB

	for _, db := range container.Databases() {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to apply schema to %s: %w", db.Name(), err)
		}
	}

	log.Info().Str("data_dir", cfg.DataDir).Msg("Databases initialized and schemas applied")
	return container, nil
}
