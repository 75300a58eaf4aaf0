// Package di wires databases, repositories, services and jobs into a Container.
package di

import (
	"github.com/aristath/breeder/internal/cache"
	"github.com/aristath/breeder/internal/database"
	"github.com/aristath/breeder/internal/events"
	"github.com/aristath/breeder/internal/i18n"
	"github.com/aristath/breeder/internal/modules/odds"
	"github.com/aristath/breeder/internal/modules/rollers"
	"github.com/aristath/breeder/internal/reliability"
	"github.com/aristath/breeder/internal/scheduler"
)

// Container holds every long-lived dependency of the application. It is built
// by Wire and handed to the server.
type Container struct {
	// Databases
	RollersDB *database.DB
	CacheDB   *database.DB

	// Repositories
	RollerRepo *rollers.Repository
	OddsRepo   *odds.Repository

	// Services
	EventBus       *events.Bus
	EventManager   *events.Manager
	Cache          *cache.Cache
	Localizer      *i18n.Localizer
	OddsService    *odds.Service
	RollersService *rollers.Service

	// BackupService is nil unless backups are enabled
	BackupService *reliability.BackupService

	Scheduler *scheduler.Scheduler
}

// Databases returns the open databases in a fixed order
func (c *Container) Databases() []*database.DB {
	var dbs []*database.DB
	for _, db := range []*database.DB{c.RollersDB, c.CacheDB} {
		if db != nil {
			dbs = append(dbs, db)
		}
	}
	return dbs
}

// Close closes every database. The scheduler must be stopped first.
func (c *Container) Close() error {
	var firstErr error
	for _, db := range c.Databases() {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
