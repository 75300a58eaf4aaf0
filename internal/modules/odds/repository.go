package odds

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repository handles odds templates in rollers.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new odds template repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "odds_templates").Logger(),
	}
}

const templateColumns = "id, name, type, config, created_at, updated_at"

// List returns all templates ordered by type then name.
func (r *Repository) List(ctx context.Context) ([]Template, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+templateColumns+" FROM odds_templates ORDER BY type, name")
	if err != nil {
		return nil, fmt.Errorf("failed to list odds templates: %w", err)
	}
	defer rows.Close()

	var templates []Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating odds templates: %w", err)
	}
	return templates, nil
}

// Get returns the template with the given type and name, or nil when absent.
func (r *Repository) Get(ctx context.Context, typ TemplateType, name string) (*Template, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+templateColumns+" FROM odds_templates WHERE type = ? AND name = ?", string(typ), name)
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// Upsert inserts t or replaces the config of the template with the same type and
// name. ID and timestamps are filled in on t.
func (r *Repository) Upsert(ctx context.Context, t *Template) error {
	now := time.Now().UTC().Truncate(time.Second)
	if t.ID == "" {
		t.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO odds_templates (id, name, type, config, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(type, name) DO UPDATE SET
			config = excluded.config,
			updated_at = excluded.updated_at
	`, t.ID, t.Name, string(t.Type), string(t.Config), now.Unix(), now.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert odds template %s/%s: %w", t.Type, t.Name, err)
	}

	stored, err := r.Get(ctx, t.Type, t.Name)
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("odds template %s/%s vanished after upsert", t.Type, t.Name)
	}
	*t = *stored

	r.log.Debug().Str("type", string(t.Type)).Str("name", t.Name).Msg("Odds template saved")
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTemplate(s scanner) (*Template, error) {
	var t Template
	var typ, config string
	var createdAt, updatedAt int64
	if err := s.Scan(&t.ID, &t.Name, &typ, &config, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan odds template: %w", err)
	}
	t.Type = TemplateType(typ)
	t.Config = []byte(config)
	t.CreatedAt = time.Unix(createdAt, 0).UTC()
	t.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &t, nil
}
