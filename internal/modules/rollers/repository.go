package rollers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/breeder/internal/genetics"
)

// Repository handles rollers in rollers.db. Dictionaries and odds tables are
// stored as JSON columns.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new roller repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "rollers").Logger(),
	}
}

const rollerColumns = `id, slug, name, is_core, dictionary, punnett_odds, percentage_odds,
	created_at, updated_at`

// List returns all rollers, core rollers first, then by name.
func (r *Repository) List(ctx context.Context) ([]Roller, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+rollerColumns+" FROM rollers ORDER BY is_core DESC, name, slug")
	if err != nil {
		return nil, fmt.Errorf("failed to list rollers: %w", err)
	}
	defer rows.Close()

	var rollers []Roller
	for rows.Next() {
		roller, err := scanRoller(rows)
		if err != nil {
			return nil, err
		}
		rollers = append(rollers, *roller)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rollers: %w", err)
	}
	return rollers, nil
}

// GetBySlug returns the roller with slug, or nil when there is none.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*Roller, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+rollerColumns+" FROM rollers WHERE slug = ?", slug)
	roller, err := scanRoller(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return roller, err
}

// Slugs returns every stored slug.
func (r *Repository) Slugs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT slug FROM rollers ORDER BY slug")
	if err != nil {
		return nil, fmt.Errorf("failed to list roller slugs: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("failed to scan roller slug: %w", err)
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

// Create inserts roller, filling in its ID and timestamps.
func (r *Repository) Create(ctx context.Context, roller *Roller) error {
	dict, punnett, percentage, err := encodeRoller(roller)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Second)
	if roller.ID == "" {
		roller.ID = uuid.New().String()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO rollers (id, slug, name, is_core, dictionary, punnett_odds, percentage_odds, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, roller.ID, roller.Slug, roller.Name, boolToInt(roller.IsCore), dict, punnett, percentage, now.Unix(), now.Unix())
	if err != nil {
		return fmt.Errorf("failed to create roller %s: %w", roller.Slug, err)
	}

	roller.CreatedAt = now
	roller.UpdatedAt = now
	r.log.Debug().Str("slug", roller.Slug).Str("id", roller.ID).Msg("Roller created")
	return nil
}

// UpdateDictionary replaces the dictionary of the roller with slug.
func (r *Repository) UpdateDictionary(ctx context.Context, slug string, dict genetics.GeneDictionary) error {
	data, err := json.Marshal(dict)
	if err != nil {
		return fmt.Errorf("failed to encode dictionary: %w", err)
	}
	return r.update(ctx, slug, "UPDATE rollers SET dictionary = ?, updated_at = ? WHERE slug = ?", string(data))
}

// UpdateOdds replaces both odds tables of the roller with slug.
func (r *Repository) UpdateOdds(ctx context.Context, slug string, odds genetics.OddsConfig) error {
	punnett, err := json.Marshal(odds.Punnett)
	if err != nil {
		return fmt.Errorf("failed to encode punnett odds: %w", err)
	}
	percentage, err := json.Marshal(odds.Percentage)
	if err != nil {
		return fmt.Errorf("failed to encode percentage odds: %w", err)
	}
	return r.update(ctx, slug,
		"UPDATE rollers SET punnett_odds = ?, percentage_odds = ?, updated_at = ? WHERE slug = ?",
		string(punnett), string(percentage))
}

// Delete removes the roller with slug.
func (r *Repository) Delete(ctx context.Context, slug string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM rollers WHERE slug = ?", slug)
	if err != nil {
		return fmt.Errorf("failed to delete roller %s: %w", slug, err)
	}
	return requireRow(res, slug)
}

func (r *Repository) update(ctx context.Context, slug, query string, values ...interface{}) error {
	args := append(values, time.Now().UTC().Unix(), slug)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update roller %s: %w", slug, err)
	}
	return requireRow(res, slug)
}

func requireRow(res sql.Result, slug string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for roller %s: %w", slug, err)
	}
	if n == 0 {
		return &NotFoundError{Slug: slug}
	}
	return nil
}

func encodeRoller(roller *Roller) (dict, punnett, percentage string, err error) {
	d, err := json.Marshal(roller.Dictionary)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode dictionary: %w", err)
	}
	p, err := json.Marshal(roller.PunnettOdds)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode punnett odds: %w", err)
	}
	pc, err := json.Marshal(roller.PercentageOdds)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode percentage odds: %w", err)
	}
	return string(d), string(p), string(pc), nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRoller(s scanner) (*Roller, error) {
	var roller Roller
	var isCore int
	var dict, punnett, percentage string
	var createdAt, updatedAt int64

	err := s.Scan(&roller.ID, &roller.Slug, &roller.Name, &isCore, &dict, &punnett, &percentage, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan roller: %w", err)
	}

	if err := json.Unmarshal([]byte(dict), &roller.Dictionary); err != nil {
		return nil, fmt.Errorf("failed to decode dictionary of roller %s: %w", roller.Slug, err)
	}
	if err := json.Unmarshal([]byte(punnett), &roller.PunnettOdds); err != nil {
		return nil, fmt.Errorf("failed to decode punnett odds of roller %s: %w", roller.Slug, err)
	}
	if err := json.Unmarshal([]byte(percentage), &roller.PercentageOdds); err != nil {
		return nil, fmt.Errorf("failed to decode percentage odds of roller %s: %w", roller.Slug, err)
	}

	roller.IsCore = isCore != 0
	roller.CreatedAt = time.Unix(createdAt, 0).UTC()
	roller.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &roller, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
