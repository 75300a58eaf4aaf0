package odds

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/breeder/internal/genetics"
)

// Service resolves odds tables from templates, falling back to engine defaults.
type Service struct {
	repo *Repository
	log  zerolog.Logger
}

// NewService creates a new odds service
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("service", "odds").Logger(),
	}
}

// List returns every stored template.
func (s *Service) List(ctx context.Context) ([]Template, error) {
	return s.repo.List(ctx)
}

// Save validates and stores a template config under typ/name.
func (s *Service) Save(ctx context.Context, typ TemplateType, name string, config json.RawMessage) (*Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("odds template name is required")
	}
	t := &Template{Name: name, Type: typ, Config: config}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info().Str("type", string(typ)).Str("name", name).Msg("Odds template saved")
	return t, nil
}

// PunnettWeights returns the named punnett template, or the default grid when
// no such template exists.
func (s *Service) PunnettWeights(ctx context.Context, name string) (genetics.PunnettWeights, error) {
	t, err := s.repo.Get(ctx, TypePunnett, name)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return genetics.DefaultPunnettWeights(), nil
	}
	return t.Punnett()
}

// PercentageOdds returns the named percentage template, or the default band
// table when no such template exists.
func (s *Service) PercentageOdds(ctx context.Context, name string) (genetics.PercentageOdds, error) {
	t, err := s.repo.Get(ctx, TypePercentage, name)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return genetics.DefaultPercentageOdds(), nil
	}
	return t.Percentage()
}

// SeedDefaults stores the engine default tables as the "default" templates when
// they are missing. Existing templates are left untouched.
func (s *Service) SeedDefaults(ctx context.Context) error {
	defaults := genetics.DefaultOdds()
	seeds := []struct {
		typ   TemplateType
		value interface{}
	}{
		{TypePunnett, defaults.Punnett},
		{TypePercentage, defaults.Percentage},
	}

	for _, seed := range seeds {
		existing, err := s.repo.Get(ctx, seed.typ, DefaultTemplateName)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		config, err := json.Marshal(seed.value)
		if err != nil {
			return fmt.Errorf("failed to encode default %s odds: %w", seed.typ, err)
		}
		if err := s.repo.Upsert(ctx, &Template{Name: DefaultTemplateName, Type: seed.typ, Config: config}); err != nil {
			return err
		}
		s.log.Info().Str("type", string(seed.typ)).Msg("Seeded default odds template")
	}
	return nil
}
