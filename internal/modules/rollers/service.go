package rollers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/breeder/internal/cache"
	"github.com/aristath/breeder/internal/dictionary"
	"github.com/aristath/breeder/internal/events"
	"github.com/aristath/breeder/internal/genetics"
	"github.com/aristath/breeder/internal/modules/odds"
)

// Request fields named by FieldError.
const (
	FieldName       = "name"
	FieldDictionary = "dictionary"
	FieldOdds       = "odds"
	FieldSire       = "sire_genes"
	FieldDam        = "dam_genes"
)

const (
	moduleName    = "rollers"
	lastRollKey   = "last_roll:"
	defaultTTL    = 24 * time.Hour
	coreSeedName  = "Realistic Equine"
	maxNameLength = 120
)

// OddsSource resolves named odds templates
type OddsSource interface {
	PunnettWeights(ctx context.Context, name string) (genetics.PunnettWeights, error)
	PercentageOdds(ctx context.Context, name string) (genetics.PercentageOdds, error)
}

// LastRollStore keeps the most recent roll per roller
type LastRollStore interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
}

// Config tunes the service
type Config struct {
	// MaxGenes caps dictionary size; zero disables the cap
	MaxGenes    int
	LastRollTTL time.Duration
}

// Service implements roller management and breeding
type Service struct {
	repo   *Repository
	odds   OddsSource
	store  LastRollStore
	events *events.Manager
	cfg    Config
	log    zerolog.Logger
}

// NewService creates a new roller service. store and eventManager may be nil.
func NewService(
	repo *Repository,
	oddsSource OddsSource,
	store LastRollStore,
	eventManager *events.Manager,
	cfg Config,
	log zerolog.Logger,
) *Service {
	if cfg.LastRollTTL <= 0 {
		cfg.LastRollTTL = defaultTTL
	}
	return &Service{
		repo:   repo,
		odds:   oddsSource,
		store:  store,
		events: eventManager,
		cfg:    cfg,
		log:    log.With().Str("service", "rollers").Logger(),
	}
}

// List returns every roller.
func (s *Service) List(ctx context.Context) ([]Roller, error) {
	return s.repo.List(ctx)
}

// Get returns the roller with slug or a *NotFoundError.
func (s *Service) Get(ctx context.Context, slug string) (*Roller, error) {
	roller, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if roller == nil {
		return nil, s.notFound(ctx, slug)
	}
	return roller, nil
}

func (s *Service) notFound(ctx context.Context, slug string) error {
	nf := &NotFoundError{Slug: slug}
	slugs, err := s.repo.Slugs(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to load slugs for suggestion")
		return nf
	}
	nf.Suggestion = closestSlug(slug, slugs)
	return nf
}

// Create validates and stores a new roller.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Roller, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &FieldError{Field: FieldName, Err: errors.New("name is required")}
	}
	if len(name) > maxNameLength {
		return nil, &FieldError{Field: FieldName, Err: fmt.Errorf("name must be at most %d characters", maxNameLength)}
	}
	base := Slugify(name)
	if base == "" {
		return nil, &FieldError{Field: FieldName, Err: errors.New("name must contain letters or digits")}
	}

	if err := s.validateDictionary(in.Dictionary); err != nil {
		return nil, err
	}

	oddsConfig, err := s.resolveOdds(ctx, in)
	if err != nil {
		return nil, err
	}

	slugs, err := s.repo.Slugs(ctx)
	if err != nil {
		return nil, err
	}

	roller := &Roller{
		Slug:           uniqueSlug(base, slugs),
		Name:           name,
		IsCore:         in.IsCore,
		Dictionary:     in.Dictionary,
		PunnettOdds:    oddsConfig.Punnett,
		PercentageOdds: oddsConfig.Percentage,
	}
	if err := s.repo.Create(ctx, roller); err != nil {
		return nil, err
	}

	s.log.Info().Str("slug", roller.Slug).Int("genes", len(roller.Dictionary)).Msg("Roller created")
	s.emit(&events.RollerChangedData{
		Type:  events.RollerCreated,
		Slug:  roller.Slug,
		Name:  roller.Name,
		Genes: len(roller.Dictionary),
	})
	return roller, nil
}

func (s *Service) validateDictionary(dict genetics.GeneDictionary) error {
	if len(dict) == 0 {
		return &FieldError{Field: FieldDictionary, Err: errors.New("at least one gene is required")}
	}
	if err := dict.Validate(s.cfg.MaxGenes); err != nil {
		return &FieldError{Field: FieldDictionary, Err: err}
	}
	return nil
}

func (s *Service) resolveOdds(ctx context.Context, in CreateInput) (genetics.OddsConfig, error) {
	if in.Odds != nil {
		if err := validateOdds(*in.Odds); err != nil {
			return genetics.OddsConfig{}, err
		}
		out := *in.Odds
		if out.Punnett == nil {
			out.Punnett = genetics.DefaultPunnettWeights()
		}
		if out.Percentage == nil {
			out.Percentage = genetics.DefaultPercentageOdds()
		}
		return out, nil
	}

	punnettName := in.PunnettTemplate
	if punnettName == "" {
		punnettName = odds.DefaultTemplateName
	}
	percentageName := in.PercentageTemplate
	if percentageName == "" {
		percentageName = odds.DefaultTemplateName
	}

	punnett, err := s.odds.PunnettWeights(ctx, punnettName)
	if err != nil {
		return genetics.OddsConfig{}, fmt.Errorf("failed to resolve punnett template %s: %w", punnettName, err)
	}
	percentage, err := s.odds.PercentageOdds(ctx, percentageName)
	if err != nil {
		return genetics.OddsConfig{}, fmt.Errorf("failed to resolve percentage template %s: %w", percentageName, err)
	}
	return genetics.OddsConfig{Punnett: punnett, Percentage: percentage}, nil
}

func validateOdds(o genetics.OddsConfig) error {
	if err := o.Punnett.Validate(); err != nil {
		return &FieldError{Field: FieldOdds, Err: err}
	}
	if err := o.Percentage.Validate(); err != nil {
		return &FieldError{Field: FieldOdds, Err: err}
	}
	return nil
}

// UpdateDictionary validates and replaces a roller's dictionary. The cached last
// roll is left as is; it still describes the breeding that was run.
func (s *Service) UpdateDictionary(ctx context.Context, slug string, dict genetics.GeneDictionary) (*Roller, error) {
	if err := s.validateDictionary(dict); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateDictionary(ctx, slug, dict); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, s.notFound(ctx, slug)
		}
		return nil, err
	}

	roller, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("slug", slug).Int("genes", len(dict)).Msg("Roller dictionary updated")
	s.emit(&events.RollerChangedData{
		Type:  events.RollerUpdated,
		Slug:  roller.Slug,
		Name:  roller.Name,
		Genes: len(roller.Dictionary),
	})
	return roller, nil
}

// UpdateOdds validates and replaces a roller's odds tables. Nil tables keep
// their stored values.
func (s *Service) UpdateOdds(ctx context.Context, slug string, in genetics.OddsConfig) (*Roller, error) {
	roller, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := validateOdds(in); err != nil {
		return nil, err
	}

	_, current := roller.Genetics()
	if in.Punnett != nil {
		current.Punnett = in.Punnett
	}
	if in.Percentage != nil {
		current.Percentage = in.Percentage
	}
	if err := s.repo.UpdateOdds(ctx, slug, current); err != nil {
		return nil, err
	}

	roller.PunnettOdds = current.Punnett
	roller.PercentageOdds = current.Percentage
	s.emit(&events.RollerChangedData{
		Type:  events.RollerUpdated,
		Slug:  roller.Slug,
		Name:  roller.Name,
		Genes: len(roller.Dictionary),
	})
	return roller, nil
}

// Delete removes a roller. Core rollers cannot be deleted.
func (s *Service) Delete(ctx context.Context, slug string) error {
	roller, err := s.Get(ctx, slug)
	if err != nil {
		return err
	}
	if roller.IsCore {
		return ErrCoreRoller
	}
	if err := s.repo.Delete(ctx, slug); err != nil {
		return err
	}

	s.log.Info().Str("slug", slug).Msg("Roller deleted")
	s.emit(&events.RollerChangedData{Type: events.RollerDeleted, Slug: slug, Name: roller.Name})
	return nil
}

// Roll breeds two free-text parents against the roller's dictionary. Tokens
// are assigned to genes per parent; assignment failures are returned as
// *FieldError naming the parent field.
func (s *Service) Roll(ctx context.Context, slug, sireRaw, damRaw string) (*RollResult, error) {
	roller, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	dict, oddsConfig := roller.Genetics()

	sire, err := genetics.AssignTokensToGenes(genetics.Tokenize(sireRaw), dict)
	if err != nil {
		return nil, &FieldError{Field: FieldSire, Err: err}
	}
	dam, err := genetics.AssignTokensToGenes(genetics.Tokenize(damRaw), dict)
	if err != nil {
		return nil, &FieldError{Field: FieldDam, Err: err}
	}

	results, err := genetics.BreedingOutcomes(sire, dam, dict, oddsConfig)
	if err != nil {
		return nil, &FieldError{Field: FieldOdds, Err: err}
	}

	result := &RollResult{
		Slug:      roller.Slug,
		Genes:     dict.Names(),
		SireGenes: sire,
		DamGenes:  dam,
		Results:   results,
		RolledAt:  time.Now().UTC(),
	}

	if s.store != nil {
		if err := s.store.Set(ctx, lastRollKey+roller.Slug, result, s.cfg.LastRollTTL); err != nil {
			s.log.Warn().Err(err).Str("slug", roller.Slug).Msg("Failed to store last roll")
		}
	}

	data := &events.RollCompletedData{Slug: roller.Slug, Outcomes: len(results)}
	if len(results) > 0 {
		data.Top = results[0].Genotype
		data.TopPercent = results[0].Percentage
	}
	s.emit(data)

	s.log.Debug().Str("slug", roller.Slug).Int("outcomes", len(results)).Msg("Roll completed")
	return result, nil
}

// Compute breeds two parents against a dictionary supplied with the request.
// Nothing is stored and no events are emitted.
func (s *Service) Compute(in ComputeInput) ([]genetics.BreedingResult, error) {
	if err := s.validateDictionary(in.Dictionary); err != nil {
		return nil, err
	}

	oddsConfig := genetics.DefaultOdds()
	if in.Odds != nil {
		if err := validateOdds(*in.Odds); err != nil {
			return nil, err
		}
		if in.Odds.Punnett != nil {
			oddsConfig.Punnett = in.Odds.Punnett
		}
		if in.Odds.Percentage != nil {
			oddsConfig.Percentage = in.Odds.Percentage
		}
	}

	sire, err := alignParent(in.Sire, in.Dictionary)
	if err != nil {
		return nil, &FieldError{Field: "sire", Err: err}
	}
	dam, err := alignParent(in.Dam, in.Dictionary)
	if err != nil {
		return nil, &FieldError{Field: "dam", Err: err}
	}

	results, err := genetics.BreedingOutcomes(sire, dam, in.Dictionary, oddsConfig)
	if err != nil {
		var gerr *genetics.Error
		if errors.As(err, &gerr) && gerr.Gene != "" {
			return nil, &FieldError{Field: "genes." + gerr.Gene, Err: err}
		}
		return nil, &FieldError{Field: FieldOdds, Err: err}
	}
	return results, nil
}

func alignParent(p Parent, dict genetics.GeneDictionary) ([]string, error) {
	if !p.IsAligned {
		return genetics.AssignTokensToGenes(genetics.Tokenize(p.Text), dict)
	}
	if len(p.Aligned) > len(dict) {
		return nil, fmt.Errorf("got %d genotypes for %d genes", len(p.Aligned), len(dict))
	}
	return p.Aligned, nil
}

// LastRoll returns the most recent unexpired roll of slug, or nil when there is
// none.
func (s *Service) LastRoll(ctx context.Context, slug string) (*RollResult, error) {
	if _, err := s.Get(ctx, slug); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, nil
	}

	var result RollResult
	err := s.store.Get(ctx, lastRollKey+slug, &result)
	if errors.Is(err, cache.ErrMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SeedDefaults creates the core roller from doc when it does not exist yet.
// An empty doc name seeds it as "Realistic Equine" under CoreSlug.
func (s *Service) SeedDefaults(ctx context.Context, doc dictionary.Document) (*Roller, error) {
	name := doc.Name
	if name == "" {
		name = coreSeedName
	}
	slug := Slugify(name)

	existing, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	oddsConfig := doc.Odds
	roller, err := s.Create(ctx, CreateInput{
		Name:       name,
		Dictionary: doc.Genes,
		Odds:       &oddsConfig,
		IsCore:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed roller %s: %w", slug, err)
	}
	return roller, nil
}

func (s *Service) emit(data events.EventData) {
	if s.events != nil {
		s.events.Emit(moduleName, data)
	}
}
