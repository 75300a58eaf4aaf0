// Package i18n localizes user-facing messages, engine errors in particular,
// using golang.org/x/text message catalogs loaded from embedded YAML files.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"

	"github.com/aristath/breeder/internal/genetics"
)

//go:embed locales/*.yaml
var localesFS embed.FS

// Fallback is used when no supported language matches the request.
var Fallback = language.AmericanEnglish

type localeFile struct {
	Language string            `yaml:"language"`
	Messages map[string]string `yaml:"messages"`
}

// Localizer resolves request languages and renders catalog messages.
type Localizer struct {
	catalog   *catalog.Builder
	supported []language.Tag
	matcher   language.Matcher
}

// New loads every embedded locale.
func New() (*Localizer, error) {
	entries, err := localesFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to list locales: %w", err)
	}

	b := catalog.NewBuilder(catalog.Fallback(Fallback))
	supported := []language.Tag{Fallback}
	for _, entry := range entries {
		data, err := localesFS.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", entry.Name(), err)
		}

		var file localeFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse locale %s: %w", entry.Name(), err)
		}
		tag, err := language.Parse(file.Language)
		if err != nil {
			return nil, fmt.Errorf("locale %s: %w", entry.Name(), err)
		}

		for key, msg := range file.Messages {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("locale %s, message %s: %w", entry.Name(), key, err)
			}
		}
		if tag != Fallback {
			supported = append(supported, tag)
		}
	}

	return &Localizer{
		catalog:   b,
		supported: supported,
		matcher:   language.NewMatcher(supported),
	}, nil
}

// MustNew is New for package-level initialisation; it panics on a broken locale.
func MustNew() *Localizer {
	l, err := New()
	if err != nil {
		panic(err)
	}
	return l
}

// Supported returns the loaded languages, fallback first.
func (l *Localizer) Supported() []language.Tag {
	return append([]language.Tag(nil), l.supported...)
}

// Match picks the best supported language for the given preferences.
func (l *Localizer) Match(prefs ...language.Tag) language.Tag {
	if len(prefs) == 0 {
		return Fallback
	}
	_, idx, conf := l.matcher.Match(prefs...)
	if conf == language.No {
		return Fallback
	}
	return l.supported[idx]
}

// Resolve picks the response language for r: the lang query parameter wins over
// the Accept-Language header.
func (l *Localizer) Resolve(r *http.Request) language.Tag {
	if q := r.URL.Query().Get("lang"); q != "" {
		if tag, err := language.Parse(q); err == nil {
			return l.Match(tag)
		}
	}
	prefs, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil {
		return Fallback
	}
	return l.Match(prefs...)
}

// Printer returns a printer bound to the catalog for the closest supported
// language.
func (l *Localizer) Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(l.Match(tag), message.Catalog(l.catalog))
}

// Sprintf renders the catalog message key in tag.
func (l *Localizer) Sprintf(tag language.Tag, key string, args ...interface{}) string {
	return l.Printer(tag).Sprintf(key, args...)
}

// Localize renders err for a user. Engine errors are rendered from their
// structured fields; anything else falls back to err.Error().
func (l *Localizer) Localize(err error, tag language.Tag) string {
	var gerr *genetics.Error
	if !errors.As(err, &gerr) {
		return err.Error()
	}

	p := l.Printer(tag)
	alleles := "[" + strings.Join(gerr.Alleles, ", ") + "]"

	switch gerr.Kind {
	case genetics.KindEmptyGenotype:
		return p.Sprintf(string(gerr.Kind), gerr.Gene)
	case genetics.KindUnparseableGenotype:
		return p.Sprintf(string(gerr.Kind), gerr.Gene, gerr.Genotype, alleles)
	case genetics.KindInvalidPercentageGenotype:
		marker := ""
		if len(gerr.Alleles) > 0 {
			marker = gerr.Alleles[0]
		}
		return p.Sprintf(string(gerr.Kind), gerr.Gene, gerr.Genotype, marker)
	case genetics.KindInvalidOutcomeLabel:
		if gerr.Gene == "" {
			return p.Sprintf(string(gerr.Kind)+".no_gene", gerr.Label)
		}
		return p.Sprintf(string(gerr.Kind), gerr.Gene, gerr.Label)
	case genetics.KindInsufficientTokens:
		return p.Sprintf(string(gerr.Kind), gerr.Need, strings.Join(gerr.Required, ", "), gerr.Got)
	case genetics.KindUnassignableGene:
		return p.Sprintf(string(gerr.Kind), gerr.Gene, alleles)
	case genetics.KindInvalidGeneSpec:
		return l.localizeGeneSpec(p, gerr)
	}
	return err.Error()
}

func (l *Localizer) localizeGeneSpec(p *message.Printer, gerr *genetics.Error) string {
	key := string(genetics.KindInvalidGeneSpec) + "." + strings.ReplaceAll(gerr.Detail, " ", "_")

	switch gerr.Detail {
	case "too many genes":
		return p.Sprintf(key, gerr.Need, gerr.Got)
	case "gene name is required":
		return p.Sprintf(key)
	case "duplicate gene name", "unknown odds type", "at least one allele is required",
		"allele must not be empty", "allele is too long", "percentage genes take exactly one allele":
		return p.Sprintf(key, gerr.Gene)
	}
	return p.Sprintf(string(genetics.KindInvalidGeneSpec), gerr.Gene, gerr.Detail)
}
