package genetics

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies engine failures.
type ErrorKind string

const (
	KindEmptyGenotype             ErrorKind = "EMPTY_GENOTYPE"
	KindUnparseableGenotype       ErrorKind = "UNPARSEABLE_GENOTYPE"
	KindInvalidPercentageGenotype ErrorKind = "INVALID_PERCENTAGE_GENOTYPE"
	KindInvalidOutcomeLabel       ErrorKind = "INVALID_OUTCOME_LABEL"
	KindInsufficientTokens        ErrorKind = "INSUFFICIENT_TOKENS"
	KindUnassignableGene          ErrorKind = "UNASSIGNABLE_GENE"
	KindInvalidGeneSpec           ErrorKind = "INVALID_GENE_SPEC"
)

// Error is the single error type returned by the engine. Only the context fields
// relevant to Kind are set.
type Error struct {
	Kind     ErrorKind
	Gene     string
	Genotype string
	Alleles  []string
	Label    string
	Required []string
	Need     int
	Got      int
	Detail   string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Gene != "" {
		fmt.Fprintf(&b, " gene=%s", e.Gene)
	}

	switch e.Kind {
	case KindEmptyGenotype:
		b.WriteString(": genotype is empty")
	case KindUnparseableGenotype:
		fmt.Fprintf(&b, ": cannot split %q into two of [%s]", e.Genotype, strings.Join(e.Alleles, ", "))
	case KindInvalidPercentageGenotype:
		fmt.Fprintf(&b, ": %q is not a valid percentage genotype for [%s]", e.Genotype, strings.Join(e.Alleles, ", "))
	case KindInvalidOutcomeLabel:
		fmt.Fprintf(&b, ": unknown outcome label %q", e.Label)
	case KindInsufficientTokens:
		fmt.Fprintf(&b, ": need %d genotypes (%s), got %d", e.Need, strings.Join(e.Required, ", "), e.Got)
	case KindUnassignableGene:
		fmt.Fprintf(&b, ": no genotype matches alleles [%s]", strings.Join(e.Alleles, ", "))
	case KindInvalidGeneSpec:
		fmt.Fprintf(&b, ": %s", e.Detail)
		if e.Need > 0 {
			fmt.Fprintf(&b, " (max %d, got %d)", e.Need, e.Got)
		}
	}
	return b.String()
}

// Is reports kind equality so errors.Is works against a bare &Error{Kind: k}.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// withGene stamps the gene name on engine errors that were raised without it.
func withGene(err error, gene string) error {
	var gerr *Error
	if errors.As(err, &gerr) && gerr.Gene == "" {
		cp := *gerr
		cp.Gene = gene
		return &cp
	}
	return err
}
