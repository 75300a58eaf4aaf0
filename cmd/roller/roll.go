package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aristath/breeder/internal/dictionary"
	"github.com/aristath/breeder/internal/genetics"
)

const (
	formatPretty = "pretty"
	formatJSON   = "json"
)

// rollOutput is the json format of a roll
type rollOutput struct {
	Dictionary string                    `json:"dictionary"`
	Genes      []string                  `json:"genes"`
	Sire       []string                  `json:"sire"`
	Dam        []string                  `json:"dam"`
	Results    []genetics.BreedingResult `json:"results"`
}

func rollCmd(opts *rootOptions) *cobra.Command {
	var dictPath, sire, dam, format string

	c := &cobra.Command{
		Use:   "roll",
		Short: "Compute the offspring distribution of two parents",
		Example: `  roller roll --sire "Ee/Aa nZ" --dam "ee AA"
  roller roll --dict canine.yaml --sire "..." --dam "..." --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != formatPretty && format != formatJSON {
				return fmt.Errorf("unknown format %q (use %s or %s)", format, formatPretty, formatJSON)
			}

			doc, err := loadDocument(dictPath)
			if err != nil {
				return err
			}

			sireGenes, err := assignParent("sire", sire, doc.Genes, opts)
			if err != nil {
				return err
			}
			damGenes, err := assignParent("dam", dam, doc.Genes, opts)
			if err != nil {
				return err
			}

			results, err := genetics.BreedingOutcomes(sireGenes, damGenes, doc.Genes, doc.Odds)
			if err != nil {
				return fmt.Errorf("%s", opts.localize(err))
			}
			log.Debug().Str("dictionary", doc.Name).Int("outcomes", len(results)).Msg("Roll computed")

			out := rollOutput{
				Dictionary: doc.Name,
				Genes:      doc.Genes.Names(),
				Sire:       sireGenes,
				Dam:        damGenes,
				Results:    results,
			}
			if format == formatJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			return printPretty(cmd.OutOrStdout(), out)
		},
	}

	c.Flags().StringVarP(&dictPath, "dict", "d", "", "dictionary YAML file (built-in Realistic Equine when omitted)")
	c.Flags().StringVarP(&sire, "sire", "s", "", "sire genotypes, e.g. \"Ee/Aa nZ\" (required)")
	c.Flags().StringVarP(&dam, "dam", "m", "", "dam genotypes (required)")
	c.Flags().StringVarP(&format, "format", "f", formatPretty, "output format: pretty or json")

	_ = c.MarkFlagRequired("sire")
	_ = c.MarkFlagRequired("dam")
	return c
}

func loadDocument(path string) (dictionary.Document, error) {
	if path == "" {
		return dictionary.Default(), nil
	}
	return dictionary.Load(path)
}

func assignParent(which, raw string, dict genetics.GeneDictionary, opts *rootOptions) ([]string, error) {
	genes, err := genetics.AssignTokensToGenes(genetics.Tokenize(raw), dict)
	if err != nil {
		return nil, fmt.Errorf("%s: %s", which, opts.localize(err))
	}
	return genes, nil
}

func printPretty(w io.Writer, out rollOutput) error {
	fmt.Fprintf(w, "%s\n", out.Dictionary)
	fmt.Fprintf(w, "  sire: %s\n", strings.Join(nonEmpty(out.Sire), " "))
	fmt.Fprintf(w, "  dam:  %s\n\n", strings.Join(nonEmpty(out.Dam), " "))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	for _, r := range out.Results {
		fmt.Fprintf(tw, "%s%%\t  %s\t\n", r.Percentage, strings.Join(nonEmpty(r.Genotype), " "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d outcomes\n", len(out.Results))
	return nil
}

func nonEmpty(genotypes []string) []string {
	kept := make([]string, 0, len(genotypes))
	for _, g := range genotypes {
		if g != "" {
			kept = append(kept, g)
		}
	}
	return kept
}
