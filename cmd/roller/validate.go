package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func validateCmd(opts *rootOptions) *cobra.Command {
	var dictPath string
	var maxGenes int

	c := &cobra.Command{
		Use:   "validate",
		Short: "Validate a dictionary file and its odds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := loadDocument(dictPath)
			if err != nil {
				return err
			}

			if err := doc.Genes.Validate(maxGenes); err != nil {
				return fmt.Errorf("%s", opts.localize(err))
			}
			if err := doc.Odds.Punnett.Validate(); err != nil {
				return fmt.Errorf("punnett odds: %w", err)
			}
			if err := doc.Odds.Percentage.Validate(); err != nil {
				return fmt.Errorf("percentage odds: %s", opts.localize(err))
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "OK: %s (%d genes)\n", doc.Name, len(doc.Genes))
			for _, g := range doc.Genes {
				fmt.Fprintf(w, "  %-12s %-10s %v\n", g.Name, g.OddsType, g.Alleles)
			}
			return nil
		},
	}

	c.Flags().StringVarP(&dictPath, "dict", "d", "", "dictionary YAML file (required)")
	c.Flags().IntVar(&maxGenes, "max-genes", 12, "maximum number of genes; 0 disables the check")

	_ = c.MarkFlagRequired("dict")
	return c
}
