// Package main is the roller command line tool: it computes breeding outcomes
// from a dictionary file without running the server.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/aristath/breeder/internal/i18n"
	"github.com/aristath/breeder/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	lang     string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "roller",
		Short:        "Compute breeding outcome distributions from a gene dictionary",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.SetGlobalLogger(logger.New(logger.Config{
				Level:  opts.logLevel,
				Pretty: true,
				Output: cmd.ErrOrStderr(),
			}))
		},
	}

	cmd.PersistentFlags().StringVar(&opts.lang, "lang", "en-US", "language for error messages")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(rollCmd(opts), validateCmd(opts))
	return cmd
}

// localize renders err in the requested language. A broken locale catalog or an
// unknown language falls back to the plain error text.
func (o *rootOptions) localize(err error) string {
	l, lerr := i18n.New()
	if lerr != nil {
		return err.Error()
	}
	tag, perr := language.Parse(o.lang)
	if perr != nil {
		tag = i18n.Fallback
	}
	return l.Localize(err, tag)
}
