package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yurifrl/lunchsync/pkg/config"
	"github.com/yurifrl/lunchsync/pkg/normalizer"
	"github.com/yurifrl/lunchsync/pkg/parser"
	"github.com/yurifrl/lunchsync/pkg/plan"
)

type options struct {
	output      string
	format      string
	full        bool
	noDedup     bool
	listParsers bool
	showConfig  bool
	setupDir    string
	uploadLM    bool
	uploadYNAB  bool
	dryRun      bool
	verbose     bool
}

var (
	cfgFile    string
	opts       options
	cliFilters filters
)

var rootCmd = &cobra.Command{
	Use:   "lunchsync [flags] <file|dir>...",
	Short: "Normalize Singapore bank exports into one CSV",
	Example: `  lunchsync --setup ~/Downloads/bank-exports/
  lunchsync ~/Downloads/bank-exports/ -o transactions.csv
  lunchsync ~/Downloads/ --upload-lunchmoney --dry-run
  lunchsync --list-parsers`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		registry := parser.DefaultRegistry(logger)

		if opts.listParsers {
			return listParsers(cmd.OutOrStdout(), registry)
		}

		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}

		switch {
		case opts.showConfig:
			return showConfig(cmd.OutOrStdout(), cfg)
		case opts.setupDir != "":
			return runSetup(cmd, cfg, registry, logger)
		case len(args) == 0:
			return cmd.Help()
		}

		keep, err := cliFilters.toFilterFunc(cmd.Flags())
		if err != nil {
			return err
		}

		n := normalizer.New(registry, cfg.Mappings(), logger, normalizerOptions()...)
		res := n.ProcessFiles(collectPaths(logger, args))
		return emit(cmd, cfg, logger, res, keep, opts.output, opts.full)
	},
}

var planCmd = &cobra.Command{
	Use:   "plan <manifest>",
	Short: "Normalize the statements listed in a YAML manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		p, err := plan.Load(args[0])
		if err != nil {
			return err
		}
		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		keep, err := cliFilters.toFilterFunc(cmd.Flags())
		if err != nil {
			return err
		}

		paths, err := p.Paths()
		if err != nil {
			return err
		}
		overrides, err := p.Overrides()
		if err != nil {
			return err
		}
		output := opts.output
		if !cmd.Flags().Changed("output") {
			if output, err = p.OutputPath(opts.output); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Plan %s\n", args[0])
		p.Print(cmd.ErrOrStderr())

		nopts := append(normalizerOptions(), normalizer.WithOverrides(overrides))
		n := normalizer.New(parser.DefaultRegistry(logger), cfg.Mappings(), logger, nopts...)
		return emit(cmd, cfg, logger, n.ProcessFiles(paths), keep, output, opts.full || p.Full)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Config file (default ./config.json or "+config.DefaultPath()+")")
	flags.StringVarP(&opts.output, "output", "o", "transactions.csv", "Output file, - for stdout")
	flags.StringVar(&opts.format, "format", "csv", "Output format: csv or tsv")
	flags.BoolVar(&opts.full, "full", false, "Add original currency, category and reference columns")
	flags.BoolVar(&opts.noDedup, "no-dedup", false, "Keep duplicate transactions")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging")

	flags.BoolVar(&opts.uploadLM, "upload-lunchmoney", false, "Upload to Lunch Money instead of writing a file")
	flags.BoolVar(&opts.uploadYNAB, "upload-ynab", false, "Upload to YNAB instead of writing a file")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Show what would be uploaded without uploading")
	flags.String("lm-api-key", "", "Lunch Money API key (or LUNCHMONEY_API_KEY)")
	flags.String("ynab-token", "", "YNAB personal access token (or YNAB_TOKEN)")
	flags.String("ynab-budget", "", "YNAB budget id (or YNAB_BUDGET_ID)")
	cliFilters.register(flags)

	rootCmd.Flags().BoolVar(&opts.listParsers, "list-parsers", false, "List supported bank formats")
	rootCmd.Flags().BoolVar(&opts.showConfig, "show-config", false, "Print the loaded configuration")
	rootCmd.Flags().StringVar(&opts.setupDir, "setup", "", "Scan a directory of exports and add the detected accounts to the config")

	rootCmd.AddCommand(planCmd)
}

func newLogger() *log.Logger {
	level := log.InfoLevel
	if opts.verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "lunchsync",
		Level:           level,
	})
}

func normalizerOptions() []normalizer.Option {
	if opts.noDedup {
		return []normalizer.Option{normalizer.WithoutDedup()}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
