package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/yurifrl/lunchsync/pkg/config"
	"github.com/yurifrl/lunchsync/pkg/csv"
	"github.com/yurifrl/lunchsync/pkg/executors"
	"github.com/yurifrl/lunchsync/pkg/lunchmoney"
	"github.com/yurifrl/lunchsync/pkg/models"
	"github.com/yurifrl/lunchsync/pkg/normalizer"
	"github.com/yurifrl/lunchsync/pkg/parser"
	"github.com/yurifrl/lunchsync/pkg/setup"
	"github.com/yurifrl/lunchsync/pkg/ynab"
)

func listParsers(w io.Writer, registry *parser.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BANK\tPARSER\tTYPE\tFILES")
	for _, info := range registry.List() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.Bank, info.Name, info.AccountType, strings.Join(info.Patterns, ", "))
	}
	return tw.Flush()
}

func showConfig(w io.Writer, cfg *config.Config) error {
	if cfg.Path() == "" {
		fmt.Fprintln(w, "# no config file found, run lunchsync --setup <dir> to create one")
	} else {
		fmt.Fprintf(w, "# %s\n", cfg.Path())
	}
	out, err := cfg.YAML()
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, out)
	return err
}

func runSetup(cmd *cobra.Command, cfg *config.Config, registry *parser.Registry, logger *log.Logger) error {
	out := cmd.OutOrStdout()

	detected := setup.Scan(registry, logger, []string{opts.setupDir})
	if len(detected) == 0 {
		return fmt.Errorf("no accounts found in %s", opts.setupDir)
	}
	fmt.Fprintf(out, "Found %d account(s):\n", len(detected))
	for _, acct := range detected {
		fmt.Fprintf(out, "  %s\n", setup.Name(acct))
	}

	added := setup.Merge(cfg, detected)
	path := cfg.Path()
	if path == "" {
		path = config.DefaultPath()
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Added %d account(s) to %s\n", len(added), path)

	if cfg.LunchMoney.APIKey == "" {
		fmt.Fprintln(out, "Set lunch_money.api_key to list your Lunch Money assets.")
		return nil
	}
	assets, err := lunchmoney.New(cfg.LunchMoney.APIKey, logger).GetAssets(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch lunch money assets: %w", err)
	}
	fmt.Fprintln(out, "\nLunch Money assets, map them under lunch_money.account_mapping:")
	for _, a := range assets {
		fmt.Fprintf(out, "  %-30s id: %d\n", a.Name, a.ID)
	}
	return nil
}

// collectPaths expands directories into their exports. Missing paths are
// kept so the batch reports them as failed files.
func collectPaths(logger *log.Logger, args []string) []string {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := normalizer.ListExports(arg)
		if err != nil {
			logger.Warn("failed to read directory", "dir", arg, "err", err)
			continue
		}
		if len(found) == 0 {
			logger.Warn("no exports found", "dir", arg)
		}
		paths = append(paths, found...)
	}
	return paths
}

// emit reports the batch and then writes or uploads its transactions.
func emit(cmd *cobra.Command, cfg *config.Config, logger *log.Logger, res *normalizer.Result, keep csv.FilterFunc, output string, full bool) error {
	report(cmd.ErrOrStderr(), res)
	if err := res.Err(); err != nil {
		return err
	}

	txs := csv.Filter(res.Transactions, keep)
	if len(txs) < len(res.Transactions) {
		logger.Info("filtered transactions", "kept", len(txs), "dropped", len(res.Transactions)-len(txs))
	}

	if opts.uploadLM || opts.uploadYNAB {
		return upload(cmd, cfg, logger, txs)
	}
	return writeOutput(cmd.OutOrStdout(), logger, txs, output, full)
}

func report(w io.Writer, res *normalizer.Result) {
	if opts.verbose {
		pp.Fprintln(w, res.Files)
	}
	for _, f := range res.Failed() {
		fmt.Fprintf(w, "skipped %s: %v\n", f.Path, f.Err)
	}
	fmt.Fprintln(w, res.Summary())
}

func writeOutput(stdout io.Writer, logger *log.Logger, txs []models.Transaction, output string, full bool) error {
	var csvOpts csv.Options
	switch opts.format {
	case "csv":
		csvOpts = csv.Options{Full: full}
	case "tsv":
		csvOpts = csv.TSV(full)
	default:
		return fmt.Errorf("unknown format %q, want csv or tsv", opts.format)
	}

	if output == "-" {
		return csv.Write(stdout, txs, csvOpts)
	}
	if err := csv.WriteFile(output, txs, csvOpts); err != nil {
		return err
	}
	logger.Info("wrote transactions", "file", output, "count", len(txs))
	return nil
}

func upload(cmd *cobra.Command, cfg *config.Config, logger *log.Logger, txs []models.Transaction) error {
	if opts.uploadLM && opts.uploadYNAB {
		return fmt.Errorf("choose one of --upload-lunchmoney and --upload-ynab")
	}

	var (
		uploader executors.Uploader
		assets   map[string]string
		missing  string
	)
	if opts.uploadLM {
		uploader = lunchmoney.New(cfg.LunchMoney.APIKey, logger)
		assets = cfg.LunchMoneyAssets()
		if cfg.LunchMoney.APIKey == "" {
			missing = "Lunch Money API key required, use --lm-api-key or LUNCHMONEY_API_KEY"
		}
	} else {
		uploader = ynab.New(cfg.YNAB.Token, cfg.YNAB.BudgetID, logger)
		assets = cfg.YNABAccounts()
		if cfg.YNAB.Token == "" || cfg.YNAB.BudgetID == "" {
			missing = "YNAB token and budget id required, use --ynab-token and --ynab-budget"
		}
	}
	if len(assets) == 0 {
		return fmt.Errorf("no %s account mapping configured, see lunchsync --setup", uploader.Name())
	}

	rep := executors.BuildReport(txs, assets)
	exec := executors.New(logger, uploader)
	if opts.dryRun {
		return exec.Plan(cmd.OutOrStdout(), rep)
	}
	if missing != "" {
		return fmt.Errorf("%s", missing)
	}

	result, err := exec.Apply(cmd.Context(), rep)
	if err != nil {
		return err
	}

	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "Upload complete: %d uploaded, %d skipped\n", result.Uploaded, result.Skipped)
	for _, e := range result.Errors {
		fmt.Fprintf(out, "  error: %s\n", e)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d upload error(s)", len(result.Errors))
	}
	return nil
}
