package setup

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/lunchsync/pkg/config"
	"github.com/yurifrl/lunchsync/pkg/models"
	"github.com/yurifrl/lunchsync/pkg/normalizer"
	"github.com/yurifrl/lunchsync/pkg/parser"
)

// Scan reads every export under paths and returns the accounts the parsers
// can identify, one per card or account number, in file order. Directories
// are scanned without recursion. Unreadable files are logged and skipped.
func Scan(registry *parser.Registry, logger *log.Logger, paths []string) []models.DetectedAccount {
	var accounts []models.DetectedAccount
	seen := make(map[string]struct{})

	for _, path := range expand(logger, paths) {
		content, err := parser.ReadFile(path)
		if err != nil {
			logger.Warn("skipping file", "file", path, "err", err)
			continue
		}
		acct, ok := registry.DetectAccount(content, path)
		if !ok || acct.CardNumber == "" {
			logger.Debug("no account detected", "file", path)
			continue
		}
		if _, dup := seen[acct.CardNumber]; dup {
			continue
		}
		seen[acct.CardNumber] = struct{}{}
		accounts = append(accounts, acct)
	}
	return accounts
}

func expand(logger *log.Logger, paths []string) []string {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			logger.Warn("skipping path", "path", p, "err", err)
			continue
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := normalizer.ListExports(p)
		if err != nil {
			logger.Warn("skipping directory", "path", p, "err", err)
			continue
		}
		files = append(files, found...)
	}
	return files
}

// Name is the default label for a detected account, e.g.
// "OCBC Credit Card ****3456".
func Name(acct models.DetectedAccount) string {
	return strings.TrimSpace(acct.DisplayHint + " " + models.MaskCardNumber(acct.CardNumber))
}

// Merge adds detected accounts that cfg does not know yet and returns the
// added entries. Existing entries, including their names, are kept.
func Merge(cfg *config.Config, detected []models.DetectedAccount) []config.Account {
	var added []config.Account
	for _, acct := range detected {
		if _, ok := cfg.Mappings().Find(acct.CardNumber); ok {
			continue
		}
		entry := config.Account{
			Identifier: acct.CardNumber,
			Name:       Name(acct),
			Bank:       acct.Bank,
			Type:       acct.AccountType,
		}
		cfg.Accounts = append(cfg.Accounts, entry)
		added = append(added, entry)
	}
	return added
}
