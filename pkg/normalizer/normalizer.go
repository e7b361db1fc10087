package normalizer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/yurifrl/lunchsync/pkg/models"
	"github.com/yurifrl/lunchsync/pkg/parser"
)

// Extensions accepted by ProcessDirectory.
var Extensions = []string{".csv", ".xls"}

// Normalizer turns a batch of bank exports into one ordered, deduplicated
// list of transactions.
type Normalizer struct {
	registry  *parser.Registry
	accounts  models.AccountMappings
	logger    *log.Logger
	dedup     bool
	overrides map[string]string
}

type Option func(*Normalizer)

// WithoutDedup keeps duplicate transactions.
func WithoutDedup() Option {
	return func(n *Normalizer) { n.dedup = false }
}

// WithOverrides labels every transaction of a file with a fixed account,
// keyed by file path.
func WithOverrides(overrides map[string]string) Option {
	return func(n *Normalizer) {
		for path, label := range overrides {
			n.overrides[filepath.Clean(path)] = label
		}
	}
}

func New(registry *parser.Registry, accounts models.AccountMappings, logger *log.Logger, opts ...Option) *Normalizer {
	n := &Normalizer{
		registry:  registry,
		accounts:  accounts,
		logger:    logger,
		dedup:     true,
		overrides: make(map[string]string),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ProcessFiles parses every file. A failing file is recorded in the result
// and never aborts the batch.
func (n *Normalizer) ProcessFiles(paths []string) *Result {
	res := &Result{}
	var all []models.Transaction
	for _, path := range paths {
		fr, txs := n.processFile(path)
		res.Files = append(res.Files, fr)
		all = append(all, txs...)
	}
	n.finish(res, all)
	return res
}

// ProcessDirectory processes the CSV and XLS files directly inside dir in
// lexical order.
func (n *Normalizer) ProcessDirectory(dir string) (*Result, error) {
	paths, err := ListExports(dir)
	if err != nil {
		return nil, err
	}
	n.logger.Debug("found exports", "dir", dir, "count", len(paths))
	return n.ProcessFiles(paths), nil
}

// ProcessContent runs the pipeline over in-memory uploads.
func (n *Normalizer) ProcessContent(files []Upload) *Result {
	res := &Result{}
	var all []models.Transaction
	for _, f := range files {
		fr := FileResult{Path: f.Name}
		content, err := parser.Decode(f.Name, f.Data)
		if err != nil {
			fr.Err = err
			n.logFailure(fr)
			res.Files = append(res.Files, fr)
			continue
		}
		fr, txs := n.parse(f.Name, content)
		res.Files = append(res.Files, fr)
		all = append(all, txs...)
	}
	n.finish(res, all)
	return res
}

// Upload is a named file held in memory.
type Upload struct {
	Name string
	Data []byte
}

// ListExports returns the CSV and XLS files of dir, not recursing.
func ListExports(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading directory: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !hasExportExtension(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func hasExportExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (n *Normalizer) processFile(path string) (FileResult, []models.Transaction) {
	content, err := parser.ReadFile(path)
	if err != nil {
		fr := FileResult{Path: path, Err: err}
		n.logFailure(fr)
		return fr, nil
	}
	return n.parse(path, content)
}

func (n *Normalizer) parse(path, content string) (FileResult, []models.Transaction) {
	fr := FileResult{Path: path}

	p, err := n.registry.Detect(content, path)
	if err != nil {
		fr.Err = err
		n.logFailure(fr)
		return fr, nil
	}
	fr.Parser = p.Name()

	st, err := p.Parse(content)
	if err != nil {
		fr.Err = fmt.Errorf("%s: %w", p.Name(), err)
		n.logFailure(fr)
		return fr, nil
	}
	fr.Warnings = st.Warnings
	fr.PendingSkipped = st.PendingSkipped
	for _, w := range st.Warnings {
		n.logger.Debug("skipped row", "file", path, "line", w.Line, "err", w.Err)
	}

	override := n.overrides[filepath.Clean(path)]
	txs := make([]models.Transaction, 0, len(st.Transactions))
	for _, tx := range st.Transactions {
		label := override
		if label == "" {
			label = n.accounts.Resolve(tx.Ref())
		}
		txs = append(txs, tx.WithAccount(label))
	}
	fr.Count = len(txs)

	n.logger.Info("parsed file", "file", filepath.Base(path), "parser", p.Name(), "transactions", fr.Count,
		"skipped_rows", len(st.Warnings), "pending_skipped", st.PendingSkipped)
	return fr, txs
}

func (n *Normalizer) logFailure(fr FileResult) {
	n.logger.Warn("skipping file", "file", fr.Path, "err", fr.Err)
}

// finish deduplicates and orders the merged transactions. Sorting is stable
// so same-day transactions keep the order in which files were given.
func (n *Normalizer) finish(res *Result, all []models.Transaction) {
	if n.dedup {
		all, res.Duplicates = Deduplicate(all)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date().Before(all[j].Date())
	})
	res.Transactions = all
}

// Deduplicate keeps the first occurrence of each transaction key and reports
// how many were dropped.
func Deduplicate(txs []models.Transaction) ([]models.Transaction, int) {
	seen := make(map[models.Key]struct{}, len(txs))
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		key := tx.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tx)
	}
	return out, len(txs) - len(out)
}
