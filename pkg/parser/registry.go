package parser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/yurifrl/lunchsync/pkg/models"
)

// Info describes a registered parser for listings.
type Info struct {
	Bank        string   `json:"bank" yaml:"bank"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	AccountType string   `json:"account_type" yaml:"account_type"`
	Patterns    []string `json:"patterns" yaml:"patterns"`
}

// Registry holds bank parsers in registration order. When several parsers
// claim a file the first registered one wins.
type Registry struct {
	logger  *log.Logger
	parsers []BankParser
	keys    map[string]struct{}
}

func NewRegistry(logger *log.Logger) *Registry {
	return &Registry{
		logger: logger,
		keys:   make(map[string]struct{}),
	}
}

func registryKey(p BankParser) string {
	return strings.ToLower(p.Bank() + "/" + p.Name())
}

func (r *Registry) Register(p BankParser) error {
	key := registryKey(p)
	if _, ok := r.keys[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateParser, key)
	}
	r.keys[key] = struct{}{}
	r.parsers = append(r.parsers, p)
	return nil
}

// MustRegister panics on duplicates; a broken parser table is a startup bug.
func (r *Registry) MustRegister(p BankParser) {
	if err := r.Register(p); err != nil {
		panic(err)
	}
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry(logger *log.Logger) *Registry {
	r := NewRegistry(logger)
	for _, p := range []BankParser{
		OCBCCredit{},
		OCBC360{},
		DBSSavings{},
		DBSCredit{},
		UOBCredit{},
		HSBCRevolution{},
		Citi{},
		Normalized{},
	} {
		r.MustRegister(p)
	}
	return r
}

// Detect returns the first registered parser accepting content.
func (r *Registry) Detect(content, path string) (BankParser, error) {
	var found BankParser
	for _, p := range r.parsers {
		if !safeCanParse(p, content, path) {
			continue
		}
		if found == nil {
			found = p
			continue
		}
		r.logger.Warn("multiple parsers accept file, using first registered",
			"file", path, "using", found.Name(), "also", p.Name())
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoMatchingParser, path)
	}
	r.logger.Debug("detected format", "file", path, "parser", found.Name())
	return found, nil
}

// DetectAccount returns the account of the first parser that accepts and
// identifies content.
func (r *Registry) DetectAccount(content, path string) (models.DetectedAccount, bool) {
	for _, p := range r.parsers {
		if !safeCanParse(p, content, path) {
			continue
		}
		if acct, ok := p.DetectAccount(content); ok {
			return acct, true
		}
	}
	return models.DetectedAccount{}, false
}

// List returns parser descriptions in registration order.
func (r *Registry) List() []Info {
	out := make([]Info, 0, len(r.parsers))
	for _, p := range r.parsers {
		out = append(out, Info{
			Bank:        p.Bank(),
			Name:        p.Name(),
			Description: p.Description(),
			AccountType: p.AccountType(),
			Patterns:    append([]string(nil), p.FilePatterns()...),
		})
	}
	return out
}

func (r *Registry) Len() int { return len(r.parsers) }

func safeCanParse(p BankParser, content, path string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return p.CanParse(content, path)
}
