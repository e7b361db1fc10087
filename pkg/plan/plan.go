package plan

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Plan is a batch manifest: which exports to read, which account each one
// belongs to, and where to write the result.
type Plan struct {
	Output     string      `yaml:"output"`
	Full       bool        `yaml:"full"`
	Statements []Statement `yaml:"statements"`

	dir string
}

// Statement is one export file. Account, when set, labels every
// transaction of the file and wins over card number mapping.
type Statement struct {
	File    string `yaml:"file"`
	Account string `yaml:"account"`
}

// Load reads a manifest. Relative paths are resolved against the
// manifest's directory.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if len(p.Statements) == 0 {
		return nil, fmt.Errorf("plan has no statements")
	}
	for i, st := range p.Statements {
		if strings.TrimSpace(st.File) == "" {
			return nil, fmt.Errorf("statement %d has no file", i+1)
		}
	}
	p.dir = filepath.Dir(path)
	return &p, nil
}

// Paths returns the resolved statement files in manifest order.
func (p *Plan) Paths() ([]string, error) {
	out := make([]string, 0, len(p.Statements))
	for _, st := range p.Statements {
		path, err := p.resolve(st.File)
		if err != nil {
			return nil, err
		}
		out = append(out, path)
	}
	return out, nil
}

// Overrides maps resolved file paths to their fixed account label.
func (p *Plan) Overrides() (map[string]string, error) {
	out := make(map[string]string)
	for _, st := range p.Statements {
		if st.Account == "" {
			continue
		}
		path, err := p.resolve(st.File)
		if err != nil {
			return nil, err
		}
		out[path] = st.Account
	}
	return out, nil
}

// OutputPath is the resolved output file, or fallback when unset.
func (p *Plan) OutputPath(fallback string) (string, error) {
	if p.Output == "" {
		return fallback, nil
	}
	return p.resolve(p.Output)
}

func (p *Plan) resolve(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}
	if filepath.IsAbs(path) || p.dir == "" {
		return filepath.Clean(path), nil
	}
	return filepath.Join(p.dir, path), nil
}

func (p *Plan) Print(w io.Writer) {
	if p.Output != "" {
		fmt.Fprintf(w, "output: %s (full=%t)\n", p.Output, p.Full)
	}
	for i, st := range p.Statements {
		account := st.Account
		if account == "" {
			account = "(detected)"
		}
		fmt.Fprintf(w, "[%d] file=%s account=%s\n", i+1, st.File, account)
	}
}
