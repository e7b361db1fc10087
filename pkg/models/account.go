package models

import (
	"fmt"
	"strings"
)

// AccountMapping maps a card or account identifier to a friendly name.
// Upload targets are keyed by that name in the service sections of the
// config.
type AccountMapping struct {
	Identifier string `json:"identifier" yaml:"identifier"`
	Name       string `json:"name" yaml:"name"`
	Bank       string `json:"bank,omitempty" yaml:"bank,omitempty"`
	Type       string `json:"type,omitempty" yaml:"type,omitempty"`
}

// Matches compares identifiers ignoring dashes and spaces. A match on the
// last four characters is enough when value has at least four.
func (m AccountMapping) Matches(value string) bool {
	self := cleanIdentifier(m.Identifier)
	other := cleanIdentifier(value)
	if self == "" || other == "" {
		return false
	}
	if self == other {
		return true
	}
	return len(other) >= 4 && len(self) >= 4 && self[len(self)-4:] == other[len(other)-4:]
}

type AccountMappings []AccountMapping

// Find returns the first mapping matching the identifier.
func (ms AccountMappings) Find(identifier string) (AccountMapping, bool) {
	for _, m := range ms {
		if m.Matches(identifier) {
			return m, true
		}
	}
	return AccountMapping{}, false
}

// Resolve turns a parser account reference into a display label. The
// product fallback only applies when the parser found no identifier.
func (ms AccountMappings) Resolve(ref AccountRef) string {
	if ref.ID == "" {
		if ref.Fallback != "" {
			return ref.Fallback
		}
		return UnknownAccountLabel("")
	}
	if m, ok := ms.Find(ref.ID); ok {
		return m.Name
	}
	return UnknownAccountLabel(ref.ID)
}

// UnknownAccountLabel renders an unmapped identifier as "Unknown (1234)".
func UnknownAccountLabel(identifier string) string {
	cleaned := cleanIdentifier(identifier)
	switch {
	case cleaned == "":
		return "Unknown"
	case len(cleaned) < 4:
		return fmt.Sprintf("Unknown (%s)", cleaned)
	default:
		return fmt.Sprintf("Unknown (%s)", cleaned[len(cleaned)-4:])
	}
}

// DetectedAccount is an account found while scanning exports during setup.
type DetectedAccount struct {
	CardNumber  string `json:"card_number"`
	Bank        string `json:"bank"`
	AccountType string `json:"account_type"`
	DisplayHint string `json:"display_hint"`
}

// MaskCardNumber keeps the last four digits: ****1234.
func MaskCardNumber(identifier string) string {
	cleaned := cleanIdentifier(identifier)
	if len(cleaned) <= 4 {
		return cleaned
	}
	return "****" + cleaned[len(cleaned)-4:]
}

func cleanIdentifier(s string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(s))
}
