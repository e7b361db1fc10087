package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Layouts use unpadded day and month so both "5/1/2026" and "05/01/2026"
// are accepted.
var dateLayouts = []string{
	"2/1/2006",
	"2 Jan 2006",
	"2-1-2006",
	"2006-1-2",
	"2 January 2006",
	"2-Jan-2006",
	"2 Jan 06",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseDate reads the date formats found in Singapore bank exports and
// returns a UTC calendar date.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"'`))
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrUnparseableDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, raw)
}

var (
	plainNumberRe = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)$`)
	amountNoise   = strings.NewReplacer(" ", "", "\u00a0", "", ",", "")
	// ISO codes and symbols such as SGD, USD, S$, US$ or € on either side.
	currencyRe    = regexp.MustCompile(`^([A-Z]{1,3}[$€£¥]|[$€£¥]|[A-Z]{3})|([A-Z]{3}|[$€£¥])$`)
)

func stripCurrency(s string) string {
	return currencyRe.ReplaceAllString(amountNoise.Replace(s), "")
}

// ParseAmount parses a signed money amount exactly. Parentheses, a leading
// or trailing minus and a DR suffix mean negative; a CR suffix means credit.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.ToUpper(strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"'`)))
	negative := false

	switch {
	case strings.HasSuffix(s, "CR"):
		s = strings.TrimSpace(strings.TrimSuffix(s, "CR"))
	case strings.HasSuffix(s, "DR"):
		s = strings.TrimSpace(strings.TrimSuffix(s, "DR"))
		negative = true
	}

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = s[1 : len(s)-1]
		negative = !negative
	}

	s = stripCurrency(s)

	switch {
	case strings.HasPrefix(s, "-"):
		s = s[1:]
		negative = !negative
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasSuffix(s, "-"):
		s = s[:len(s)-1]
		negative = !negative
	}
	// Currency marker after the sign, as in "-S$12.00".
	s = stripCurrency(s)

	if !plainNumberRe.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnparseableAmount, raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnparseableAmount, raw)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

var (
	whitespaceRe   = regexp.MustCompile(`[\s\x{00a0}]+`)
	maskedCardRe   = regexp.MustCompile(`[•X*]{4}[-\s]*[•X*]{4}[-\s]*[•X*]{4}[-\s]*\d{4}`)
	refNoRe        = regexp.MustCompile(`(?i)\bRef\.?\s*No\.?:?\s*\d+`)
	trailingCodeRe = regexp.MustCompile(`\s+(SG|SGP|MY|GB|US|AU|IN|GBR|MYR|USD|AUD)$`)
)

// CleanDescription strips bank noise from a merchant description. It is
// idempotent.
func CleanDescription(raw string) string {
	s := cleanOnce(raw)
	for {
		next := cleanOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func cleanOnce(s string) string {
	s = collapse(s)
	s = maskedCardRe.ReplaceAllString(s, "")
	s = refNoRe.ReplaceAllString(s, "")
	s = collapse(s)
	s = trailingCodeRe.ReplaceAllString(s, "")
	return collapse(s)
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
