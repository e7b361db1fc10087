package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/yurifrl/lunchsync/pkg/csv"
	"github.com/yurifrl/lunchsync/pkg/models"
)

type filters struct {
	startDate string
	endDate   string
	minAmount float64
	maxAmount float64
	match     string
}

func (f *filters) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.startDate, "start", "", "Start date (YYYY-MM-DD)")
	flags.StringVar(&f.endDate, "end", "", "End date (YYYY-MM-DD)")
	flags.Float64Var(&f.minAmount, "min", 0, "Minimum amount")
	flags.Float64Var(&f.maxAmount, "max", 0, "Maximum amount")
	flags.StringVar(&f.match, "match", "", "Filter by description (case insensitive)")
}

// toFilterFunc builds the filter. Amount bounds apply only when their flag
// was set, so --min 0 keeps inflows only.
func (f *filters) toFilterFunc(flags *pflag.FlagSet) (csv.FilterFunc, error) {
	var start, end time.Time
	var err error
	if f.startDate != "" {
		if start, err = time.Parse(models.DateLayout, f.startDate); err != nil {
			return nil, fmt.Errorf("invalid --start %q: want YYYY-MM-DD", f.startDate)
		}
	}
	if f.endDate != "" {
		if end, err = time.Parse(models.DateLayout, f.endDate); err != nil {
			return nil, fmt.Errorf("invalid --end %q: want YYYY-MM-DD", f.endDate)
		}
	}
	hasMin, hasMax := flags.Changed("min"), flags.Changed("max")
	minAmount, maxAmount := decimal.NewFromFloat(f.minAmount), decimal.NewFromFloat(f.maxAmount)
	match := strings.ToLower(f.match)

	if start.IsZero() && end.IsZero() && !hasMin && !hasMax && match == "" {
		return nil, nil
	}

	return func(t models.Transaction) bool {
		if !start.IsZero() && t.Date().Before(start) {
			return false
		}
		if !end.IsZero() && t.Date().After(end) {
			return false
		}
		if hasMin && t.Amount().LessThan(minAmount) {
			return false
		}
		if hasMax && t.Amount().GreaterThan(maxAmount) {
			return false
		}
		if match != "" && !strings.Contains(strings.ToLower(t.Description()), match) {
			return false
		}
		return true
	}, nil
}
