package filtering

import (
	"context"
	"fmt"

	"github.com/baileyram/somewherescout/internal/jobs"
)

// usdRates converts one unit of the given currency into USD, the base
// currency of every posting. The rates are fixed by design; the conversion is
// one-directional and used only for comparison, never to mutate salaries.
var usdRates = map[string]float64{
	"USD": 1.0,
	"EUR": 1.08,
	"GBP": 1.27,
}

type minSalaryFilter struct {
	minSalary int
	currency  string
}

// NewMinSalary creates a filter that drops postings paying less than the
// minimum, after normalizing the minimum from the given currency to USD.
func NewMinSalary(minSalary int, currency string) Filter {
	return &minSalaryFilter{minSalary: minSalary, currency: currency}
}

func (f *minSalaryFilter) Name() string { return "min_salary" }

func (f *minSalaryFilter) Disable(string) {}

func (f *minSalaryFilter) IsEnabled() bool { return f.minSalary > 0 }

func (f *minSalaryFilter) Validate() error {
	if _, ok := usdRates[f.currency]; !ok {
		return fmt.Errorf("unsupported currency: %s", f.currency)
	}
	return nil
}

func (f *minSalaryFilter) Apply(_ context.Context, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()
	threshold := float64(f.minSalary) * usdRates[f.currency]

	kept := &jobs.Postings{}
	for _, posting := range p.Items {
		if float64(posting.Salary) >= threshold {
			kept.Items = append(kept.Items, posting)
		}
	}

	return kept, Step{Initial: initial, Dropped: initial - kept.Len(), Left: kept.Len()}, nil
}
