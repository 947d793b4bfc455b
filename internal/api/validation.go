package api

import (
	"fmt"
	"time"
)

const dateLayout = "20060102"

// Validate checks everything except the funds list, whose absence is a
// separate response shape handled before validation runs.
func (r PriceRequest) Validate() error {
	if r.StartDate != "" {
		if _, err := time.Parse(dateLayout, r.StartDate); err != nil {
			return fmt.Errorf("startDate must be YYYYMMDD")
		}
	}
	if r.EndDate != "" {
		if _, err := time.Parse(dateLayout, r.EndDate); err != nil {
			return fmt.Errorf("endDate must be YYYYMMDD")
		}
	}
	for i, f := range r.Funds {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("funds[%d]: %w", i, err)
		}
	}
	return nil
}
