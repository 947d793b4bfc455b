package model

import (
	"fmt"
	"strings"
)

// FundSelector identifies a single fund within a trustee's scheme.
type FundSelector struct {
	Trustee string `json:"trustee"`
	Scheme  string `json:"scheme"`
	Fund    string `json:"fund"`
}

// ID returns the canonical fund identifier used as the partition key for
// price and performance records. The ingestion side derives the key the
// same way; the two must stay byte-for-byte identical.
func (s FundSelector) ID() string {
	return FundID(s.Trustee, s.Scheme, s.Fund)
}

// FundID joins trustee, scheme and fund into the canonical partition key.
func FundID(trustee, scheme, fund string) string {
	return trustee + "-" + scheme + "-" + fund
}

func (s FundSelector) Validate() error {
	if strings.TrimSpace(s.Trustee) == "" {
		return fmt.Errorf("trustee is required")
	}
	if strings.TrimSpace(s.Scheme) == "" {
		return fmt.Errorf("scheme is required")
	}
	if strings.TrimSpace(s.Fund) == "" {
		return fmt.Errorf("fund is required")
	}
	return nil
}

// Granularity selects which pre-aggregated price table a lookup runs against.
// The daily, weekly and monthly tables are separately maintained upstream;
// nothing is derived on the read path.
type Granularity string

const (
	Daily   Granularity = "D"
	Weekly  Granularity = "W"
	Monthly Granularity = "M"
)

// ParseGranularity maps a request time-period code to a Granularity.
// An empty code defaults to Daily.
func ParseGranularity(code string) (Granularity, error) {
	switch code {
	case "", "D":
		return Daily, nil
	case "W":
		return Weekly, nil
	case "M":
		return Monthly, nil
	default:
		return "", fmt.Errorf("unknown time period %q", code)
	}
}
