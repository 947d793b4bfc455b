package model

// PerformanceRecord is a flat snapshot of a fund's precomputed growth
// percentages over trailing 1/3/6/12 month windows. There is no history;
// the upstream ingestion overwrites the record in place.
type PerformanceRecord struct {
	ID            string  `json:"trusteeSchemeFundId"`
	Trustee       string  `json:"trustee"`
	Scheme        string  `json:"scheme"`
	Fund          string  `json:"fund"`
	Growth1Month  float64 `json:"growth1Month"`
	Growth3Month  float64 `json:"growth3Month"`
	Growth6Month  float64 `json:"growth6Month"`
	Growth12Month float64 `json:"growth12Month"`
}
