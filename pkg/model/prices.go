package model

// PricePoint is a single fund price observation. PriceDate is formatted
// as YYYYMMDD.
type PricePoint struct {
	PriceDate string  `json:"priceDate"`
	Price     float64 `json:"price"`
}

// PriceSeries is the output unit of the price aggregator: one requested
// fund with its price points ordered ascending by date.
type PriceSeries struct {
	Trustee string       `json:"trustee"`
	Scheme  string       `json:"scheme"`
	Fund    string       `json:"fund"`
	Prices  []PricePoint `json:"prices"`
}
