package store

import "github.com/mpfapps/mpf-price-api/pkg/model"

// PriceRow is one raw item from a price table. PriceDate is the sort key,
// stored as epoch milliseconds; the aggregator formats it for output. The
// ingestion side writes the fund name under "fundName", not "fund".
type PriceRow struct {
	ID        string  `dynamodbav:"trusteeSchemeFundId"`
	Trustee   string  `dynamodbav:"trustee"`
	Scheme    string  `dynamodbav:"scheme"`
	FundName  string  `dynamodbav:"fundName"`
	PriceDate int64   `dynamodbav:"priceDate"`
	Price     float64 `dynamodbav:"price"`
}

type catalogRow struct {
	Trustee  string `dynamodbav:"trustee"`
	Scheme   string `dynamodbav:"scheme"`
	Fund     string `dynamodbav:"fund"`
	Category string `dynamodbav:"category"`
}

func (r catalogRow) toEntry() model.CatalogEntry {
	return model.CatalogEntry{
		Trustee:  r.Trustee,
		Scheme:   r.Scheme,
		Fund:     r.Fund,
		Category: r.Category,
	}
}

type trusteeRow struct {
	Trustee string `dynamodbav:"trustee"`
}

type categoryRow struct {
	Category string `dynamodbav:"category"`
}

type performanceRow struct {
	ID            string  `dynamodbav:"trusteeSchemeFundId"`
	Trustee       string  `dynamodbav:"trustee"`
	Scheme        string  `dynamodbav:"scheme"`
	Fund          string  `dynamodbav:"fund"`
	Month1Growth  float64 `dynamodbav:"month1Growth"`
	Month3Growth  float64 `dynamodbav:"month3Growth"`
	Month6Growth  float64 `dynamodbav:"month6Growth"`
	Month12Growth float64 `dynamodbav:"month12Growth"`
}

func (r performanceRow) toRecord() model.PerformanceRecord {
	return model.PerformanceRecord{
		ID:            r.ID,
		Trustee:       r.Trustee,
		Scheme:        r.Scheme,
		Fund:          r.Fund,
		Growth1Month:  r.Month1Growth,
		Growth3Month:  r.Month3Growth,
		Growth6Month:  r.Month6Growth,
		Growth12Month: r.Month12Growth,
	}
}
