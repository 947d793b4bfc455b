package api

import "github.com/mpfapps/mpf-price-api/pkg/model"

// PriceRequest is the body of POST /api/v1/prices. Dates are YYYYMMDD
// strings; TimePeriod is D, W or M and defaults to D when absent.
type PriceRequest struct {
	StartDate  string               `json:"startDate,omitempty"`
	EndDate    string               `json:"endDate,omitempty"`
	TimePeriod string               `json:"timePeriod,omitempty"`
	Funds      []model.FundSelector `json:"funds"`
}
