package model

// CatalogEntry is one row of the fund catalog. Category holds a
// comma-delimited set of tags as stored upstream; it is exploded into
// individual tags only when building the distinct category list.
type CatalogEntry struct {
	Trustee  string `json:"trustee"`
	Scheme   string `json:"scheme"`
	Fund     string `json:"fund"`
	Category string `json:"category,omitempty"`
}
