// Package region holds the province/city reference data used for shipping
// destinations.
package region

import "context"

// Province is a top-level region.
type Province struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// City belongs to one province and is the granularity carriers quote against.
type City struct {
	ID         string `json:"id"`
	ProvinceID string `json:"province_id"`
	Name       string `json:"name"`
	Postcode   string `json:"postcode,omitempty"`
}

// Repository provides read access to the reference data. Rows are loaded out
// of band by the geo-ingest tool.
type Repository interface {
	ListProvinces(ctx context.Context) ([]Province, error)
	ListCities(ctx context.Context, provinceID string) ([]City, error)
}
