package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/region"
)

const (
	listProvincesSQL = `SELECT id, name FROM provinces ORDER BY name`

	listCitiesSQL = `SELECT id, province_id, name, postcode
		FROM cities WHERE province_id = $1 ORDER BY name`

	upsertProvinceSQL = `INSERT INTO provinces (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`

	upsertCitySQL = `INSERT INTO cities (id, province_id, name, postcode)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			province_id = EXCLUDED.province_id,
			name = EXCLUDED.name,
			postcode = EXCLUDED.postcode`
)

var _ region.Repository = (*RegionRepository)(nil)

// RegionRepository implements region.Repository backed by PostgreSQL and
// additionally exposes the upserts used by the geo-ingest tool.
type RegionRepository struct {
	pool *pgxpool.Pool
}

// NewRegionRepository returns a RegionRepository that uses the given pool.
func NewRegionRepository(pool *pgxpool.Pool) *RegionRepository {
	return &RegionRepository{pool: pool}
}

// ListProvinces returns all provinces ordered by name.
func (r *RegionRepository) ListProvinces(ctx context.Context) ([]region.Province, error) {
	rows, err := r.pool.Query(ctx, listProvincesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing provinces: %w", err)
	}
	return pgx.CollectRows(rows, scanProvince)
}

// ListCities returns the cities of one province ordered by name.
func (r *RegionRepository) ListCities(ctx context.Context, provinceID string) ([]region.City, error) {
	rows, err := r.pool.Query(ctx, listCitiesSQL, provinceID)
	if err != nil {
		return nil, fmt.Errorf("listing cities for province %q: %w", provinceID, err)
	}
	return pgx.CollectRows(rows, scanCity)
}

// UpsertProvince inserts or updates one province.
func (r *RegionRepository) UpsertProvince(ctx context.Context, p region.Province) error {
	if _, err := r.pool.Exec(ctx, upsertProvinceSQL, p.ID, p.Name); err != nil {
		return fmt.Errorf("upserting province %q: %w", p.ID, err)
	}
	return nil
}

// UpsertCity inserts or updates one city.
func (r *RegionRepository) UpsertCity(ctx context.Context, c region.City) error {
	if _, err := r.pool.Exec(ctx, upsertCitySQL, c.ID, c.ProvinceID, c.Name, c.Postcode); err != nil {
		return fmt.Errorf("upserting city %q: %w", c.ID, err)
	}
	return nil
}

func scanProvince(row pgx.CollectableRow) (region.Province, error) {
	var p region.Province
	err := row.Scan(&p.ID, &p.Name)
	return p, err
}

func scanCity(row pgx.CollectableRow) (region.City, error) {
	var c region.City
	err := row.Scan(&c.ID, &c.ProvinceID, &c.Name, &c.Postcode)
	return c, err
}
