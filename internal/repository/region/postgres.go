package region

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"customer-addressbook/internal/db"
	"customer-addressbook/internal/domain"
	"github.com/jackc/pgx/v5"
)

type postgresRepo struct {
	pool db.Pool
}

// Postgres is the Postgres-backed region directory.
type Postgres interface {
	Repository
	Writer
}

// NewPostgres returns the region directory backed by Postgres.
func NewPostgres(pool db.Pool) Postgres {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetByID(ctx context.Context, id int) (*domain.Region, error) {
	const q = `
SELECT id, country_id, code, name
FROM regions
WHERE id = $1
`
	var out domain.Region
	err := r.pool.QueryRow(ctx, q, id).Scan(&out.ID, &out.CountryID, &out.Code, &out.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get region: %w", err)
	}
	return &out, nil
}

func (r *postgresRepo) ListByCountry(ctx context.Context, countryID string) ([]domain.Region, error) {
	const q = `
SELECT id, country_id, code, name
FROM regions
WHERE country_id = $1
ORDER BY name
`
	rows, err := r.pool.Query(ctx, q, strings.ToUpper(countryID))
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	defer rows.Close()

	var out []domain.Region
	for rows.Next() {
		var reg domain.Region
		if err := rows.Scan(&reg.ID, &reg.CountryID, &reg.Code, &reg.Name); err != nil {
			return nil, fmt.Errorf("scan region: %w", err)
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Upsert(ctx context.Context, reg domain.Region) error {
	const q = `
INSERT INTO regions (id, country_id, code, name)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
SET country_id = EXCLUDED.country_id,
    code = EXCLUDED.code,
    name = EXCLUDED.name
`
	if _, err := r.pool.Exec(ctx, q, reg.ID, strings.ToUpper(reg.CountryID), reg.Code, reg.Name); err != nil {
		return fmt.Errorf("upsert region %d: %w", reg.ID, err)
	}
	return nil
}
