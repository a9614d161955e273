package address

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"customer-addressbook/internal/db"
	"customer-addressbook/internal/domain"
	"customer-addressbook/internal/logger"
	"github.com/jackc/pgx/v5"
)

type postgresRepo struct {
	pool   db.Pool
	logger *slog.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool db.Pool, log *slog.Logger) Repository {
	if log == nil {
		log = logger.Discard()
	}
	return &postgresRepo{pool: pool, logger: log}
}

const selectAddress = `
SELECT a.id, a.customer_id, a.first_name, a.last_name, a.company, a.street, a.city, a.postcode,
       a.country_id, a.telephone, a.region_id, a.region, a.region_code, a.created_at, a.updated_at,
       c.default_billing_address_id, c.default_shipping_address_id
FROM addresses a
JOIN customers c ON c.id = a.customer_id
`

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Address, error) {
	a, err := scanAddress(r.pool.QueryRow(ctx, selectAddress+`WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "address repo: scan", slog.String("address_id", id), slog.Any("error", err))
		return nil, fmt.Errorf("get address: %w", err)
	}
	return a, nil
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Address, error) {
	rows, err := r.pool.Query(ctx, selectAddress+`WHERE a.customer_id = $1 ORDER BY a.position, a.created_at`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	var out []domain.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate addresses: %w", err)
	}
	return out, nil
}

func (r *postgresRepo) Save(ctx context.Context, a domain.Address) (*domain.Address, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// The WHERE on the conflict branch refuses to move an address between customers.
	const upsert = `
INSERT INTO addresses (
    id, customer_id, position, first_name, last_name, company, street, city, postcode,
    country_id, telephone, region_id, region, region_code
) VALUES (
    $1, $2, (SELECT COALESCE(MAX(position) + 1, 0) FROM addresses WHERE customer_id = $2),
    $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
)
ON CONFLICT (id) DO UPDATE SET
    first_name = EXCLUDED.first_name,
    last_name = EXCLUDED.last_name,
    company = EXCLUDED.company,
    street = EXCLUDED.street,
    city = EXCLUDED.city,
    postcode = EXCLUDED.postcode,
    country_id = EXCLUDED.country_id,
    telephone = EXCLUDED.telephone,
    region_id = EXCLUDED.region_id,
    region = EXCLUDED.region,
    region_code = EXCLUDED.region_code,
    updated_at = now()
WHERE addresses.customer_id = EXCLUDED.customer_id
RETURNING created_at, updated_at
`
	saved := a
	err = tx.QueryRow(ctx, upsert,
		a.ID,
		a.CustomerID,
		a.FirstName,
		a.LastName,
		a.Company,
		a.Street,
		a.City,
		a.Postcode,
		a.CountryID,
		a.Telephone,
		a.Region.RegionID,
		a.Region.Region,
		a.Region.RegionCode,
	).Scan(&saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "address repo: upsert", slog.String("address_id", a.ID), slog.Any("error", err))
		return nil, fmt.Errorf("upsert address: %w", err)
	}

	const defaults = `
UPDATE customers SET
    default_billing_address_id = CASE
        WHEN $2 THEN $1
        WHEN default_billing_address_id = $1 THEN ''
        ELSE default_billing_address_id END,
    default_shipping_address_id = CASE
        WHEN $3 THEN $1
        WHEN default_shipping_address_id = $1 THEN ''
        ELSE default_shipping_address_id END
WHERE id = $4
`
	ct, err := tx.Exec(ctx, defaults, a.ID, a.DefaultBilling, a.DefaultShipping, a.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("update customer defaults: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &saved, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var customerID string
	if err := tx.QueryRow(ctx, `DELETE FROM addresses WHERE id = $1 RETURNING customer_id`, id).Scan(&customerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete address: %w", err)
	}

	const clearDefaults = `
UPDATE customers SET
    default_billing_address_id = CASE WHEN default_billing_address_id = $1 THEN '' ELSE default_billing_address_id END,
    default_shipping_address_id = CASE WHEN default_shipping_address_id = $1 THEN '' ELSE default_shipping_address_id END
WHERE id = $2
`
	if _, err := tx.Exec(ctx, clearDefaults, id, customerID); err != nil {
		return fmt.Errorf("clear customer defaults: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func scanAddress(row pgx.Row) (*domain.Address, error) {
	var a domain.Address
	var defBilling, defShipping string
	err := row.Scan(
		&a.ID,
		&a.CustomerID,
		&a.FirstName,
		&a.LastName,
		&a.Company,
		&a.Street,
		&a.City,
		&a.Postcode,
		&a.CountryID,
		&a.Telephone,
		&a.Region.RegionID,
		&a.Region.Region,
		&a.Region.RegionCode,
		&a.CreatedAt,
		&a.UpdatedAt,
		&defBilling,
		&defShipping,
	)
	if err != nil {
		return nil, err
	}
	a.DefaultBilling = defBilling == a.ID
	a.DefaultShipping = defShipping == a.ID
	return &a, nil
}
