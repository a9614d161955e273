package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"customer-addressbook/internal/db"
	"customer-addressbook/internal/domain"
	"customer-addressbook/internal/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

const selectCustomer = `
SELECT id, email, password_hash, first_name, last_name,
       default_billing_address_id, default_shipping_address_id, created_at
FROM customers
`

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const q = `
INSERT INTO customers (email, password_hash, first_name, last_name)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at
`
	out := c
	out.Email = strings.ToLower(c.Email)
	err = tx.QueryRow(ctx, q, out.Email, c.PasswordHash, c.FirstName, c.LastName).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == db.UniqueViolation {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.ErrorContext(ctx, "customer repo: insert", slog.Any("error", err))
		return nil, fmt.Errorf("insert customer: %w", err)
	}

	if len(out.Addresses) > 0 {
		out.Addresses = append([]domain.Address(nil), c.Addresses...)
		for i := range out.Addresses {
			out.Addresses[i].CustomerID = out.ID
		}
		if err := r.writeAddresses(ctx, tx, &out); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return &out, nil
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.load(ctx, selectCustomer+`WHERE lower(email) = lower($1) LIMIT 1`, email)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return r.load(ctx, selectCustomer+`WHERE id = $1`, id)
}

func (r *postgresRepo) Save(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `UPDATE customers SET first_name = $2, last_name = $3 WHERE id = $1`, c.ID, c.FirstName, c.LastName)
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}

	out := c
	out.Addresses = append([]domain.Address(nil), c.Addresses...)
	if err := r.writeAddresses(ctx, tx, &out); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	r.logger.DebugContext(ctx, "customer saved", slog.String("customer_id", c.ID), slog.Int("addresses", len(out.Addresses)))
	return &out, nil
}

// writeAddresses makes the stored collection equal to c.Addresses, in order.
func (r *postgresRepo) writeAddresses(ctx context.Context, tx pgx.Tx, c *domain.Customer) error {
	ids := make([]string, 0, len(c.Addresses))
	for _, a := range c.Addresses {
		ids = append(ids, a.ID)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM addresses WHERE customer_id = $1 AND NOT (id = ANY($2))`, c.ID, ids); err != nil {
		return fmt.Errorf("delete removed addresses: %w", err)
	}

	const upsert = `
INSERT INTO addresses (
    id, customer_id, position, first_name, last_name, company, street, city, postcode,
    country_id, telephone, region_id, region, region_code
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (id) DO UPDATE SET
    position = EXCLUDED.position,
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
	for i := range c.Addresses {
		a := &c.Addresses[i]
		err := tx.QueryRow(ctx, upsert,
			a.ID, c.ID, i, a.FirstName, a.LastName, a.Company, a.Street, a.City, a.Postcode,
			a.CountryID, a.Telephone, a.Region.RegionID, a.Region.Region, a.Region.RegionCode,
		).Scan(&a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("address %s belongs to another customer: %w", a.ID, domain.ErrNotFound)
			}
			r.logger.ErrorContext(ctx, "customer repo: upsert address", slog.String("address_id", a.ID), slog.Any("error", err))
			return fmt.Errorf("upsert address: %w", err)
		}
	}

	const defaults = `
UPDATE customers SET default_billing_address_id = $2, default_shipping_address_id = $3
WHERE id = $1
`
	if _, err := tx.Exec(ctx, defaults, c.ID, c.DefaultBillingAddressID, c.DefaultShippingAddressID); err != nil {
		return fmt.Errorf("update customer defaults: %w", err)
	}
	c.ProjectDefaultFlags()
	return nil
}

func (r *postgresRepo) load(ctx context.Context, q string, arg string) (*domain.Customer, error) {
	var c domain.Customer
	err := r.pool.QueryRow(ctx, q, arg).Scan(
		&c.ID,
		&c.Email,
		&c.PasswordHash,
		&c.FirstName,
		&c.LastName,
		&c.DefaultBillingAddressID,
		&c.DefaultShippingAddressID,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "customer repo: scan", slog.Any("error", err))
		return nil, fmt.Errorf("get customer: %w", err)
	}

	addresses, err := r.loadAddresses(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Addresses = addresses
	c.ProjectDefaultFlags()
	return &c, nil
}

func (r *postgresRepo) loadAddresses(ctx context.Context, customerID string) ([]domain.Address, error) {
	const q = `
SELECT id, customer_id, first_name, last_name, company, street, city, postcode,
       country_id, telephone, region_id, region, region_code, created_at, updated_at
FROM addresses
WHERE customer_id = $1
ORDER BY position, created_at
`
	rows, err := r.pool.Query(ctx, q, customerID)
	if err != nil {
		return nil, fmt.Errorf("list customer addresses: %w", err)
	}
	defer rows.Close()

	addresses := []domain.Address{}
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(
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
		); err != nil {
			r.logger.ErrorContext(ctx, "customer repo: decode address", slog.String("customer_id", customerID), slog.Any("error", err))
			return nil, fmt.Errorf("scan address: %w", err)
		}
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate addresses: %w", err)
	}
	return addresses, nil
}
