package seed

import (
	"context"
	"errors"
	"fmt"

	"customer-addressbook/internal/db"
	"customer-addressbook/internal/domain"
	addrrepo "customer-addressbook/internal/repository/address"
	"customer-addressbook/internal/repository/region"
)

// Fixture identifiers. Ids are fixed so the fixture can be re-applied.
const (
	FixtureCustomerID = "1"
	FixtureEmail      = "customer@example.com"
	FixturePassword   = "Password1"
	FixtureAddress1ID = "1"
	FixtureAddress2ID = "2"
)

// DefaultRegions is the demo region directory.
var DefaultRegions = []domain.Region{
	{ID: 1, CountryID: "US", Code: "AL", Name: "Alabama"},
	{ID: 2, CountryID: "US", Code: "AK", Name: "Alaska"},
	{ID: 12, CountryID: "US", Code: "CA", Name: "California"},
	{ID: 43, CountryID: "US", Code: "NY", Name: "New York"},
	{ID: 57, CountryID: "US", Code: "TX", Name: "Texas"},
	{ID: 66, CountryID: "CA", Code: "ON", Name: "Ontario"},
	{ID: 82, CountryID: "DE", Code: "BER", Name: "Berlin"},
	{ID: 91, CountryID: "DE", Code: "BAY", Name: "Bayern"},
}

// RegionInvalidator evicts cached regions.
type RegionInvalidator interface {
	Invalidate(ctx context.Context, ids ...int) error
}

// Deps groups what Apply writes through. Cache may be nil.
type Deps struct {
	Pool      db.Pool
	Regions   region.Writer
	Addresses addrrepo.Repository
	Cache     RegionInvalidator
}

// Apply inserts the demo region directory and the two-address customer
// fixture. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, d Deps, passwordHash string) error {
	if err := Regions(ctx, d.Regions, d.Cache, DefaultRegions); err != nil {
		return err
	}
	if err := CustomerTwoAddresses(ctx, d.Pool, d.Addresses, passwordHash); err != nil {
		return fmt.Errorf("customer fixture: %w", err)
	}
	return nil
}

// Regions upserts regions and evicts the written ones from the cache, also
// when a later upsert fails.
func Regions(ctx context.Context, w region.Writer, cache RegionInvalidator, regions []domain.Region) (err error) {
	ids := make([]int, 0, len(regions))
	defer func() {
		if cache == nil || len(ids) == 0 {
			return
		}
		if cerr := cache.Invalidate(ctx, ids...); cerr != nil {
			err = errors.Join(err, fmt.Errorf("invalidate region cache: %w", cerr))
		}
	}()

	for _, r := range regions {
		if err := w.Upsert(ctx, r); err != nil {
			return fmt.Errorf("seed region %s/%s: %w", r.CountryID, r.Code, err)
		}
		ids = append(ids, r.ID)
	}
	return nil
}

// CustomerTwoAddresses creates the fixture customer with addresses 1 and 2.
// Address 1 is the default billing and shipping address. Address 2 is
// inserted as a raw row and then re-saved through the address repository,
// so it carries whatever the repository normalizes on save.
func CustomerTwoAddresses(ctx context.Context, pool db.Pool, addresses addrrepo.Repository, passwordHash string) error {
	if err := upsertCustomer(ctx, pool, passwordHash); err != nil {
		return fmt.Errorf("upsert customer: %w", err)
	}

	first := domain.Address{
		ID:         FixtureAddress1ID,
		CustomerID: FixtureCustomerID,
		FirstName:  "John",
		LastName:   "Smith",
		Street:     []string{"Green str, 67"},
		City:       "CityM",
		Postcode:   "75477",
		CountryID:  "US",
		Telephone:  "3468676",
		Region:     domain.AddressRegion{RegionID: 1, Region: "Alabama", RegionCode: "AL"},
	}
	if err := insertAddress(ctx, pool, first, 0); err != nil {
		return fmt.Errorf("insert address %s: %w", first.ID, err)
	}

	second := first
	second.ID = FixtureAddress2ID
	second.Street = []string{"Black str, 48"}
	second.City = "CityX"
	second.Postcode = "47676"
	second.Telephone = "3234676"
	if err := insertAddress(ctx, pool, second, 1); err != nil {
		return fmt.Errorf("insert address %s: %w", second.ID, err)
	}

	stored, err := addresses.GetByID(ctx, FixtureAddress2ID)
	if err != nil {
		return fmt.Errorf("load address %s: %w", FixtureAddress2ID, err)
	}
	stored.CustomerID = FixtureCustomerID
	if _, err := addresses.Save(ctx, *stored); err != nil {
		return fmt.Errorf("resave address %s: %w", FixtureAddress2ID, err)
	}
	return nil
}

func upsertCustomer(ctx context.Context, pool db.Pool, passwordHash string) error {
	const q = `
INSERT INTO customers (id, email, password_hash, first_name, last_name,
                       default_billing_address_id, default_shipping_address_id)
VALUES ($1, $2, $3, 'John', 'Smith', $4, $4)
ON CONFLICT (id) DO UPDATE
SET email = EXCLUDED.email,
    password_hash = EXCLUDED.password_hash,
    first_name = EXCLUDED.first_name,
    last_name = EXCLUDED.last_name,
    default_billing_address_id = EXCLUDED.default_billing_address_id,
    default_shipping_address_id = EXCLUDED.default_shipping_address_id
`
	_, err := pool.Exec(ctx, q, FixtureCustomerID, FixtureEmail, passwordHash, FixtureAddress1ID)
	return err
}

func insertAddress(ctx context.Context, pool db.Pool, a domain.Address, position int) error {
	const q = `
INSERT INTO addresses (
    id, customer_id, position, first_name, last_name, company, street, city, postcode,
    country_id, telephone, region_id, region, region_code
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (id) DO UPDATE
SET customer_id = EXCLUDED.customer_id,
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
`
	_, err := pool.Exec(ctx, q,
		a.ID, a.CustomerID, position, a.FirstName, a.LastName, a.Company, a.Street, a.City, a.Postcode,
		a.CountryID, a.Telephone, a.Region.RegionID, a.Region.Region, a.Region.RegionCode,
	)
	return err
}
