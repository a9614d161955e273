package customer

import (
	"context"

	"customer-addressbook/internal/domain"
)

// Repository persists and fetches customer aggregates, addresses included.
type Repository interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	// Save replaces the stored address collection with c.Addresses and
	// persists the default billing/shipping ids.
	Save(ctx context.Context, c domain.Customer) (*domain.Customer, error)
}
