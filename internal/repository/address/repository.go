package address

import (
	"context"

	"customer-addressbook/internal/domain"
)

// Repository persists individual customer addresses.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Address, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Address, error)
	// Save inserts or updates the address and moves the owner's default
	// billing/shipping ids to match its flags.
	Save(ctx context.Context, a domain.Address) (*domain.Address, error)
	Delete(ctx context.Context, id string) error
}
