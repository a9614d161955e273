package region

import (
	"context"

	"customer-addressbook/internal/domain"
)

// Repository reads the region directory.
type Repository interface {
	GetByID(ctx context.Context, id int) (*domain.Region, error)
	ListByCountry(ctx context.Context, countryID string) ([]domain.Region, error)
}

// Writer upserts region reference data. Only the seed and import tools use it.
type Writer interface {
	Upsert(ctx context.Context, r domain.Region) error
}
