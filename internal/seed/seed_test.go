package seed

import (
	"context"
	"errors"
	"testing"

	"customer-addressbook/internal/domain"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRegions struct {
	saved  []domain.Region
	err    error
	failAt int
}

func (s *stubRegions) Upsert(_ context.Context, r domain.Region) error {
	if s.err != nil && (s.failAt == 0 || len(s.saved)+1 == s.failAt) {
		return s.err
	}
	s.saved = append(s.saved, r)
	return nil
}

type stubCache struct{ ids []int }

func (s *stubCache) Invalidate(_ context.Context, ids ...int) error {
	s.ids = append(s.ids, ids...)
	return nil
}

type stubAddresses struct {
	stored map[string]domain.Address
	saved  []domain.Address
}

func (s *stubAddresses) GetByID(_ context.Context, id string) (*domain.Address, error) {
	a, ok := s.stored[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (s *stubAddresses) ListByCustomer(context.Context, string) ([]domain.Address, error) {
	return nil, nil
}

func (s *stubAddresses) Save(_ context.Context, a domain.Address) (*domain.Address, error) {
	s.saved = append(s.saved, a)
	return &a, nil
}

func (s *stubAddresses) Delete(context.Context, string) error { return nil }

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestRegions_UpsertsAndInvalidates(t *testing.T) {
	w := &stubRegions{}
	cache := &stubCache{}

	require.NoError(t, Regions(context.Background(), w, cache, DefaultRegions))

	assert.Len(t, w.saved, len(DefaultRegions))
	assert.Len(t, cache.ids, len(DefaultRegions))
	assert.Equal(t, 1, cache.ids[0])
}

func TestRegions_WriterError(t *testing.T) {
	w := &stubRegions{err: errors.New("boom")}
	cache := &stubCache{}

	err := Regions(context.Background(), w, cache, DefaultRegions)

	assert.Error(t, err)
	assert.Empty(t, cache.ids)
}

func TestRegions_PartialFailureInvalidatesWrittenRegions(t *testing.T) {
	w := &stubRegions{err: errors.New("boom"), failAt: 2}
	cache := &stubCache{}

	err := Regions(context.Background(), w, cache, DefaultRegions)

	assert.Error(t, err)
	require.Len(t, w.saved, 1)
	assert.Equal(t, []int{DefaultRegions[0].ID}, cache.ids)
}

func TestCustomerTwoAddresses_ResavesSecondAddress(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	mock.ExpectExec("INSERT INTO customers").
		WithArgs(FixtureCustomerID, FixtureEmail, "hash", FixtureAddress1ID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO addresses").
		WithArgs(anyArgs(14)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO addresses").
		WithArgs(anyArgs(14)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	addresses := &stubAddresses{stored: map[string]domain.Address{
		FixtureAddress2ID: {ID: FixtureAddress2ID, City: "CityX", CountryID: "US"},
	}}

	require.NoError(t, CustomerTwoAddresses(context.Background(), mock, addresses, "hash"))

	require.Len(t, addresses.saved, 1)
	assert.Equal(t, FixtureAddress2ID, addresses.saved[0].ID)
	assert.Equal(t, FixtureCustomerID, addresses.saved[0].CustomerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerTwoAddresses_StopsOnInsertError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	mock.ExpectExec("INSERT INTO customers").
		WithArgs(anyArgs(4)...).
		WillReturnError(errors.New("db down"))

	addresses := &stubAddresses{}
	err = CustomerTwoAddresses(context.Background(), mock, addresses, "hash")

	assert.Error(t, err)
	assert.Empty(t, addresses.saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}
