package region

import (
	"context"
	"errors"
	"testing"

	"customer-addressbook/internal/domain"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM regions").
		WithArgs(12).
		WillReturnRows(pgxmock.NewRows([]string{"id", "country_id", "code", "name"}).AddRow(12, "US", "CA", "California"))

	reg, err := NewPostgres(mock).GetByID(context.Background(), 12)

	require.NoError(t, err)
	assert.Equal(t, domain.Region{ID: 12, CountryID: "US", Code: "CA", Name: "California"}, *reg)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM regions").WithArgs(404).WillReturnError(pgx.ErrNoRows)

	_, err = NewPostgres(mock).GetByID(context.Background(), 404)

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPostgres_Upsert_UppercasesCountry(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO regions").
		WithArgs(1, "US", "AL", "Alabama").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = NewPostgres(mock).Upsert(context.Background(), domain.Region{ID: 1, CountryID: "us", Code: "AL", Name: "Alabama"})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListByCountry(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM regions WHERE country_id = \\$1 ORDER BY name").
		WithArgs("US").
		WillReturnRows(pgxmock.NewRows([]string{"id", "country_id", "code", "name"}).
			AddRow(1, "US", "AL", "Alabama").
			AddRow(12, "US", "CA", "California"))

	list, err := NewPostgres(mock).ListByCountry(context.Background(), "us")

	require.NoError(t, err)
	assert.Equal(t, []domain.Region{
		{ID: 1, CountryID: "US", Code: "AL", Name: "Alabama"},
		{ID: 12, CountryID: "US", Code: "CA", Name: "California"},
	}, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListByCountry_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM regions").WithArgs("DE").WillReturnError(errors.New("db down"))

	_, err = NewPostgres(mock).ListByCountry(context.Background(), "DE")

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
