package validation

import (
	"errors"
	"testing"

	"customer-addressbook/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name    string   `form:"name" validate:"required,max=5"`
	Country string   `json:"country_id" validate:"required,iso3166_1_alpha2"`
	Lines   []string `form:"street" validate:"required,min=1,max=2,dive,max=3"`
	Email   string   `form:"email" validate:"omitempty,email"`
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var inputErr *domain.InputError
	require.True(t, errors.As(err, &inputErr), "got %v", err)
	out := map[string]string{}
	for _, fe := range inputErr.Errors {
		out[fe.Field] = fe.Message
	}
	return out
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(sample{Name: "Ann", Country: "US", Lines: []string{"a"}}, nil)
	assert.NoError(t, err)
}

func TestStruct_RequiredUsesLabels(t *testing.T) {
	err := Struct(sample{}, map[string]string{"name": "First Name", "street": "Street Address"})

	fields := fieldsOf(t, err)
	assert.Equal(t, `"First Name" is a required value.`, fields["name"])
	assert.Equal(t, `"Street Address" is a required value.`, fields["street"])
	assert.Equal(t, `"country_id" is a required value.`, fields["country_id"])
}

func TestStruct_LengthAndFormatRules(t *testing.T) {
	err := Struct(sample{
		Name:    "Too long",
		Country: "USA",
		Lines:   []string{"abcd", "ok", "x"},
		Email:   "nope",
	}, nil)

	fields := fieldsOf(t, err)
	assert.Equal(t, `"name" cannot be longer than 5 characters.`, fields["name"])
	assert.Equal(t, `"country_id" is not a valid country code.`, fields["country_id"])
	assert.Equal(t, `"street" cannot have more than 2 lines.`, fields["street"])
	assert.Equal(t, `"email" is not a valid email address.`, fields["email"])
}

func TestStruct_DiveErrorsCollapseToField(t *testing.T) {
	err := Struct(sample{Name: "Ann", Country: "US", Lines: []string{"abcd", "efgh"}}, nil)

	var inputErr *domain.InputError
	require.True(t, errors.As(err, &inputErr))
	require.Len(t, inputErr.Errors, 1)
	assert.Equal(t, "street", inputErr.Errors[0].Field)
	assert.Equal(t, `"street" cannot be longer than 3 characters.`, inputErr.Errors[0].Message)
}
