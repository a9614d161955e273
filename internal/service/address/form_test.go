package address

import (
	"net/url"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// formFrom binds values the way the storefront handler does.
func formFrom(values url.Values) Form {
	var req FormRequest
	if err := binding.MapFormWithTag(&req, values, "form"); err != nil {
		panic(err)
	}
	return req.Form()
}

func TestFormRequest_AbsentFieldsStayNil(t *testing.T) {
	f := formFrom(url.Values{"id": {" 5 "}, "city": {" CityX "}, "company": {""}})

	assert.Equal(t, "5", f.ID)
	require.NotNil(t, f.City)
	assert.Equal(t, "CityX", *f.City)
	require.NotNil(t, f.Company, "an empty submitted value must clear the field")
	assert.Equal(t, "", *f.Company)
	assert.Nil(t, f.FirstName)
	assert.Nil(t, f.Street)
	assert.Nil(t, f.RegionID)
}

func TestFormRequest_StreetVariants(t *testing.T) {
	bracket := formFrom(url.Values{"street[]": {"Line 1", " ", "Line 2"}})
	plain := formFrom(url.Values{"street": {"Only line"}})
	both := formFrom(url.Values{"street[]": {"Bracket"}, "street": {"Plain"}})
	blank := formFrom(url.Values{"street[]": {""}})

	assert.Equal(t, []string{"Line 1", "Line 2"}, bracket.Street)
	assert.Equal(t, []string{"Only line"}, plain.Street)
	assert.Equal(t, []string{"Bracket"}, both.Street)
	assert.NotNil(t, blank.Street)
	assert.Empty(t, blank.Street)
}

func TestFormRequest_Flags(t *testing.T) {
	cases := map[string]bool{"1": true, "on": true, "true": true, "0": false, "false": false, "": false}
	for v, want := range cases {
		f := formFrom(url.Values{"default_billing": {v}, "default_shipping": {v}})
		assert.Equal(t, want, f.DefaultBilling, "value %q", v)
		assert.Equal(t, want, f.DefaultShipping, "value %q", v)
	}
	assert.False(t, formFrom(url.Values{}).DefaultBilling)
}
