package address

import (
	"strings"
)

// Form is a submitted address form. Attribute fields are nil when the
// request did not carry them, so an edit keeps the stored value.
type Form struct {
	ID              string
	FirstName       *string
	LastName        *string
	Company         *string
	Street          []string
	City            *string
	Postcode        *string
	CountryID       *string
	Telephone       *string
	RegionID        *string
	Region          *string
	RegionCode      *string
	DefaultBilling  bool
	DefaultShipping bool
}

// FormRequest is the storefront address form as bound from a request with
// gin's form binding. Absent keys leave pointer and slice fields nil.
type FormRequest struct {
	ID              string   `form:"id"`
	FirstName       *string  `form:"firstname"`
	LastName        *string  `form:"lastname"`
	Company         *string  `form:"company"`
	Street          []string `form:"street[]"`
	StreetLines     []string `form:"street"`
	City            *string  `form:"city"`
	Postcode        *string  `form:"postcode"`
	CountryID       *string  `form:"country_id"`
	Telephone       *string  `form:"telephone"`
	RegionID        *string  `form:"region_id"`
	Region          *string  `form:"region"`
	RegionCode      *string  `form:"region_code"`
	DefaultBilling  string   `form:"default_billing"`
	DefaultShipping string   `form:"default_shipping"`
}

// Form trims the bound values. street[] wins over street; blank street
// lines are dropped.
func (r FormRequest) Form() Form {
	f := Form{
		ID:              strings.TrimSpace(r.ID),
		FirstName:       trimmed(r.FirstName),
		LastName:        trimmed(r.LastName),
		Company:         trimmed(r.Company),
		City:            trimmed(r.City),
		Postcode:        trimmed(r.Postcode),
		CountryID:       trimmed(r.CountryID),
		Telephone:       trimmed(r.Telephone),
		RegionID:        trimmed(r.RegionID),
		Region:          trimmed(r.Region),
		RegionCode:      trimmed(r.RegionCode),
		DefaultBilling:  flag(r.DefaultBilling),
		DefaultShipping: flag(r.DefaultShipping),
	}

	lines := r.Street
	if lines == nil {
		lines = r.StreetLines
	}
	if lines != nil {
		f.Street = make([]string, 0, len(lines))
		for _, l := range lines {
			if l = strings.TrimSpace(l); l != "" {
				f.Street = append(f.Street, l)
			}
		}
	}
	return f
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	return &s
}

// flag treats checkbox values as set unless empty, "0" or "false".
func flag(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false":
		return false
	default:
		return true
	}
}
