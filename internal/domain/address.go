package domain

import "time"

// AddressRegion is the region sub-record attached to an address.
// RegionID is zero when the region was entered as free text.
type AddressRegion struct {
	RegionID   int    `json:"regionId,omitempty"`
	Region     string `json:"region,omitempty"`
	RegionCode string `json:"regionCode,omitempty"`
}

// Address is a shipping or billing address owned by a customer.
type Address struct {
	ID              string        `json:"id"`
	CustomerID      string        `json:"customerId" form:"customer_id" validate:"required"`
	FirstName       string        `json:"firstname" form:"firstname" validate:"required,max=255"`
	LastName        string        `json:"lastname" form:"lastname" validate:"required,max=255"`
	Company         string        `json:"company,omitempty" form:"company" validate:"max=255"`
	Street          []string      `json:"street" form:"street" validate:"required,min=1,max=4,dive,max=255"`
	City            string        `json:"city" form:"city" validate:"required,max=255"`
	Postcode        string        `json:"postcode" form:"postcode" validate:"required,max=32"`
	CountryID       string        `json:"countryId" form:"country_id" validate:"required,iso3166_1_alpha2"`
	Telephone       string        `json:"telephone" form:"telephone" validate:"required,max=64"`
	Region          AddressRegion `json:"region"`
	DefaultBilling  bool          `json:"defaultBilling"`
	DefaultShipping bool          `json:"defaultShipping"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}
