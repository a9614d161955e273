package domain

import "time"

// Customer is a registered shopper together with the addresses it owns.
type Customer struct {
	ID                       string    `json:"id"`
	Email                    string    `json:"email"`
	PasswordHash             string    `json:"-"`
	FirstName                string    `json:"firstname,omitempty"`
	LastName                 string    `json:"lastname,omitempty"`
	Addresses                []Address `json:"addresses"`
	DefaultBillingAddressID  string    `json:"defaultBilling,omitempty"`
	DefaultShippingAddressID string    `json:"defaultShipping,omitempty"`
	CreatedAt                time.Time `json:"createdAt"`
}

// AddressByID returns the owned address with the given id.
func (c *Customer) AddressByID(id string) (Address, bool) {
	for _, a := range c.Addresses {
		if a.ID == id {
			return a, true
		}
	}
	return Address{}, false
}

// WithoutAddress returns the addresses in order, minus the one with the given id.
func (c *Customer) WithoutAddress(id string) []Address {
	out := make([]Address, 0, len(c.Addresses))
	for _, a := range c.Addresses {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}

// ApplyDefaultFlags moves the default billing/shipping ids to match the
// address flags, then projects the resulting defaults back onto the addresses.
func (c *Customer) ApplyDefaultFlags() {
	owned := make(map[string]bool, len(c.Addresses))
	for _, a := range c.Addresses {
		owned[a.ID] = true
		if a.DefaultBilling {
			c.DefaultBillingAddressID = a.ID
		} else if c.DefaultBillingAddressID == a.ID {
			c.DefaultBillingAddressID = ""
		}
		if a.DefaultShipping {
			c.DefaultShippingAddressID = a.ID
		} else if c.DefaultShippingAddressID == a.ID {
			c.DefaultShippingAddressID = ""
		}
	}
	if !owned[c.DefaultBillingAddressID] {
		c.DefaultBillingAddressID = ""
	}
	if !owned[c.DefaultShippingAddressID] {
		c.DefaultShippingAddressID = ""
	}
	c.ProjectDefaultFlags()
}

// ProjectDefaultFlags sets each address flag from the customer default ids.
func (c *Customer) ProjectDefaultFlags() {
	for i := range c.Addresses {
		id := c.Addresses[i].ID
		c.Addresses[i].DefaultBilling = id != "" && id == c.DefaultBillingAddressID
		c.Addresses[i].DefaultShipping = id != "" && id == c.DefaultShippingAddressID
	}
}
