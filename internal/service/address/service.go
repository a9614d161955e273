package address

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"customer-addressbook/internal/domain"
	"customer-addressbook/internal/event"
	"customer-addressbook/internal/logger"
	addrrepo "customer-addressbook/internal/repository/address"
	custrepo "customer-addressbook/internal/repository/customer"
	"customer-addressbook/internal/validation"
	"github.com/google/uuid"
)

// ErrAddressNotFound is returned when the address does not exist or is
// owned by another customer.
var ErrAddressNotFound = errors.New("address not found")

// RegionLookup reads the region directory.
type RegionLookup interface {
	GetByID(ctx context.Context, id int) (*domain.Region, error)
	ListByCountry(ctx context.Context, countryID string) ([]domain.Region, error)
}

var labels = map[string]string{
	"customer_id": "Customer",
	"firstname":   "First Name",
	"lastname":    "Last Name",
	"company":     "Company",
	"street":      "Street Address",
	"city":        "City",
	"postcode":    "Zip/Postal Code",
	"country_id":  "Country",
	"telephone":   "Phone Number",
	"region_id":   "State/Province",
}

// Service saves and deletes customer addresses. With a customer repository
// it works on the whole customer aggregate, otherwise on single addresses.
type Service struct {
	addresses addrrepo.Repository
	customers custrepo.Repository
	regions   RegionLookup
	events    event.Publisher
	logger    *slog.Logger
	newID     func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithCustomerRepository switches the service to customer-aggregate mode.
func WithCustomerRepository(r custrepo.Repository) Option {
	return func(s *Service) { s.customers = r }
}

// WithEvents publishes address events after successful writes.
func WithEvents(p event.Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service in direct address mode unless WithCustomerRepository is given.
func New(addresses addrrepo.Repository, regions RegionLookup, opts ...Option) *Service {
	s := &Service{
		addresses: addresses,
		regions:   regions,
		events:    event.Noop{},
		logger:    logger.Discard(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AggregateMode reports whether saves go through the customer repository.
func (s *Service) AggregateMode() bool {
	return s.customers != nil
}

// List returns the customer's addresses in stored order.
func (s *Service) List(ctx context.Context, customerID string) ([]domain.Address, error) {
	if s.AggregateMode() {
		c, err := s.customers.GetByID(ctx, customerID)
		if err != nil {
			return nil, fmt.Errorf("load customer: %w", err)
		}
		return c.Addresses, nil
	}
	list, err := s.addresses.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Address{}
	}
	return list, nil
}

// Get returns one address owned by the customer.
func (s *Service) Get(ctx context.Context, customerID, addressID string) (*domain.Address, error) {
	if s.AggregateMode() {
		c, err := s.customers.GetByID(ctx, customerID)
		if err != nil {
			return nil, fmt.Errorf("load customer: %w", err)
		}
		a, ok := c.AddressByID(addressID)
		if !ok {
			return nil, ErrAddressNotFound
		}
		return &a, nil
	}
	return s.ownedAddress(ctx, customerID, addressID)
}

// Regions returns the selectable regions of a country, ordered by name.
// Countries without a region directory yield an empty list.
func (s *Service) Regions(ctx context.Context, countryID string) ([]domain.Region, error) {
	countryID = strings.TrimSpace(countryID)
	if countryID == "" {
		return []domain.Region{}, nil
	}
	list, err := s.regions.ListByCountry(ctx, countryID)
	if err != nil {
		return nil, fmt.Errorf("list regions for %s: %w", countryID, err)
	}
	if list == nil {
		list = []domain.Region{}
	}
	return list, nil
}

// Save creates or updates the address described by f for the customer.
func (s *Service) Save(ctx context.Context, customerID string, f Form) (*domain.Address, error) {
	var (
		saved *domain.Address
		err   error
	)
	if s.AggregateMode() {
		saved, err = s.saveThroughCustomer(ctx, customerID, f)
	} else {
		saved, err = s.saveDirect(ctx, customerID, f)
	}
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "address saved",
		slog.String("customer_id", customerID),
		slog.String("address_id", saved.ID),
		slog.Bool("aggregate_mode", s.AggregateMode()),
	)
	if e, err := event.AddressSaved(*saved); err == nil {
		s.publish(ctx, event.TopicAddressSaved, e)
	}
	return saved, nil
}

func (s *Service) saveThroughCustomer(ctx context.Context, customerID string, f Form) (*domain.Address, error) {
	c, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}

	addr, err := s.extract(ctx, customerID, f, c)
	if err != nil {
		return nil, err
	}

	c.Addresses = append(c.WithoutAddress(f.ID), addr)
	c.ApplyDefaultFlags()

	out, err := s.customers.Save(ctx, *c)
	if err != nil {
		return nil, fmt.Errorf("save customer: %w", err)
	}
	saved, ok := out.AddressByID(addr.ID)
	if !ok {
		return nil, fmt.Errorf("saved customer %s lost address %s", customerID, addr.ID)
	}
	return &saved, nil
}

func (s *Service) saveDirect(ctx context.Context, customerID string, f Form) (*domain.Address, error) {
	addr, err := s.extract(ctx, customerID, f, nil)
	if err != nil {
		return nil, err
	}
	saved, err := s.addresses.Save(ctx, addr)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("save address: %w", err)
	}
	return saved, nil
}

// Delete removes the customer's address.
func (s *Service) Delete(ctx context.Context, customerID, addressID string) error {
	if s.AggregateMode() {
		c, err := s.customers.GetByID(ctx, customerID)
		if err != nil {
			return fmt.Errorf("load customer: %w", err)
		}
		remaining := c.WithoutAddress(addressID)
		if len(remaining) == len(c.Addresses) {
			return ErrAddressNotFound
		}
		c.Addresses = remaining
		c.ApplyDefaultFlags()
		if _, err := s.customers.Save(ctx, *c); err != nil {
			return fmt.Errorf("save customer: %w", err)
		}
	} else {
		if _, err := s.ownedAddress(ctx, customerID, addressID); err != nil {
			return err
		}
		if err := s.addresses.Delete(ctx, addressID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return ErrAddressNotFound
			}
			return fmt.Errorf("delete address: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "address deleted", slog.String("customer_id", customerID), slog.String("address_id", addressID))
	if e, err := event.AddressDeleted(customerID, addressID); err == nil {
		s.publish(ctx, event.TopicAddressDeleted, e)
	}
	return nil
}

// extract builds the address to persist: the existing address (if f names
// one) overwritten by every submitted attribute.
func (s *Service) extract(ctx context.Context, customerID string, f Form, c *domain.Customer) (domain.Address, error) {
	var existing domain.Address
	if f.ID != "" {
		if c != nil {
			a, ok := c.AddressByID(f.ID)
			if !ok {
				return domain.Address{}, ErrAddressNotFound
			}
			existing = a
		} else {
			a, err := s.ownedAddress(ctx, customerID, f.ID)
			if err != nil {
				return domain.Address{}, err
			}
			existing = *a
		}
	}

	region, resolved, err := s.normalizeRegion(ctx, f)
	if err != nil {
		return domain.Address{}, err
	}

	addr := merge(existing, f)
	addr.Region = region
	addr.CustomerID = customerID
	addr.DefaultBilling = f.DefaultBilling
	addr.DefaultShipping = f.DefaultShipping
	if addr.ID == "" {
		addr.ID = s.newID()
	}

	if err := validateAddress(addr, resolved); err != nil {
		return domain.Address{}, err
	}
	return addr, nil
}

// normalizeRegion resolves the submitted region attributes. A region id
// replaces name and code with the directory values.
func (s *Service) normalizeRegion(ctx context.Context, f Form) (domain.AddressRegion, *domain.Region, error) {
	var out domain.AddressRegion
	if f.Region != nil {
		out.Region = *f.Region
	}
	if f.RegionCode != nil {
		out.RegionCode = *f.RegionCode
	}

	if f.RegionID == nil || *f.RegionID == "" || *f.RegionID == "0" {
		return out, nil, nil
	}

	id, err := strconv.Atoi(*f.RegionID)
	if err != nil || id < 0 {
		return out, nil, regionInputError()
	}
	reg, err := s.regions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return out, nil, regionInputError()
		}
		return out, nil, fmt.Errorf("load region %d: %w", id, err)
	}

	out.RegionID = reg.ID
	out.Region = reg.Name
	out.RegionCode = reg.Code
	return out, reg, nil
}

func regionInputError() *domain.InputError {
	return domain.NewInputError(domain.FieldError{
		Field:   "region_id",
		Message: fmt.Sprintf("Invalid value of %q provided for the %q field.", "region_id", labels["region_id"]),
	})
}

func validateAddress(a domain.Address, region *domain.Region) error {
	inputErr := domain.NewInputError()
	if err := validation.Struct(a, labels); err != nil {
		if !errors.As(err, &inputErr) {
			return err
		}
	}
	if region != nil && !strings.EqualFold(region.CountryID, a.CountryID) {
		inputErr.Add("region_id", fmt.Sprintf("%q does not belong to the selected country.", labels["region_id"]))
	}
	if inputErr.HasErrors() {
		return inputErr
	}
	return nil
}

func (s *Service) ownedAddress(ctx context.Context, customerID, addressID string) (*domain.Address, error) {
	a, err := s.addresses.GetByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("load address: %w", err)
	}
	if a.CustomerID != customerID {
		return nil, ErrAddressNotFound
	}
	return a, nil
}

func (s *Service) publish(ctx context.Context, topic string, e *event.Event) {
	if err := s.events.Publish(ctx, topic, e); err != nil {
		s.logger.WarnContext(ctx, "address event not published", slog.String("topic", topic), slog.Any("error", err))
	}
}

func merge(existing domain.Address, f Form) domain.Address {
	out := existing
	out.Street = append([]string(nil), existing.Street...)
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&out.FirstName, f.FirstName)
	set(&out.LastName, f.LastName)
	set(&out.Company, f.Company)
	set(&out.City, f.City)
	set(&out.Postcode, f.Postcode)
	set(&out.Telephone, f.Telephone)
	if f.CountryID != nil {
		out.CountryID = strings.ToUpper(*f.CountryID)
	}
	if f.Street != nil {
		out.Street = append([]string(nil), f.Street...)
	}
	return out
}
