// Package event publishes address book changes to Kafka.
package event

import (
	"encoding/json"
	"time"

	"customer-addressbook/internal/domain"
	"github.com/google/uuid"
)

// Topics and event types.
const (
	TopicAddressSaved   = "customer.address.saved"
	TopicAddressDeleted = "customer.address.deleted"

	Source = "customer-addressbook"
)

// Event is the envelope written to every topic.
type Event struct {
	EventID     string          `json:"event_id"`
	EventType   string          `json:"event_type"`
	AggregateID string          `json:"aggregate_id"`
	CustomerID  string          `json:"customer_id"`
	Timestamp   time.Time       `json:"timestamp"`
	Source      string          `json:"source"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// New creates an event with a generated id and the current time.
func New(eventType, aggregateID, customerID string, data any) (*Event, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return &Event{
		EventID:     uuid.NewString(),
		EventType:   eventType,
		AggregateID: aggregateID,
		CustomerID:  customerID,
		Timestamp:   time.Now().UTC(),
		Source:      Source,
		Data:        raw,
	}, nil
}

// AddressSaved builds the event published after an address is saved.
func AddressSaved(a domain.Address) (*Event, error) {
	return New(TopicAddressSaved, a.ID, a.CustomerID, a)
}

// AddressDeleted builds the event published after an address is deleted.
func AddressDeleted(customerID, addressID string) (*Event, error) {
	return New(TopicAddressDeleted, addressID, customerID, nil)
}
