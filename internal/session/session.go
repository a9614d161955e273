// Package session keeps per-visitor storefront state in Redis: the logged-in
// customer, the form key, flash messages and the last submitted address form.
package session

import (
	"net/url"
)

// Message types.
const (
	MessageSuccess = "success"
	MessageError   = "error"
)

// Message is a flash message shown once on the next rendered page.
type Message struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type data struct {
	CustomerID      string              `json:"customerId,omitempty"`
	FormKey         string              `json:"formKey"`
	AddressFormData map[string][]string `json:"addressFormData,omitempty"`
	Messages        []Message           `json:"messages,omitempty"`
}

// Session is the state of one visitor. It is not safe for concurrent use.
type Session struct {
	id        string
	data      data
	destroyed bool
}

// ID returns the session identifier carried by the cookie.
func (s *Session) ID() string { return s.id }

// CustomerID returns the logged-in customer, or "" for guests.
func (s *Session) CustomerID() string { return s.data.CustomerID }

// SetCustomerID binds the session to a customer; "" logs out.
func (s *Session) SetCustomerID(id string) { s.data.CustomerID = id }

// LoggedIn reports whether a customer is bound to the session.
func (s *Session) LoggedIn() bool { return s.data.CustomerID != "" }

// FormKey returns the anti-forgery key issued to this session.
func (s *Session) FormKey() string { return s.data.FormKey }

// AddSuccess queues a success message.
func (s *Session) AddSuccess(text string) {
	s.data.Messages = append(s.data.Messages, Message{Type: MessageSuccess, Text: text})
}

// AddError queues an error message.
func (s *Session) AddError(text string) {
	s.data.Messages = append(s.data.Messages, Message{Type: MessageError, Text: text})
}

// Messages returns the queued messages without removing them.
func (s *Session) Messages() []Message {
	return append([]Message(nil), s.data.Messages...)
}

// DrainMessages returns and clears the queued messages.
func (s *Session) DrainMessages() []Message {
	out := s.data.Messages
	s.data.Messages = nil
	if out == nil {
		out = []Message{}
	}
	return out
}

// StashAddressForm keeps submitted address values so the edit form can be
// redisplayed pre-filled.
func (s *Session) StashAddressForm(values url.Values) {
	if values == nil {
		s.data.AddressFormData = nil
		return
	}
	clone := make(map[string][]string, len(values))
	for k, v := range values {
		clone[k] = append([]string(nil), v...)
	}
	s.data.AddressFormData = clone
}

// TakeAddressForm returns and clears the stashed address form. The result
// is nil when nothing was stashed.
func (s *Session) TakeAddressForm() url.Values {
	out := s.data.AddressFormData
	s.data.AddressFormData = nil
	if out == nil {
		return nil
	}
	return url.Values(out)
}
