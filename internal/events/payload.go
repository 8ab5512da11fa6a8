// Package events turns identity-provider user lifecycle events into user
// store writes. Events arrive over HTTP (see the ingest handler) or NATS.
package events

import (
	"encoding/json"
	"strings"
)

const (
	UserCreated = "clerk/user.created"
	UserUpdated = "clerk/user.updated"
	UserDeleted = "clerk/user.deleted"
)

// Envelope is the delivery wrapper around a provider event.
type Envelope struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
	TS   int64           `json:"ts,omitempty"`
}

type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type PhoneNumber struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phone_number"`
}

// UserData is the provider's user object as carried in Envelope.Data.
type UserData struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	EmailAddresses []EmailAddress `json:"email_addresses"`
	Phone          string         `json:"phone"`
	PhoneNumbers   []PhoneNumber  `json:"phone_numbers"`
	Password       string         `json:"password"`
	Location       string         `json:"location"`
	UserType       string         `json:"userType"`
	ImageURL       string         `json:"image_url"`
}

// NameFromSubject maps a NATS subject such as clerk.user.created to the
// event name clerk/user.created.
func NameFromSubject(subject string) string {
	return strings.Replace(subject, ".", "/", 1)
}
