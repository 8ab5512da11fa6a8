package events

import (
	"encoding/json"
	"strings"

	"estate-api/internal/domain"
)

func decodeUser(raw json.RawMessage) (UserData, error) {
	var d UserData
	if len(raw) == 0 || string(raw) == "null" {
		return d, domain.Malformed("event data is missing")
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		return d, &domain.Error{Kind: domain.KindMalformedEvent, Msg: "event data is not a user object", Err: err}
	}
	d.ID = strings.TrimSpace(d.ID)
	return d, nil
}

func primaryEmail(d UserData) (string, error) {
	if len(d.EmailAddresses) == 0 {
		return "", domain.Malformed("event has no email addresses")
	}
	email := strings.TrimSpace(d.EmailAddresses[0].EmailAddress)
	if email == "" {
		return "", domain.Malformed("primary email address is empty")
	}
	return email, nil
}

func displayName(d UserData) string {
	if n := strings.TrimSpace(d.Name); n != "" {
		return n
	}
	return strings.TrimSpace(strings.TrimSpace(d.FirstName) + " " + strings.TrimSpace(d.LastName))
}

func phone(d UserData) string {
	if p := strings.TrimSpace(d.Phone); p != "" {
		return p
	}
	if len(d.PhoneNumbers) > 0 {
		return strings.TrimSpace(d.PhoneNumbers[0].PhoneNumber)
	}
	return ""
}

func userType(d UserData) (domain.UserType, error) {
	t := domain.UserType(strings.ToUpper(strings.TrimSpace(d.UserType))).OrDefault()
	if !t.Valid() {
		return "", domain.Malformed("unknown userType " + d.UserType)
	}
	return t, nil
}

func fields(d UserData) (domain.UserFields, error) {
	email, err := primaryEmail(d)
	if err != nil {
		return domain.UserFields{}, err
	}
	t, err := userType(d)
	if err != nil {
		return domain.UserFields{}, err
	}
	return domain.UserFields{
		Name:     displayName(d),
		Email:    email,
		Phone:    domain.StringPtr(phone(d)),
		Password: domain.StringPtr(d.Password),
		Location: strings.TrimSpace(d.Location),
		UserType: t,
		Avatar:   domain.StringPtr(strings.TrimSpace(d.ImageURL)),
	}, nil
}

// ToUser maps a user created payload onto a new store record keyed by the
// provider id. Password is copied as received.
func ToUser(raw json.RawMessage) (*domain.User, error) {
	d, err := decodeUser(raw)
	if err != nil {
		return nil, err
	}
	if d.ID == "" {
		return nil, domain.Malformed("event has no user id")
	}
	f, err := fields(d)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:       d.ID,
		Name:     f.Name,
		Email:    f.Email,
		Phone:    f.Phone,
		Password: f.Password,
		Location: f.Location,
		UserType: f.UserType,
		Avatar:   f.Avatar,
	}, nil
}

// ToUserFields maps a user updated payload onto the id and the full field set
// to overwrite.
func ToUserFields(raw json.RawMessage) (string, domain.UserFields, error) {
	d, err := decodeUser(raw)
	if err != nil {
		return "", domain.UserFields{}, err
	}
	if d.ID == "" {
		return "", domain.UserFields{}, domain.Malformed("event has no user id")
	}
	f, err := fields(d)
	if err != nil {
		return "", domain.UserFields{}, err
	}
	return d.ID, f, nil
}

func ToUserID(raw json.RawMessage) (string, error) {
	d, err := decodeUser(raw)
	if err != nil {
		return "", err
	}
	if d.ID == "" {
		return "", domain.Malformed("event has no user id")
	}
	return d.ID, nil
}
