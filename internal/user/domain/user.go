package domain

import (
	"errors"
	"time"
)

// User is a tenant member or, when EventID is set, an event guest.
type User struct {
	ID           string
	ServiceID    string
	EventID      string
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsVerified   bool
	IsPremium    bool
	IsDeleted    bool
	Profile
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile holds optional fields passed through untouched at creation.
type Profile struct {
	Document     string
	BirthDate    *time.Time
	Country      string
	ProfileImage string
}

// IsGuest reports whether the user was provisioned for an event.
func (u *User) IsGuest() bool { return u.EventID != "" }

// FullName returns "first last".
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// FieldValue returns the stored value of a credential form field. Birth dates
// use the YYYY-MM-DD layout. ok is false for fields a user does not store.
func (u *User) FieldValue(field string) (value string, ok bool) {
	switch field {
	case "email":
		return u.Email, true
	case "username":
		return u.Username, true
	case "first_name":
		return u.FirstName, true
	case "last_name":
		return u.LastName, true
	case "document":
		return u.Document, true
	case "country":
		return u.Country, true
	case "profile_image":
		return u.ProfileImage, true
	case "birth_date":
		if u.BirthDate == nil {
			return "", true
		}
		return u.BirthDate.Format("2006-01-02"), true
	}
	return "", false
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.ServiceID == "" {
		return errors.New("service is required")
	}
	if u.Username == "" {
		return errors.New("username is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}
