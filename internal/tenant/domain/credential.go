package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// CredentialType selects the form a credential config belongs to.
type CredentialType string

const (
	CredentialLogin    CredentialType = "login"
	CredentialRegister CredentialType = "register"
)

// ErrInvalidCredentialSetup is returned when a tenant's credential configs
// cannot support login and registration.
var ErrInvalidCredentialSetup = errors.New("invalid credentials configuration: at least one email and password configuration is required for both contexts")

// CredentialConfig is one configurable field on a tenant's login or register form.
//
// Rule is a regular expression matched at the start of the value. Several
// expressions joined by "&&" must all match.
type CredentialConfig struct {
	ID             string
	ServiceID      string
	Type           CredentialType
	Field          string
	Label          string
	HTMLType       string
	Rule           string
	NoMatchMessage string
	Position       int
}

// FieldError reports the first credential field that failed validation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

// RuleError reports a stored rule that does not compile.
type RuleError struct {
	Field string
	Err   error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("credential rule for %q: %v", e.Field, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// Matches reports whether value satisfies the config's rule. An empty rule
// accepts anything.
func (c CredentialConfig) Matches(value string) (bool, error) {
	if c.Rule == "" {
		return true, nil
	}
	for _, part := range strings.Split(c.Rule, "&&") {
		re, err := regexp.Compile(part)
		if err != nil {
			return false, &RuleError{Field: c.Field, Err: err}
		}
		loc := re.FindStringIndex(value)
		if loc == nil || loc[0] != 0 {
			return false, nil
		}
	}
	return true, nil
}

// ValidateCredentialFields checks data against every config of the given type.
// A missing value or a rule mismatch yields a *FieldError; a broken rule yields
// a *RuleError.
func ValidateCredentialFields(configs []CredentialConfig, typ CredentialType, data map[string]string) error {
	for _, c := range configs {
		if c.Type != typ {
			continue
		}
		value := data[c.Field]
		if value == "" {
			return &FieldError{Field: c.Field, Message: "This field is required."}
		}
		ok, err := c.Matches(value)
		if err != nil {
			return err
		}
		if !ok {
			return &FieldError{Field: c.Field, Message: c.NoMatchMessage}
		}
	}
	return nil
}

// ValidateCredentialSetup checks that a tenant with credential configs has at
// least two fields per form and a password field in one of them.
func ValidateCredentialSetup(configs []CredentialConfig) error {
	if len(configs) == 0 {
		return nil
	}
	var login, register int
	var loginPassword, registerPassword int
	for _, c := range configs {
		switch c.Type {
		case CredentialLogin:
			login++
			if c.Field == "password" {
				loginPassword++
			}
		case CredentialRegister:
			register++
			if c.Field == "password" {
				registerPassword++
			}
		}
	}
	if login < 2 || register < 2 || (loginPassword != 1 && registerPassword != 1) {
		return ErrInvalidCredentialSetup
	}
	return nil
}

// Default credential rules.
const (
	EmailRule    = `^[a-zA-Z0-9._-]+@[a-zA-Z0-9]+\.[a-zA-Z\.a-zA-Z]{1,3}$`
	PasswordRule = `^.{8,}$&&.*\d&&.*\W&&.*[A-Z]&&.*[a-z]&&[^.\n]`
)

// DefaultCredentialConfigs returns the login and register fields given to a
// tenant that has none.
func DefaultCredentialConfigs(serviceID string) []CredentialConfig {
	return []CredentialConfig{
		{ServiceID: serviceID, Type: CredentialLogin, Field: "email", Label: "Write your email", HTMLType: "email", Position: 0},
		{ServiceID: serviceID, Type: CredentialLogin, Field: "password", Label: "Write your password", HTMLType: "password", Position: 1},
		{ServiceID: serviceID, Type: CredentialRegister, Field: "email", Label: "Write your email", HTMLType: "email", Rule: EmailRule, NoMatchMessage: "Invalid email", Position: 0},
		{ServiceID: serviceID, Type: CredentialRegister, Field: "password", Label: "Write your password", HTMLType: "password", Rule: PasswordRule, NoMatchMessage: "Invalid password", Position: 1},
		{ServiceID: serviceID, Type: CredentialRegister, Field: "confirm_password", Label: "Confirm your password", HTMLType: "password", NoMatchMessage: "Confirm password", Position: 2},
	}
}
