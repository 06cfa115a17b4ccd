// Package domain holds the tenant ("service") records: the tenant itself, its
// configurable credential fields and its email configurations.
package domain

import (
	"errors"
	"time"
)

// Service is a tenant. Users, content and configuration are partitioned by it.
type Service struct {
	ID                   string
	Name                 string
	Slug                 string
	URL                  string
	SMTPEmail            string
	ConfirmationRequired bool
	Language             string
	Terms                string
	CreatedAt            time.Time
}

// Validate checks the fields required before persistence.
func (s *Service) Validate() error {
	if s.Name == "" {
		return errors.New("service name is required")
	}
	if s.Language == "" {
		s.Language = "en"
	}
	return nil
}
