// Package domain defines tenant content-access policies written in Rego.
package domain

import "time"

// Policy is a tenant-level Rego module. Enabled policies replace the default
// content-access policy for the tenant.
type Policy struct {
	ID        string
	ServiceID string
	Rules     string
	Enabled   bool
	CreatedAt time.Time
}
