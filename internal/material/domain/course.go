// Package domain defines course content sold by tenants.
package domain

import "time"

// Course is a unit of content. Paid courses need an active contract.
type Course struct {
	ID        string
	ServiceID string
	Title     string
	IsPaid    bool
	CreatedAt time.Time
}
