// Package domain defines stores, purchasable packages and the contracts that
// record a user's purchase.
package domain

import "time"

// BackendName selects the receipt verification backend of a store.
type BackendName string

const (
	BackendDummy BackendName = "dummy"
	BackendApple BackendName = "apple"
)

// Store is an app store a tenant sells through.
type Store struct {
	ID        string
	ServiceID string
	Name      string
	Backend   BackendName
}

// Package is a purchasable bundle of courses. Price is the decimal price as
// stored, e.g. "9.90".
type Package struct {
	ID        string
	ServiceID string
	StoreID   string
	Label     string
	Slug      string
	Price     string
	CourseIDs []string
	CreatedAt time.Time
}

// Contract links a user to a purchased package. Receipt holds the obscured
// store receipt.
type Contract struct {
	ID        string
	UserID    string
	PackageID string
	Receipt   string
	IsActive  bool
	CreatedAt time.Time
}
