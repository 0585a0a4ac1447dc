package domain

import "time"

// Contact is a person entry in the address book.
type Contact struct {
	ID        string    `bson:"_id"`
	FirstName string    `bson:"first_name"`
	LastName  string    `bson:"last_name"`
	Email     string    `bson:"email"`
	Phone     string    `bson:"phone"`
	Company   string    `bson:"company"`
	Notes     string    `bson:"notes"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// FullName returns first and last name joined by a space.
func (c *Contact) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

const (
	// DefaultListLimit is used when a list request does not set a limit.
	DefaultListLimit = 50

	// MaxListLimit caps the page size of a list request.
	MaxListLimit = 200
)

// ContactFilter narrows and pages a contact listing.
type ContactFilter struct {
	Search string // case-insensitive substring over names, email and company
	Limit  int
	Offset int
}

// Normalize applies default and maximum page sizes.
func (f ContactFilter) Normalize() ContactFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
