package models

// Person represents a participant in a split.
type Person struct {
	// ID is the stable account identifier when the person is linked to an
	// account. Empty for anonymous participants.
	ID string

	// Name is the display name. For anonymous participants this is the
	// identity: two different names are two different people.
	Name string
}

// Key returns the identifier used to key calculation results.
// Linked people are keyed by account ID, anonymous people by display name.
func (p Person) Key() string {
	if p.ID != "" {
		return p.ID
	}
	return p.Name
}
