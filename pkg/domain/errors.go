package domain

import "fmt"

// NotFoundError is returned when a mutation names an id absent from its collection.
// The store state is left unchanged.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}
