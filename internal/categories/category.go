// Package categories manages the lookup list items are filed under.
package categories

import (
	"time"

	"github.com/google/uuid"
)

// Category is a named bucket for lost and found items.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateCommand contains the fields for creating a category.
type CreateCommand struct {
	Name        string `json:"name" validate:"notblank,max=100"`
	Description string `json:"description" validate:"max=500"`
}
