package domain

import (
	"time"

	"github.com/google/uuid"
)

// Student represents a transport-enrolled passenger. The pipeline reads
// students; it never mutates them.
type Student struct {
	ID                uuid.UUID
	Name              string
	Phone             string
	AllocatedRouteID  uuid.UUID
	BoardingStop      string
	TransportEnrolled bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
