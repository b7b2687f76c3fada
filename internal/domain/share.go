package domain

import (
	"time"

	"github.com/google/uuid"
)

// Share is the public, anonymized progress page of one user.
// Each user owns at most one share; republishing refreshes Stats in place.
type Share struct {
	ID        uuid.UUID
	UserID    string
	Stats     PublicStats
	UpdatedAt time.Time
}
