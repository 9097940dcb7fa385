package ports

import (
	"context"

	"canopy/pkg/domain"
)

// SpecStore persists the specification a session is working on. The core
// holds no ambient "current spec"; whoever owns a session owns its
// specification, and the store is the only place it lives between
// requests.
type SpecStore interface {
	// Save persists the specification for a given session ID.
	Save(ctx context.Context, sessionID string, s *domain.Specification) error

	// Load retrieves the specification for a given session ID.
	// Returns domain.ErrSpecNotFound if the session has none.
	Load(ctx context.Context, sessionID string) (*domain.Specification, error)

	// Delete removes the specification for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the session IDs with a stored specification.
	List(ctx context.Context) ([]string, error)
}
