package encounters

//go:generate mockgen -destination=mock/mock_repository.go -package=mockencounters -source=repository.go

import (
	"context"

	"github.com/ironvale/skirmish/internal/domain/combat"
)

// Repository defines the interface for encounter storage
type Repository interface {
	// Create stores a new encounter
	Create(ctx context.Context, enc *combat.Encounter) error

	// Get retrieves an encounter by ID
	Get(ctx context.Context, id string) (*combat.Encounter, error)

	// Update replaces an existing encounter
	Update(ctx context.Context, enc *combat.Encounter) error

	// Delete removes an encounter
	Delete(ctx context.Context, id string) error

	// GetByStatus retrieves all encounters with the given status
	GetByStatus(ctx context.Context, status combat.Status) ([]*combat.Encounter, error)
}
