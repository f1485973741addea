package encounter

import (
	"context"

	"github.com/ironvale/skirmish/internal/domain/combat"
)

// RunToCompletion drives a started encounter with the tactical policy until
// it ends on its own or exceeds maxRounds, then returns its summary. A fight
// that hits the round cap is called off without a winner.
func RunToCompletion(ctx context.Context, svc Service, encounterID string, maxRounds int) (*combat.EncounterSummary, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := svc.RunTurn(ctx, encounterID)
		if err != nil {
			return nil, err
		}
		if result.EncounterEnded || result.Round > maxRounds {
			break
		}
	}

	// EndEncounter is a no-op on an already-ended encounter, so this both
	// calls off capped fights and fetches the summary of finished ones
	return svc.EndEncounter(ctx, encounterID)
}
