package encounters

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ironvale/skirmish/internal/domain/combat"
	skerrors "github.com/ironvale/skirmish/internal/errors"
)

// inMemoryRepository implements Repository using in-memory storage
type inMemoryRepository struct {
	mu         sync.RWMutex
	encounters map[string]*combat.Encounter
}

// NewInMemoryRepository creates a new in-memory encounter repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		encounters: make(map[string]*combat.Encounter),
	}
}

// cloneEncounter deep-copies an encounter so callers never share state with
// the store. The dice roller is not part of the stored state; callers
// reattach one after a read.
func cloneEncounter(enc *combat.Encounter) (*combat.Encounter, error) {
	data, err := json.Marshal(enc)
	if err != nil {
		return nil, skerrors.Wrap(err, "failed to serialize encounter")
	}
	var out combat.Encounter
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, skerrors.Wrap(err, "failed to deserialize encounter")
	}
	return &out, nil
}

func (r *inMemoryRepository) Create(ctx context.Context, enc *combat.Encounter) error {
	if enc == nil {
		return skerrors.InvalidArgument("encounter cannot be nil")
	}
	if enc.ID == "" {
		return skerrors.InvalidArgument("encounter ID cannot be empty")
	}

	stored, err := cloneEncounter(enc)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.encounters[enc.ID]; exists {
		return skerrors.AlreadyExistsf("encounter with ID %s already exists", enc.ID)
	}
	r.encounters[enc.ID] = stored
	return nil
}

func (r *inMemoryRepository) Get(ctx context.Context, id string) (*combat.Encounter, error) {
	r.mu.RLock()
	enc, exists := r.encounters[id]
	r.mu.RUnlock()

	if !exists {
		return nil, skerrors.NotFoundf("encounter not found: %s", id)
	}
	return cloneEncounter(enc)
}

func (r *inMemoryRepository) Update(ctx context.Context, enc *combat.Encounter) error {
	if enc == nil {
		return skerrors.InvalidArgument("encounter cannot be nil")
	}
	if enc.ID == "" {
		return skerrors.InvalidArgument("encounter ID cannot be empty")
	}

	stored, err := cloneEncounter(enc)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.encounters[enc.ID]; !exists {
		return skerrors.NotFoundf("encounter not found: %s", enc.ID)
	}
	r.encounters[enc.ID] = stored
	return nil
}

func (r *inMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.encounters[id]; !exists {
		return skerrors.NotFoundf("encounter not found: %s", id)
	}
	delete(r.encounters, id)
	return nil
}

func (r *inMemoryRepository) GetByStatus(ctx context.Context, status combat.Status) ([]*combat.Encounter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*combat.Encounter
	for _, enc := range r.encounters {
		if enc.Status != status {
			continue
		}
		clone, err := cloneEncounter(enc)
		if err != nil {
			return nil, err
		}
		out = append(out, clone)
	}
	return out, nil
}
