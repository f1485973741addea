package encounter

//go:generate mockgen -destination=mock/mock_service.go -package=mockencounter -source=service.go

import (
	"context"
	"math/rand"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ironvale/skirmish/internal/dice"
	"github.com/ironvale/skirmish/internal/domain/combat"
	skerrors "github.com/ironvale/skirmish/internal/errors"
	"github.com/ironvale/skirmish/internal/repositories/encounters"
	"github.com/ironvale/skirmish/internal/uuid"
)

// Service defines the encounter service interface
type Service interface {
	// CreateEncounter creates a new encounter with the given roster
	CreateEncounter(ctx context.Context, input *CreateEncounterInput) (*combat.Encounter, error)

	// GetEncounter retrieves an encounter by ID
	GetEncounter(ctx context.Context, encounterID string) (*combat.Encounter, error)

	// StartEncounter rolls initiative and begins combat
	StartEncounter(ctx context.Context, encounterID string) (combat.InitiativeSummary, error)

	// SubmitAction resolves one action for the current combatant
	SubmitAction(ctx context.Context, encounterID string, action combat.Action) (*combat.ActionResult, error)

	// RunTurn lets the tactical policy act for the current combatant
	RunTurn(ctx context.Context, encounterID string) (*combat.ActionResult, error)

	// EndEncounter force-ends an encounter and returns its summary
	EndEncounter(ctx context.Context, encounterID string) (*combat.EncounterSummary, error)

	// Snapshot returns a read-only view of an encounter
	Snapshot(ctx context.Context, encounterID string) (*combat.EncounterSnapshot, error)
}

// CreateEncounterInput contains data for creating an encounter
type CreateEncounterInput struct {
	Name       string
	Combatants []*combat.Combatant
}

type service struct {
	repository    encounters.Repository
	uuidGenerator uuid.Generator
	roller        dice.Roller
	decide        combat.DecisionFunc
	rng           *rand.Rand
	rngMu         sync.Mutex
	logger        *zap.Logger

	// one lock per encounter so concurrent actions against the same
	// encounter serialize instead of clobbering each other's updates
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Repository    encounters.Repository
	UUIDGenerator uuid.Generator
	Roller        dice.Roller
	Decide        combat.DecisionFunc
	Rand          *rand.Rand
	Logger        *zap.Logger
}

// NewService creates a new encounter service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Repository == nil {
		panic("repository is required")
	}

	svc := &service{
		repository:    cfg.Repository,
		uuidGenerator: cfg.UUIDGenerator,
		roller:        cfg.Roller,
		decide:        cfg.Decide,
		rng:           cfg.Rand,
		logger:        cfg.Logger,
		locks:         make(map[string]*sync.Mutex),
	}

	if svc.uuidGenerator == nil {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	if svc.roller == nil {
		svc.roller = dice.NewRoller(nil)
	}
	if svc.decide == nil {
		svc.decide = combat.Decide
	}
	if svc.rng == nil {
		svc.rng = rand.New(rand.NewSource(rand.Int63()))
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}

	return svc
}

func (s *service) lockEncounter(id string) func() {
	s.locksMu.Lock()
	lock, exists := s.locks[id]
	if !exists {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	s.locksMu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (s *service) CreateEncounter(ctx context.Context, input *CreateEncounterInput) (*combat.Encounter, error) {
	if input == nil {
		return nil, skerrors.InvalidArgument("input cannot be nil")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, skerrors.InvalidArgument("encounter name is required")
	}

	encounterID := s.uuidGenerator.New()
	enc, err := combat.New(encounterID, input.Name, input.Combatants, s.roller)
	if err != nil {
		return nil, err
	}

	if err := s.repository.Create(ctx, enc); err != nil {
		return nil, skerrors.Wrap(err, "failed to create encounter")
	}

	s.logger.Info("created encounter",
		zap.String("encounter_id", encounterID),
		zap.String("name", input.Name),
		zap.Int("combatants", len(input.Combatants)))

	return enc, nil
}

func (s *service) GetEncounter(ctx context.Context, encounterID string) (*combat.Encounter, error) {
	if strings.TrimSpace(encounterID) == "" {
		return nil, skerrors.InvalidArgument("encounter ID is required")
	}

	enc, err := s.repository.Get(ctx, encounterID)
	if err != nil {
		return nil, skerrors.Wrapf(err, "failed to get encounter '%s'", encounterID)
	}
	enc.AttachRoller(s.roller)
	return enc, nil
}

func (s *service) StartEncounter(ctx context.Context, encounterID string) (combat.InitiativeSummary, error) {
	unlock := s.lockEncounter(encounterID)
	defer unlock()

	enc, err := s.GetEncounter(ctx, encounterID)
	if err != nil {
		return nil, err
	}

	summary, err := enc.Start()
	if err != nil {
		return nil, err
	}

	if err := s.repository.Update(ctx, enc); err != nil {
		return nil, skerrors.Wrap(err, "failed to save started encounter")
	}

	s.logger.Info("started encounter",
		zap.String("encounter_id", encounterID),
		zap.String("status", string(enc.Status)),
		zap.Int("turn_order", len(enc.TurnOrder)))

	return summary, nil
}

func (s *service) SubmitAction(ctx context.Context, encounterID string, action combat.Action) (*combat.ActionResult, error) {
	unlock := s.lockEncounter(encounterID)
	defer unlock()

	return s.processAction(ctx, encounterID, func(*combat.Encounter) combat.Action {
		return action
	})
}

func (s *service) RunTurn(ctx context.Context, encounterID string) (*combat.ActionResult, error) {
	unlock := s.lockEncounter(encounterID)
	defer unlock()

	return s.processAction(ctx, encounterID, func(enc *combat.Encounter) combat.Action {
		actor := enc.CurrentCombatant()
		if actor == nil {
			return combat.Action{Type: combat.ActionIdle}
		}
		s.rngMu.Lock()
		defer s.rngMu.Unlock()
		return s.decide(actor, enc.Allies(actor.ID), enc.Enemies(actor.ID), s.rng)
	})
}

// processAction loads, resolves and saves under the caller's encounter lock
func (s *service) processAction(ctx context.Context, encounterID string, choose func(*combat.Encounter) combat.Action) (*combat.ActionResult, error) {
	enc, err := s.GetEncounter(ctx, encounterID)
	if err != nil {
		return nil, err
	}

	action := choose(enc)
	result, err := enc.ProcessAction(action)
	if err != nil {
		return nil, err
	}

	if err := s.repository.Update(ctx, enc); err != nil {
		return nil, skerrors.Wrap(err, "failed to save encounter")
	}

	s.logger.Debug("resolved action",
		zap.String("encounter_id", encounterID),
		zap.String("actor_id", result.ActorID),
		zap.String("action", string(result.Type)),
		zap.Int("round", result.Round),
		zap.Bool("ended", result.EncounterEnded))

	return result, nil
}

func (s *service) EndEncounter(ctx context.Context, encounterID string) (*combat.EncounterSummary, error) {
	unlock := s.lockEncounter(encounterID)
	defer unlock()

	enc, err := s.GetEncounter(ctx, encounterID)
	if err != nil {
		return nil, err
	}

	enc.End()
	if err := s.repository.Update(ctx, enc); err != nil {
		return nil, skerrors.Wrap(err, "failed to save ended encounter")
	}

	summary, err := enc.Summary()
	if err != nil {
		return nil, err
	}

	s.logger.Info("ended encounter",
		zap.String("encounter_id", encounterID),
		zap.String("winner", string(summary.Winner)),
		zap.Bool("draw", summary.Draw),
		zap.Int("rounds", summary.Rounds))

	return summary, nil
}

func (s *service) Snapshot(ctx context.Context, encounterID string) (*combat.EncounterSnapshot, error) {
	enc, err := s.GetEncounter(ctx, encounterID)
	if err != nil {
		return nil, err
	}
	return enc.Snapshot(), nil
}
