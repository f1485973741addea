package encounter_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ironvale/skirmish/internal/dice"
	mockdice "github.com/ironvale/skirmish/internal/dice/mock"
	"github.com/ironvale/skirmish/internal/domain/combat"
	skerrors "github.com/ironvale/skirmish/internal/errors"
	"github.com/ironvale/skirmish/internal/repositories/encounters"
	mockencounters "github.com/ironvale/skirmish/internal/repositories/encounters/mock"
	"github.com/ironvale/skirmish/internal/services/encounter"
	"github.com/ironvale/skirmish/internal/testutils"
	mockuuid "github.com/ironvale/skirmish/internal/uuid/mocks"
)

func newTestService(t *testing.T, rolls []int) (encounter.Service, encounters.Repository) {
	t.Helper()
	roller := dice.NewMockRoller()
	roller.SetRolls(rolls)
	repo := encounters.NewInMemoryRepository()
	svc := encounter.NewService(&encounter.ServiceConfig{
		Repository: repo,
		Roller:     roller,
	})
	return svc, repo
}

func duelInput() *encounter.CreateEncounterInput {
	return &encounter.CreateEncounterInput{
		Name: "bridge ambush",
		Combatants: []*combat.Combatant{
			testutils.CreateTestFighter("fighter", "Brakk"),
			testutils.CreateTestGoblin("goblin", "Snagtooth"),
		},
	}
}

func TestCreateEncounter_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mockencounters.NewMockRepository(ctrl)
	svc := encounter.NewService(&encounter.ServiceConfig{Repository: repo})

	_, err := svc.CreateEncounter(context.Background(), nil)
	assert.True(t, skerrors.IsInvalidArgument(err))

	_, err = svc.CreateEncounter(context.Background(), &encounter.CreateEncounterInput{Name: "  "})
	assert.True(t, skerrors.IsInvalidArgument(err))

	// roster validation happens before the repository is touched
	_, err = svc.CreateEncounter(context.Background(), &encounter.CreateEncounterInput{
		Name:       "bad roster",
		Combatants: []*combat.Combatant{{ID: "x", Faction: "bystanders", MaxHP: 5, CurrentHP: 5}},
	})
	assert.True(t, skerrors.IsInvalidArgument(err))
}

func TestCreateEncounter_UsesGeneratedID(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mockencounters.NewMockRepository(ctrl)
	gen := mockuuid.NewMockGenerator(ctrl)

	gen.EXPECT().New().Return("enc-123")
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	svc := encounter.NewService(&encounter.ServiceConfig{
		Repository:    repo,
		UUIDGenerator: gen,
	})

	enc, err := svc.CreateEncounter(context.Background(), duelInput())
	require.NoError(t, err)
	assert.Equal(t, "enc-123", enc.ID)
	assert.Equal(t, combat.StatusNotStarted, enc.Status)
}

func TestCreateEncounter_RepositoryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mockencounters.NewMockRepository(ctrl)
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(skerrors.AlreadyExists("duplicate"))

	svc := encounter.NewService(&encounter.ServiceConfig{Repository: repo})

	_, err := svc.CreateEncounter(context.Background(), duelInput())
	assert.True(t, skerrors.IsAlreadyExists(err), "repository error code survives wrapping")
}

func TestGetEncounter_Validation(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.GetEncounter(context.Background(), " ")
	assert.True(t, skerrors.IsInvalidArgument(err))

	_, err = svc.GetEncounter(context.Background(), "missing")
	assert.True(t, skerrors.IsNotFound(err))
}

func TestStartEncounter_RollsInitiativeAndPersists(t *testing.T) {
	svc, repo := newTestService(t, []int{18, 5})

	enc, err := svc.CreateEncounter(context.Background(), duelInput())
	require.NoError(t, err)

	summary, err := svc.StartEncounter(context.Background(), enc.ID)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "fighter", summary[0].CombatantID)
	assert.Equal(t, 20, summary[0].Roll)

	stored, err := repo.Get(context.Background(), enc.ID)
	require.NoError(t, err)
	assert.Equal(t, combat.StatusActive, stored.Status)
	assert.Equal(t, 1, stored.Round)
}

func TestStartEncounter_RollerFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	roller := mockdice.NewMockRoller(ctrl)
	roller.EXPECT().Roll(1, 20, 2).Return(nil, skerrors.Internal("entropy source exhausted"))

	repo := encounters.NewInMemoryRepository()
	svc := encounter.NewService(&encounter.ServiceConfig{
		Repository: repo,
		Roller:     roller,
	})

	enc, err := svc.CreateEncounter(context.Background(), duelInput())
	require.NoError(t, err)

	_, err = svc.StartEncounter(context.Background(), enc.ID)
	require.Error(t, err)
	assert.True(t, skerrors.Is(err, skerrors.CodeInternal))

	stored, err := repo.Get(context.Background(), enc.ID)
	require.NoError(t, err)
	assert.Equal(t, combat.StatusNotStarted, stored.Status, "a failed start must not persist")
}

func TestSubmitAction_ResolvesAndPersists(t *testing.T) {
	svc, repo := newTestService(t, []int{18, 5, 15, 4})

	enc, err := svc.CreateEncounter(context.Background(), duelInput())
	require.NoError(t, err)
	_, err = svc.StartEncounter(context.Background(), enc.ID)
	require.NoError(t, err)

	result, err := svc.SubmitAction(context.Background(), enc.ID, combat.Action{
		Type:     combat.ActionAttack,
		ActorID:  "fighter",
		TargetID: "goblin",
	})
	require.NoError(t, err)
	assert.True(t, result.Hit)
	require.Len(t, result.Targets, 1)
	assert.Equal(t, 7, result.Targets[0].Damage, "1d8(4) + 3")

	stored, err := repo.Get(context.Background(), enc.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Combatants["goblin"].CurrentHP)
	assert.Equal(t, combat.StatusEnded, stored.Status, "last opponent down ends the fight")
}

func TestSubmitAction_DomainErrorDoesNotPersist(t *testing.T) {
	svc, repo := newTestService(t, []int{18, 5})

	enc, err := svc.CreateEncounter(context.Background(), duelInput())
	require.NoError(t, err)
	_, err = svc.StartEncounter(context.Background(), enc.ID)
	require.NoError(t, err)

	_, err = svc.SubmitAction(context.Background(), enc.ID, combat.Action{
		Type:     combat.ActionAttack,
		ActorID:  "goblin",
		TargetID: "fighter",
	})
	assert.True(t, skerrors.Is(err, skerrors.CodeNotYourTurn))

	stored, err := repo.Get(context.Background(), enc.ID)
	require.NoError(t, err)
	assert.Equal(t, "fighter", stored.TurnOrder[stored.Turn])
	assert.Equal(t, 12, stored.Combatants["fighter"].CurrentHP)
}

func TestRunTurn_UsesInjectedPolicy(t *testing.T) {
	roller := dice.NewMockRoller()
	roller.SetRolls([]int{18, 5, 15, 4})
	repo := encounters.NewInMemoryRepository()

	var sawActor string
	svc := encounter.NewService(&encounter.ServiceConfig{
		Repository: repo,
		Roller:     roller,
		Decide: func(actor *combat.Combatant, allies, enemies []*combat.Combatant, rng *rand.Rand) combat.Action {
			sawActor = actor.ID
			require.Len(t, enemies, 1)
			return combat.Action{Type: combat.ActionAttack, ActorID: actor.ID, TargetID: enemies[0].ID}
		},
	})

	enc, err := svc.CreateEncounter(context.Background(), duelInput())
	require.NoError(t, err)
	_, err = svc.StartEncounter(context.Background(), enc.ID)
	require.NoError(t, err)

	result, err := svc.RunTurn(context.Background(), enc.ID)
	require.NoError(t, err)
	assert.Equal(t, "fighter", sawActor)
	assert.Equal(t, combat.ActionAttack, result.Type)
	assert.True(t, result.Hit)
}

func TestRunTurn_DefaultPolicyFinishesFight(t *testing.T) {
	repo := encounters.NewInMemoryRepository()
	svc := encounter.NewService(&encounter.ServiceConfig{
		Repository: repo,
		Roller:     dice.NewSeededRoller(7),
		Rand:       rand.New(rand.NewSource(7)),
	})

	enc, err := svc.CreateEncounter(context.Background(), duelInput())
	require.NoError(t, err)
	_, err = svc.StartEncounter(context.Background(), enc.ID)
	require.NoError(t, err)

	var ended bool
	for i := 0; i < 400; i++ {
		result, err := svc.RunTurn(context.Background(), enc.ID)
		require.NoError(t, err)
		if result.EncounterEnded {
			ended = true
			break
		}
	}
	require.True(t, ended, "a seeded duel must resolve within the cap")
}

func TestEndEncounter_ForceEnds(t *testing.T) {
	svc, repo := newTestService(t, []int{18, 5})

	enc, err := svc.CreateEncounter(context.Background(), duelInput())
	require.NoError(t, err)
	_, err = svc.StartEncounter(context.Background(), enc.ID)
	require.NoError(t, err)

	summary, err := svc.EndEncounter(context.Background(), enc.ID)
	require.NoError(t, err)
	assert.False(t, summary.Draw)
	assert.Empty(t, summary.Winner, "a called-off fight has no winner")
	assert.ElementsMatch(t, []string{"fighter", "goblin"}, summary.Survivors)

	stored, err := repo.Get(context.Background(), enc.ID)
	require.NoError(t, err)
	assert.Equal(t, combat.StatusEnded, stored.Status)
}

func TestSnapshot_ReflectsCurrentState(t *testing.T) {
	svc, _ := newTestService(t, []int{18, 5})

	enc, err := svc.CreateEncounter(context.Background(), duelInput())
	require.NoError(t, err)
	_, err = svc.StartEncounter(context.Background(), enc.ID)
	require.NoError(t, err)

	snap, err := svc.Snapshot(context.Background(), enc.ID)
	require.NoError(t, err)
	assert.Equal(t, combat.StatusActive, snap.Status)
	assert.Equal(t, "fighter", snap.CurrentActorID)
	require.Len(t, snap.Combatants, 2)
	assert.True(t, snap.Combatants[0].IsCurrentTurn)
}
