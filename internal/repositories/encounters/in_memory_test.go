package encounters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironvale/skirmish/internal/dice"
	"github.com/ironvale/skirmish/internal/domain/combat"
	skerrors "github.com/ironvale/skirmish/internal/errors"
	"github.com/ironvale/skirmish/internal/repositories/encounters"
	"github.com/ironvale/skirmish/internal/testutils"
)

func TestInMemory_CreateAndGet(t *testing.T) {
	repo := encounters.NewInMemoryRepository()
	ctx := context.Background()

	enc, err := testutils.CreateTestEncounter("enc-1", dice.NewMockRoller())
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, enc))

	got, err := repo.Get(ctx, "enc-1")
	require.NoError(t, err)
	assert.Equal(t, enc.ID, got.ID)
	assert.Equal(t, combat.StatusNotStarted, got.Status)
	assert.Equal(t, enc.Roster, got.Roster)
}

func TestInMemory_CreateValidation(t *testing.T) {
	repo := encounters.NewInMemoryRepository()
	ctx := context.Background()

	assert.True(t, skerrors.IsInvalidArgument(repo.Create(ctx, nil)))

	enc, err := testutils.CreateTestEncounter("enc-1", dice.NewMockRoller())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, enc))

	err = repo.Create(ctx, enc)
	assert.True(t, skerrors.IsAlreadyExists(err))
}

func TestInMemory_GetReturnsIsolatedCopy(t *testing.T) {
	repo := encounters.NewInMemoryRepository()
	ctx := context.Background()

	enc, err := testutils.CreateTestEncounter("enc-1", dice.NewMockRoller())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, enc))

	first, err := repo.Get(ctx, "enc-1")
	require.NoError(t, err)
	first.Name = "tampered"
	first.Combatants[first.Roster[0]].CurrentHP = 0

	second, err := repo.Get(ctx, "enc-1")
	require.NoError(t, err)
	assert.Equal(t, "test skirmish", second.Name)
	assert.Equal(t, 12, second.Combatants[second.Roster[0]].CurrentHP)
}

func TestInMemory_Update(t *testing.T) {
	repo := encounters.NewInMemoryRepository()
	ctx := context.Background()

	roller := dice.NewMockRoller()
	roller.SetRolls([]int{18, 5})
	enc, err := testutils.CreateTestEncounter("enc-1", roller)
	require.NoError(t, err)

	missing, err := testutils.CreateTestEncounter("enc-2", dice.NewMockRoller())
	require.NoError(t, err)
	assert.True(t, skerrors.IsNotFound(repo.Update(ctx, missing)))

	require.NoError(t, repo.Create(ctx, enc))
	_, err = enc.Start()
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, enc))

	got, err := repo.Get(ctx, "enc-1")
	require.NoError(t, err)
	assert.Equal(t, combat.StatusActive, got.Status)
	assert.Equal(t, 1, got.Round)
}

func TestInMemory_Delete(t *testing.T) {
	repo := encounters.NewInMemoryRepository()
	ctx := context.Background()

	assert.True(t, skerrors.IsNotFound(repo.Delete(ctx, "enc-1")))

	enc, err := testutils.CreateTestEncounter("enc-1", dice.NewMockRoller())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, enc))
	require.NoError(t, repo.Delete(ctx, "enc-1"))

	_, err = repo.Get(ctx, "enc-1")
	assert.True(t, skerrors.IsNotFound(err))
}

func TestInMemory_GetByStatus(t *testing.T) {
	repo := encounters.NewInMemoryRepository()
	ctx := context.Background()

	roller := dice.NewMockRoller()
	roller.SetRolls([]int{18, 5})

	pending, err := testutils.CreateTestEncounter("pending", dice.NewMockRoller())
	require.NoError(t, err)
	running, err := testutils.CreateTestEncounter("running", roller)
	require.NoError(t, err)
	_, err = running.Start()
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, pending))
	require.NoError(t, repo.Create(ctx, running))

	active, err := repo.GetByStatus(ctx, combat.StatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "running", active[0].ID)

	ended, err := repo.GetByStatus(ctx, combat.StatusEnded)
	require.NoError(t, err)
	assert.Empty(t, ended)
}

// A loaded encounter has no roller; attaching one must make it playable again.
func TestInMemory_LoadedEncounterResumesWithRoller(t *testing.T) {
	repo := encounters.NewInMemoryRepository()
	ctx := context.Background()

	roller := dice.NewMockRoller()
	roller.SetRolls([]int{18, 5})
	enc, err := testutils.CreateTestEncounter("enc-1", roller)
	require.NoError(t, err)
	_, err = enc.Start()
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, enc))

	loaded, err := repo.Get(ctx, "enc-1")
	require.NoError(t, err)

	resumed := dice.NewMockRoller()
	resumed.SetRolls([]int{15, 4})
	loaded.AttachRoller(resumed)

	result, err := loaded.ProcessAction(combat.Action{
		Type:     combat.ActionAttack,
		ActorID:  loaded.CurrentActorID(),
		TargetID: loaded.Roster[1],
	})
	require.NoError(t, err)
	assert.True(t, result.Hit)
}
