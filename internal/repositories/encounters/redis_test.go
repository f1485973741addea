package encounters_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironvale/skirmish/internal/dice"
	"github.com/ironvale/skirmish/internal/domain/combat"
	skerrors "github.com/ironvale/skirmish/internal/errors"
	"github.com/ironvale/skirmish/internal/repositories/encounters"
	"github.com/ironvale/skirmish/internal/testutils"
)

const testTTL = 24 * time.Hour

func TestRedis_GetNotFound(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := encounters.NewRedis(client)

	mock.ExpectGet("encounter:missing").RedisNil()

	_, err := repo.Get(context.Background(), "missing")
	assert.True(t, skerrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_Get(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := encounters.NewRedis(client)

	enc, err := testutils.CreateTestEncounter("enc-1", dice.NewMockRoller())
	require.NoError(t, err)
	data, err := json.Marshal(enc)
	require.NoError(t, err)

	mock.ExpectGet("encounter:enc-1").SetVal(string(data))
	mock.ExpectExpire("encounter:enc-1", testTTL).SetVal(true)

	got, err := repo.Get(context.Background(), "enc-1")
	require.NoError(t, err)
	assert.Equal(t, "enc-1", got.ID)
	assert.Equal(t, enc.Roster, got.Roster)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_Create(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := encounters.NewRedis(client)

	enc, err := testutils.CreateTestEncounter("enc-1", dice.NewMockRoller())
	require.NoError(t, err)
	data, err := json.Marshal(enc)
	require.NoError(t, err)

	mock.ExpectSetNX("encounter:enc-1", data, testTTL).SetVal(true)
	mock.ExpectSAdd("encounters:status:not_started", "enc-1").SetVal(1)

	require.NoError(t, repo.Create(context.Background(), enc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_CreateDuplicate(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := encounters.NewRedis(client)

	enc, err := testutils.CreateTestEncounter("enc-1", dice.NewMockRoller())
	require.NoError(t, err)
	data, err := json.Marshal(enc)
	require.NoError(t, err)

	mock.ExpectSetNX("encounter:enc-1", data, testTTL).SetVal(false)

	err = repo.Create(context.Background(), enc)
	assert.True(t, skerrors.IsAlreadyExists(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_Delete(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := encounters.NewRedis(client)

	enc, err := testutils.CreateTestEncounter("enc-1", dice.NewMockRoller())
	require.NoError(t, err)
	data, err := json.Marshal(enc)
	require.NoError(t, err)

	mock.ExpectGet("encounter:enc-1").SetVal(string(data))
	mock.ExpectExpire("encounter:enc-1", testTTL).SetVal(true)
	mock.ExpectTxPipeline()
	mock.ExpectDel("encounter:enc-1").SetVal(1)
	mock.ExpectSRem("encounters:status:not_started", "enc-1").SetVal(1)
	mock.ExpectTxPipelineExec()

	require.NoError(t, repo.Delete(context.Background(), "enc-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Integration tests below need a running Redis; they skip when none is
// reachable on localhost:6379.

func TestRedisIntegration_CRUD(t *testing.T) {
	client := testutils.CreateTestRedisClientOrSkip(t)
	repo := encounters.NewRedis(client)
	ctx := context.Background()

	roller := dice.NewMockRoller()
	roller.SetRolls([]int{18, 5})
	enc, err := testutils.CreateTestEncounter("enc-1", roller)
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, enc))
	assert.True(t, skerrors.IsAlreadyExists(repo.Create(ctx, enc)))

	got, err := repo.Get(ctx, "enc-1")
	require.NoError(t, err)
	assert.Equal(t, combat.StatusNotStarted, got.Status)
	assert.Len(t, got.Combatants, 2)

	// starting the encounter must move it between status indexes
	_, err = enc.Start()
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, enc))

	pending, err := repo.GetByStatus(ctx, combat.StatusNotStarted)
	require.NoError(t, err)
	assert.Empty(t, pending)

	active, err := repo.GetByStatus(ctx, combat.StatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "enc-1", active[0].ID)

	require.NoError(t, repo.Delete(ctx, "enc-1"))
	_, err = repo.Get(ctx, "enc-1")
	assert.True(t, skerrors.IsNotFound(err))

	active, err = repo.GetByStatus(ctx, combat.StatusActive)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestRedisIntegration_RoundTripPreservesState(t *testing.T) {
	client := testutils.CreateTestRedisClientOrSkip(t)
	repo := encounters.NewRedis(client)
	ctx := context.Background()

	roller := dice.NewMockRoller()
	roller.SetRolls([]int{18, 5, 15, 4})
	enc, err := testutils.CreateTestEncounter("enc-1", roller)
	require.NoError(t, err)
	_, err = enc.Start()
	require.NoError(t, err)

	_, err = enc.ProcessAction(combat.Action{
		Type:     combat.ActionAttack,
		ActorID:  enc.CurrentActorID(),
		TargetID: enc.Roster[1],
	})
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, enc))

	loaded, err := repo.Get(ctx, "enc-1")
	require.NoError(t, err)
	assert.Equal(t, enc.Round, loaded.Round)
	assert.Equal(t, enc.Turn, loaded.Turn)
	assert.Equal(t, enc.TurnOrder, loaded.TurnOrder)
	assert.Equal(t, enc.CombatLog, loaded.CombatLog)
	assert.Equal(t,
		enc.Combatants[enc.Roster[1]].CurrentHP,
		loaded.Combatants[loaded.Roster[1]].CurrentHP)
}
