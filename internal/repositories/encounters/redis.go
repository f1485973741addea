package encounters

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ironvale/skirmish/internal/domain/combat"
	skerrors "github.com/ironvale/skirmish/internal/errors"
)

const (
	// Key patterns
	encounterKeyPrefix = "encounter:"
	statusIndexKey     = "encounters:status:%s"

	// TTL for finished and abandoned encounters (24 hours)
	encounterTTL = 24 * time.Hour
)

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client       redis.UniversalClient
	EncounterTTL time.Duration
}

// redisRepository implements Repository using Redis
type redisRepository struct {
	client       redis.UniversalClient
	encounterTTL time.Duration
}

// NewRedisRepository creates a new Redis-backed encounter repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg.Client == nil {
		panic("redis client is required")
	}

	ttl := cfg.EncounterTTL
	if ttl == 0 {
		ttl = encounterTTL
	}

	return &redisRepository{
		client:       cfg.Client,
		encounterTTL: ttl,
	}
}

// NewRedis creates a new Redis-backed encounter repository with default configuration
func NewRedis(client redis.UniversalClient) Repository {
	return NewRedisRepository(&RedisRepoConfig{
		Client:       client,
		EncounterTTL: encounterTTL,
	})
}

func (r *redisRepository) Create(ctx context.Context, enc *combat.Encounter) error {
	if enc == nil {
		return skerrors.InvalidArgument("encounter cannot be nil")
	}
	if enc.ID == "" {
		return skerrors.InvalidArgument("encounter ID cannot be empty")
	}

	data, err := json.Marshal(enc)
	if err != nil {
		return skerrors.Wrap(err, "failed to serialize encounter")
	}

	key := encounterKeyPrefix + enc.ID

	// SetNX so a duplicate ID never silently overwrites
	ok, err := r.client.SetNX(ctx, key, data, r.encounterTTL).Result()
	if err != nil {
		return skerrors.Wrap(err, "failed to create encounter")
	}
	if !ok {
		return skerrors.AlreadyExistsf("encounter with ID %s already exists", enc.ID)
	}

	if err := r.client.SAdd(ctx, statusKey(enc.Status), enc.ID).Err(); err != nil {
		return skerrors.Wrap(err, "failed to index encounter")
	}
	return nil
}

func (r *redisRepository) Get(ctx context.Context, id string) (*combat.Encounter, error) {
	key := encounterKeyPrefix + id

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, skerrors.NotFoundf("encounter not found: %s", id)
		}
		return nil, skerrors.Wrap(err, "failed to get encounter")
	}

	var enc combat.Encounter
	if err := json.Unmarshal(data, &enc); err != nil {
		return nil, skerrors.Wrap(err, "failed to deserialize encounter")
	}

	// Refresh TTL
	r.client.Expire(ctx, key, r.encounterTTL)

	return &enc, nil
}

func (r *redisRepository) Update(ctx context.Context, enc *combat.Encounter) error {
	if enc == nil {
		return skerrors.InvalidArgument("encounter cannot be nil")
	}
	if enc.ID == "" {
		return skerrors.InvalidArgument("encounter ID cannot be empty")
	}

	// Read the stored copy first so the status index can be moved
	existing, err := r.Get(ctx, enc.ID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(enc)
	if err != nil {
		return skerrors.Wrap(err, "failed to serialize encounter")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, encounterKeyPrefix+enc.ID, data, r.encounterTTL)
	if existing.Status != enc.Status {
		pipe.SRem(ctx, statusKey(existing.Status), enc.ID)
		pipe.SAdd(ctx, statusKey(enc.Status), enc.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return skerrors.Wrap(err, "failed to update encounter")
	}
	return nil
}

func (r *redisRepository) Delete(ctx context.Context, id string) error {
	enc, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, encounterKeyPrefix+id)
	pipe.SRem(ctx, statusKey(enc.Status), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return skerrors.Wrap(err, "failed to delete encounter")
	}
	return nil
}

func (r *redisRepository) GetByStatus(ctx context.Context, status combat.Status) ([]*combat.Encounter, error) {
	ids, err := r.client.SMembers(ctx, statusKey(status)).Result()
	if err != nil {
		return nil, skerrors.Wrap(err, "failed to list encounters by status")
	}
	if len(ids) == 0 {
		return []*combat.Encounter{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = encounterKeyPrefix + id
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, skerrors.Wrap(err, "failed to get encounters")
	}

	out := make([]*combat.Encounter, 0, len(ids))
	for i, val := range values {
		if val == nil {
			// expired entry still in the index; reads clean it up lazily
			r.client.SRem(ctx, statusKey(status), ids[i])
			continue
		}
		data, ok := val.(string)
		if !ok {
			continue
		}
		var enc combat.Encounter
		if err := json.Unmarshal([]byte(data), &enc); err != nil {
			continue
		}
		out = append(out, &enc)
	}
	return out, nil
}

func statusKey(status combat.Status) string {
	return fmt.Sprintf(statusIndexKey, status)
}
