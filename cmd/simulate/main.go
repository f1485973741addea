package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ironvale/skirmish/internal/config"
	"github.com/ironvale/skirmish/internal/dice"
	"github.com/ironvale/skirmish/internal/domain/combat"
	"github.com/ironvale/skirmish/internal/repositories/encounters"
	"github.com/ironvale/skirmish/internal/services/encounter"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("starting simulation",
		zap.Int64("seed", seed),
		zap.Int("encounters", cfg.Sim.Encounters),
		zap.Int("max_rounds", cfg.Sim.MaxRounds),
		zap.String("repository", cfg.Sim.Repository))

	var repo encounters.Repository
	var redisClient *redis.Client
	switch cfg.Sim.Repository {
	case config.RepositoryRedis:
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Fatal("failed to connect to Redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		repo = encounters.NewRedis(redisClient)
	default:
		repo = encounters.NewInMemoryRepository()
	}

	svc := encounter.NewService(&encounter.ServiceConfig{
		Repository: repo,
		Roller:     dice.NewSeededRoller(seed),
		Rand:       rand.New(rand.NewSource(seed)),
		Logger:     logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Sim.Encounters; i++ {
		i := i
		group.Go(func() error {
			return runEncounter(ctx, svc, logger, fmt.Sprintf("skirmish-%d", i+1), cfg.Sim.MaxRounds)
		})
	}

	if err := group.Wait(); err != nil {
		logger.Error("simulation failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("simulation complete")
}

// runEncounter drives one auto-battle from creation to its summary
func runEncounter(ctx context.Context, svc encounter.Service, logger *zap.Logger, name string, maxRounds int) error {
	enc, err := svc.CreateEncounter(ctx, &encounter.CreateEncounterInput{
		Name:       name,
		Combatants: defaultRoster(name),
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}

	initiative, err := svc.StartEncounter(ctx, enc.ID)
	if err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	for _, roll := range initiative {
		logger.Info("initiative",
			zap.String("encounter", name),
			zap.String("combatant", roll.Name),
			zap.Int("roll", roll.Roll))
	}

	summary, err := encounter.RunToCompletion(ctx, svc, enc.ID, maxRounds)
	if err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}

	snap, err := svc.Snapshot(ctx, enc.ID)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", name, err)
	}
	for _, line := range snap.CombatLog {
		logger.Info("combat log", zap.String("encounter", name), zap.String("entry", line))
	}
	logger.Info("encounter finished",
		zap.String("encounter", name),
		zap.Int("rounds", summary.Rounds),
		zap.String("winner", string(summary.Winner)),
		zap.Bool("draw", summary.Draw),
		zap.Strings("survivors", summary.Survivors),
		zap.Strings("defeated", summary.Defeated))
	return nil
}

// defaultRoster is a small mixed party against a goblin warband
func defaultRoster(prefix string) []*combat.Combatant {
	return []*combat.Combatant{
		{
			ID:              prefix + "-fighter",
			Name:            "Brakk",
			Faction:         combat.FactionPlayers,
			AC:              16,
			CurrentHP:       12,
			MaxHP:           12,
			AttackBonus:     5,
			DamageDice:      "1d8",
			DamageBonus:     3,
			InitiativeBonus: 2,
			Abilities:       combat.ModifiersFromScores(16, 14, 14, 10, 12, 10),
		},
		{
			ID:              prefix + "-mage",
			Name:            "Yselle",
			Faction:         combat.FactionPlayers,
			AC:              12,
			CurrentHP:       8,
			MaxHP:           8,
			AttackBonus:     2,
			DamageDice:      "1d4",
			InitiativeBonus: 1,
			Abilities:       combat.ModifiersFromScores(8, 12, 10, 16, 12, 10),
			Spell: &combat.SpellProfile{
				Name:       "scorching ray",
				DamageDice: "2d6",
				SaveType:   combat.AbilityDexterity,
				SaveDC:     13,
				HalfOnSave: true,
			},
		},
		{
			ID:              prefix + "-goblin-1",
			Name:            "Snagtooth",
			Faction:         combat.FactionOpponents,
			AC:              13,
			CurrentHP:       7,
			MaxHP:           7,
			AttackBonus:     4,
			DamageDice:      "1d6",
			DamageBonus:     2,
			InitiativeBonus: 2,
			Abilities:       combat.ModifiersFromScores(8, 14, 10, 10, 8, 8),
		},
		{
			ID:              prefix + "-goblin-2",
			Name:            "Mudgut",
			Faction:         combat.FactionOpponents,
			AC:              13,
			CurrentHP:       7,
			MaxHP:           7,
			AttackBonus:     4,
			DamageDice:      "1d6",
			DamageBonus:     2,
			InitiativeBonus: 2,
			Abilities:       combat.ModifiersFromScores(8, 14, 10, 10, 8, 8),
		},
	}
}
