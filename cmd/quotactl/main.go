package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"codeberg.org/kartuli/server/internal/config"
	"codeberg.org/kartuli/server/internal/database"
	"codeberg.org/kartuli/server/internal/logger"
	"codeberg.org/kartuli/server/internal/quota"
	"codeberg.org/kartuli/server/kartuli/users"
)

const historyDays = 7

type planReader interface {
	GetPlan(ctx context.Context, userID string) (string, error)
}

const usageText = `quotactl - inspect usage quotas

usage:
  quotactl migrate                       apply database migrations
  quotactl usage -id <id> [-type user|guest] [-plan FREE|PREMIUM] [-at RFC3339]
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	cfg, err := config.LoadStorageConfig()
	if err != nil {
		logger.FatalErr(err, "failed to load configuration")
	}

	logger.Setup(cfg.Environment)

	switch os.Args[1] {
	case "migrate":
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			logger.FatalErr(err, "migration failed")
		}

		fmt.Println(successStyle.Render("migrations applied"))

	case "usage":
		flags, err := config.ParseUsageFlags(os.Args[2:])
		if err != nil {
			os.Exit(2)
		}

		out, err := showUsage(context.Background(), cfg, flags)
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
			os.Exit(1)
		}

		fmt.Println(out)

	default:
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}
}

// resolves the actor from flags, reads its counters and renders them
func showUsage(ctx context.Context, cfg *config.Config, flags config.Flags) (string, error) {
	at := time.Now()

	if flags.At != "" {
		parsed, err := time.Parse(time.RFC3339, flags.At)
		if err != nil {
			return "", fmt.Errorf("invalid -at value: %w", err)
		}

		at = parsed
	}

	if flags.ActorID == "" {
		return "", fmt.Errorf("-id is required")
	}

	db, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return "", err
	}
	defer db.Close()

	actor, err := resolveActor(ctx, users.NewRepository(db), flags)
	if err != nil {
		return "", err
	}

	var store quota.Store

	switch cfg.UsageStore {
	case config.UsageStoreRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return "", fmt.Errorf("failed to parse redis url: %w", err)
		}

		client := redis.NewClient(opts)
		defer client.Close() //nolint:errcheck // read-only client

		store = quota.NewRedisStore(client)
	case config.UsageStoreMemory:
		return "", fmt.Errorf("the memory usage store lives inside the server process and cannot be inspected")
	default:
		store = quota.NewPostgresStore(db)
	}

	gate := quota.NewGate(store, quota.WithClock(func() time.Time { return at }))

	decision, err := gate.CanConsume(ctx, actor, 0)
	if err != nil {
		return "", err
	}

	history, err := gate.History(ctx, actor, historyDays)
	if err != nil {
		return "", err
	}

	return renderUsage(actor, quota.KeysAt(at), decision, history), nil
}

// plans come from the users table unless overridden on the command line
func resolveActor(ctx context.Context, plans planReader, flags config.Flags) (quota.Actor, error) {
	switch quota.ActorType(flags.ActorType) {
	case quota.ActorGuest:
		return quota.Guest(flags.ActorID), nil
	case quota.ActorUser:
		if flags.Plan != "" {
			return quota.User(flags.ActorID, quota.ParsePlan(flags.Plan)), nil
		}

		plan, err := plans.GetPlan(ctx, flags.ActorID)
		if err != nil {
			return quota.Actor{}, fmt.Errorf("failed to look up plan: %w", err)
		}

		return quota.User(flags.ActorID, quota.ParsePlan(plan)), nil
	default:
		return quota.Actor{}, fmt.Errorf("unknown actor type %q", flags.ActorType)
	}
}
