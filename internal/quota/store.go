package quota

import "context"

// persistent per-actor counters keyed by (actor type, actor id, period, period key)
type Store interface {
	// reads the day and month token counters and the month image counter.
	// missing rows read as zero.
	GetUsage(ctx context.Context, actor Actor, keys PeriodKeys) (Usage, error)

	// increments the day and month token counters together, all or nothing
	AddTokens(ctx context.Context, actor Actor, keys PeriodKeys, tokens int) error

	// increments the month image counter
	AddImages(ctx context.Context, actor Actor, keys PeriodKeys, images int) error
}

// implemented by stores that can list past day buckets
type HistoryReader interface {
	DailyHistory(ctx context.Context, actor Actor, limit int) ([]DailyUsage, error)
}
