package quota

import (
	"context"
	"fmt"
	"time"

	"codeberg.org/kartuli/server/internal/logger"
)

// answers "may this actor consume N more units?" and records consumption.
//
// Checks never reserve capacity: two concurrent requests from one actor can
// both pass CanConsume before either calls AddUsage, so limits are soft and
// may be exceeded by one request's worth per overlapping request.
type Gate struct {
	store    Store
	disabled bool
	now      func() time.Time
}

type Option func(*Gate)

// turns off all store reads and writes; every check is allowed with zero usage
func WithTrackingDisabled(disabled bool) Option {
	return func(g *Gate) {
		g.disabled = disabled
	}
}

// overrides the clock used to derive period keys
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		g.now = now
	}
}

// creates a gate over a usage store. A nil store disables tracking.
func NewGate(store Store, opts ...Option) *Gate {
	g := &Gate{
		store: store,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.store == nil {
		g.disabled = true
	}

	return g
}

// reports whether usage tracking is turned off
func (g *Gate) Disabled() bool {
	return g.disabled
}

// returns the caps for an actor
func (g *Gate) Limits(actor Actor) Limits {
	return LimitsFor(actor)
}

// returns the actor's usage in the current day and month buckets
func (g *Gate) Usage(ctx context.Context, actor Actor) (Usage, error) {
	if err := actor.validate(); err != nil {
		return Usage{}, err
	}

	if g.disabled {
		return Usage{}, nil
	}

	usage, err := g.store.GetUsage(ctx, actor, KeysAt(g.now()))
	if err != nil {
		storeErrorsTotal.WithLabelValues("get_usage").Inc()
		return Usage{}, err
	}

	return usage, nil
}

// checks whether the actor may consume tokens more tokens today and this month.
// A zero-token check is a pure usage query and is always allowed.
func (g *Gate) CanConsume(ctx context.Context, actor Actor, tokens int) (*Decision, error) {
	if tokens < 0 {
		return nil, ErrNegativeAmount
	}

	limits := LimitsFor(actor)

	if g.disabled {
		if err := actor.validate(); err != nil {
			return nil, err
		}

		decisionsTotal.WithLabelValues(string(actor.Type), resourceTokens, outcomeDisabled).Inc()
		return &Decision{Allowed: true, Limits: limits}, nil
	}

	usage, err := g.Usage(ctx, actor)
	if err != nil {
		return nil, err
	}

	allowed := tokens == 0 ||
		(usage.Daily+tokens <= limits.Daily && usage.Monthly+tokens <= limits.Monthly)

	observeDecision(actor, resourceTokens, allowed)

	return &Decision{
		Allowed: allowed,
		Usage:   usage,
		Limits:  limits,
	}, nil
}

// records consumed tokens in the current day and month buckets.
// Store failures are returned to the caller.
func (g *Gate) AddUsage(ctx context.Context, actor Actor, tokens int) error {
	if tokens < 0 {
		return ErrNegativeAmount
	}

	if err := actor.validate(); err != nil {
		return err
	}

	if g.disabled || tokens == 0 {
		return nil
	}

	if err := g.store.AddTokens(ctx, actor, KeysAt(g.now()), tokens); err != nil {
		storeErrorsTotal.WithLabelValues("add_tokens").Inc()
		return fmt.Errorf("failed to record token usage: %w", err)
	}

	consumedTotal.WithLabelValues(string(actor.Type), resourceTokens).Add(float64(tokens))

	return nil
}

// checks whether the actor has image generations left this month
func (g *Gate) CanGenerateImage(ctx context.Context, actor Actor) (*Decision, error) {
	limits := LimitsFor(actor)

	if g.disabled {
		if err := actor.validate(); err != nil {
			return nil, err
		}

		decisionsTotal.WithLabelValues(string(actor.Type), resourceImages, outcomeDisabled).Inc()
		return &Decision{Allowed: true, Limits: limits}, nil
	}

	usage, err := g.Usage(ctx, actor)
	if err != nil {
		return nil, err
	}

	allowed := usage.Images < limits.Images
	observeDecision(actor, resourceImages, allowed)

	return &Decision{
		Allowed: allowed,
		Usage:   usage,
		Limits:  limits,
	}, nil
}

// records generated images in the current month bucket. Store failures are
// logged and dropped, so image usage under-counts while the store is down.
func (g *Gate) AddImageUsage(ctx context.Context, actor Actor, images int) {
	if g.disabled || images <= 0 {
		return
	}

	if err := actor.validate(); err != nil {
		logger.WarnErr(err, "skipping image usage for invalid actor")
		return
	}

	if err := g.store.AddImages(ctx, actor, KeysAt(g.now()), images); err != nil {
		storeErrorsTotal.WithLabelValues("add_images").Inc()
		logger.WarnErr(err, "failed to record image usage",
			"actor_type", actor.Type,
			"actor_id", actor.ID,
			"images", images,
		)
		return
	}

	consumedTotal.WithLabelValues(string(actor.Type), resourceImages).Add(float64(images))
}

// returns up to limit past day buckets when the store keeps them
func (g *Gate) History(ctx context.Context, actor Actor, limit int) ([]DailyUsage, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}

	reader, ok := g.store.(HistoryReader)
	if g.disabled || !ok {
		return []DailyUsage{}, nil
	}

	return reader.DailyHistory(ctx, actor, limit)
}
