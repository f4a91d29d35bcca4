package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/kartuli/server/internal/config"
	"codeberg.org/kartuli/server/internal/quota"
)

type fakePlans struct {
	plan string
	err  error
}

func (f fakePlans) GetPlan(context.Context, string) (string, error) {
	return f.plan, f.err
}

func TestRenderUsage(t *testing.T) {
	at := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	actor := quota.User("u-1", quota.PlanFree)

	out := renderUsage(actor, quota.KeysAt(at), &quota.Decision{
		Allowed: true,
		Usage:   quota.Usage{Daily: 7000, Monthly: 12000, Images: 1},
		Limits:  quota.LimitsFor(actor),
	}, []quota.DailyUsage{{Date: "2025-03-14", Tokens: 7000}})

	assert.Contains(t, out, "user u-1 (FREE)")
	assert.Contains(t, out, "2025-03-14")
	assert.Contains(t, out, "2025-03")
	assert.Contains(t, out, "7000 / 7500")
	assert.Contains(t, out, "12000 / 60000")
	assert.Contains(t, out, "1 / 5")
	assert.Contains(t, out, "7000 tokens")
}

func TestMeterStyle(t *testing.T) {
	assert.Equal(t, successStyle.Render("x"), meterStyle(10, 100).Render("x"))
	assert.Equal(t, warningStyle.Render("x"), meterStyle(80, 100).Render("x"))
	assert.Equal(t, errorStyle.Render("x"), meterStyle(100, 100).Render("x"))
}

func TestResolveActor(t *testing.T) {
	ctx := context.Background()

	a, err := resolveActor(ctx, fakePlans{}, config.Flags{ActorType: "guest", ActorID: "g-1"})
	require.NoError(t, err)
	assert.Equal(t, quota.Guest("g-1"), a)

	a, err = resolveActor(ctx, fakePlans{plan: "PREMIUM"}, config.Flags{ActorType: "user", ActorID: "u-1"})
	require.NoError(t, err)
	assert.Equal(t, quota.PlanPremium, a.Plan)

	a, err = resolveActor(ctx, fakePlans{err: errors.New("db down")}, config.Flags{ActorType: "user", ActorID: "u-1", Plan: "free"})
	require.NoError(t, err)
	assert.Equal(t, quota.PlanFree, a.Plan)

	_, err = resolveActor(ctx, fakePlans{err: errors.New("db down")}, config.Flags{ActorType: "user", ActorID: "u-1"})
	assert.Error(t, err)

	_, err = resolveActor(ctx, fakePlans{}, config.Flags{ActorType: "robot", ActorID: "r"})
	assert.Error(t, err)
}
