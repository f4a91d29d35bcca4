package quota

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecisionMetrics(t *testing.T) {
	ctx := context.Background()
	gate := NewGate(NewMemoryStore())
	actor := Guest("metrics-guest")

	allowed := decisionsTotal.WithLabelValues(string(ActorGuest), resourceTokens, outcomeAllowed)
	denied := decisionsTotal.WithLabelValues(string(ActorGuest), resourceTokens, outcomeDenied)

	allowedBefore := testutil.ToFloat64(allowed)
	deniedBefore := testutil.ToFloat64(denied)

	_, err := gate.CanConsume(ctx, actor, 100)
	require.NoError(t, err)

	_, err = gate.CanConsume(ctx, actor, 100000)
	require.NoError(t, err)

	assert.Equal(t, allowedBefore+1, testutil.ToFloat64(allowed))
	assert.Equal(t, deniedBefore+1, testutil.ToFloat64(denied))
}

func TestStoreErrorMetrics(t *testing.T) {
	gate := NewGate(&failingStore{err: errors.New("down")})
	counter := storeErrorsTotal.WithLabelValues("add_tokens")
	before := testutil.ToFloat64(counter)

	assert.Error(t, gate.AddUsage(context.Background(), Guest("g"), 10))
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
