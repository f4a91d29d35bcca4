package users

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/kartuli/server/internal/database"
)

func testRepository(t *testing.T) *Repository {
	t.Helper()

	url := os.Getenv("DATABASE_TEST_URL")
	if url == "" {
		t.Skip("DATABASE_TEST_URL not set")
	}

	require.NoError(t, database.Migrate(url))

	pool, err := database.NewPool(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewRepository(pool)
}

func uniqueEmail() string {
	return "user-" + uuid.NewString() + "@Example.GE"
}

func TestCreateWithPassword_Authenticate(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	email := uniqueEmail()

	user, err := repo.CreateWithPassword(ctx, email, "Nino", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, NormalizeEmail(email), user.Email)
	assert.Equal(t, PlanFree, user.Plan)

	_, err = repo.CreateWithPassword(ctx, email, "Nino", "supersecret")
	assert.ErrorIs(t, err, ErrEmailTaken)

	authed, err := repo.Authenticate(ctx, email, "supersecret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	_, err = repo.Authenticate(ctx, email, "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = repo.Authenticate(ctx, uniqueEmail(), "supersecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdatePlan_GetPlan(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	user, err := repo.FindOrCreateByProvider(ctx, "google", uuid.NewString(), uniqueEmail(), "Giorgi", "")
	require.NoError(t, err)

	updated, err := repo.UpdatePlan(ctx, user.ID, PlanPremium)
	require.NoError(t, err)
	assert.Equal(t, PlanPremium, updated.Plan)
	assert.NotNil(t, updated.PlanUpdatedAt)

	plan, err := repo.GetPlan(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, PlanPremium, plan)

	_, err = repo.UpdatePlan(ctx, user.ID, "GOLD")
	assert.Error(t, err)

	_, err = repo.GetPlan(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindOrCreateByProvider_MatchesEmail(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()
	email := uniqueEmail()

	first, err := repo.FindOrCreateByProvider(ctx, "google", "g-1", email, "Tamar", "a.png")
	require.NoError(t, err)

	second, err := repo.FindOrCreateByProvider(ctx, "github", "gh-1", email, "Other", "b.png")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Tamar", second.Name)
	assert.Equal(t, "b.png", second.AvatarURL)
}
