package actor

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"codeberg.org/kartuli/server/internal/auth"
	"codeberg.org/kartuli/server/internal/errors"
	"codeberg.org/kartuli/server/internal/quota"
	"codeberg.org/kartuli/server/kartuli/users"
)

// looks up a user's current plan
type PlanReader interface {
	GetPlan(ctx context.Context, userID string) (string, error)
}

// reads or issues the guest cookie
type GuestResolver interface {
	Resolve(c *gin.Context) (string, error)
}

// turns a request into the actor its usage is metered against
type Resolver struct {
	plans  PlanReader
	guests GuestResolver
}

func NewResolver(plans PlanReader, guests GuestResolver) *Resolver {
	return &Resolver{plans: plans, guests: guests}
}

// authenticated requests become users with a plan read fresh from the database;
// everyone else is a guest identified by cookie
func (r *Resolver) Resolve(c *gin.Context) (quota.Actor, error) {
	if userID, ok := auth.GetUserID(c); ok {
		plan, err := r.plans.GetPlan(c.Request.Context(), userID)
		if err != nil {
			return quota.Actor{}, fmt.Errorf("failed to resolve plan: %w", err)
		}

		return quota.User(userID, quota.ParsePlan(plan)), nil
	}

	guestID, err := r.guests.Resolve(c)
	if err != nil {
		return quota.Actor{}, err
	}

	return quota.Guest(guestID), nil
}

// resolves the actor and writes an error response on failure
func (r *Resolver) MustResolve(c *gin.Context) (quota.Actor, bool) {
	a, err := r.Resolve(c)
	if err == nil {
		return a, true
	}

	if stderrors.Is(err, users.ErrNotFound) {
		errors.Unauthorized(c, "account no longer exists")
		return quota.Actor{}, false
	}

	errors.InternalError(c, "failed to identify requester", err)
	return quota.Actor{}, false
}
