package quota

import (
	"errors"
	"strings"
	"time"
)

var (
	// returned when a negative amount is passed to a check or increment
	ErrNegativeAmount = errors.New("quota: amount must not be negative")

	// returned when the actor has no type or id
	ErrInvalidActor = errors.New("quota: actor requires a type and an id")
)

// kind of identity usage is metered against
type ActorType string

const (
	ActorGuest ActorType = "guest"
	ActorUser  ActorType = "user"
)

// subscription plan of an authenticated user
type Plan string

const (
	PlanFree    Plan = "FREE"
	PlanPremium Plan = "PREMIUM"
)

// calendar granularity of a usage bucket
type Period string

const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// identity usage is metered against. Plan is only meaningful for users and
// must be resolved by the caller on every request.
type Actor struct {
	Type ActorType `json:"type"`
	ID   string    `json:"id"`
	Plan Plan      `json:"plan,omitempty"`
}

// builds a guest actor from the cookie-derived id
func Guest(id string) Actor {
	return Actor{Type: ActorGuest, ID: id}
}

// builds an authenticated user actor with a freshly looked-up plan
func User(id string, plan Plan) Actor {
	return Actor{Type: ActorUser, ID: id, Plan: plan}
}

// stable identifier such as "guest:<id>", used for connection tracking and logs
func (a Actor) Key() string {
	return string(a.Type) + ":" + a.ID
}

func (a Actor) validate() error {
	if a.ID == "" || (a.Type != ActorGuest && a.Type != ActorUser) {
		return ErrInvalidActor
	}

	return nil
}

// normalizes a stored plan value; anything unrecognized is FREE
func ParsePlan(s string) Plan {
	if Plan(strings.ToUpper(strings.TrimSpace(s))) == PlanPremium {
		return PlanPremium
	}

	return PlanFree
}

// caps applied to an actor
type Limits struct {
	Daily   int `json:"daily"`
	Monthly int `json:"monthly"`
	Images  int `json:"images"`
}

// consumption in the current day and month buckets
type Usage struct {
	Daily   int `json:"daily"`
	Monthly int `json:"monthly"`
	Images  int `json:"images"`
}

// result of a quota check; the check never reserves capacity
type Decision struct {
	Allowed bool   `json:"allowed"`
	Usage   Usage  `json:"usage"`
	Limits  Limits `json:"limits"`
}

// capacity left in each bucket, floored at zero
func (d Decision) Remaining() Usage {
	return Usage{
		Daily:   max(d.Limits.Daily-d.Usage.Daily, 0),
		Monthly: max(d.Limits.Monthly-d.Usage.Monthly, 0),
		Images:  max(d.Limits.Images-d.Usage.Images, 0),
	}
}

// token total of one day bucket
type DailyUsage struct {
	Date      string    `json:"date"` // Format: "2006-01-02"
	Tokens    int       `json:"tokens"`
	UpdatedAt time.Time `json:"updated_at"`
}
