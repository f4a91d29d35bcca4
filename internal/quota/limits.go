package quota

// caps per actor classification
var (
	guestLimits = Limits{
		Daily:   1500,
		Monthly: 10000,
		Images:  2,
	}

	planLimits = map[Plan]Limits{
		PlanFree: {
			Daily:   7500,
			Monthly: 60000,
			Images:  5,
		},
		PlanPremium: {
			Daily:   25000,
			Monthly: 300000,
			Images:  60,
		},
	}
)

// returns the caps for an actor. Users with an unknown plan get FREE limits.
func LimitsFor(actor Actor) Limits {
	if actor.Type != ActorUser {
		return guestLimits
	}

	limits, ok := planLimits[actor.Plan]
	if !ok {
		return planLimits[PlanFree]
	}

	return limits
}
