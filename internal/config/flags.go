package config

import (
	"flag"
)

// parses CLI flags for the quotactl usage subcommand
func ParseUsageFlags(args []string) (Flags, error) {
	fs := flag.NewFlagSet("usage", flag.ContinueOnError)
	actorType := fs.String("type", "user", "actor type: guest or user")
	actorID := fs.String("id", "", "guest or user id")
	plan := fs.String("plan", "", "override plan (FREE or PREMIUM); looked up when empty")
	at := fs.String("at", "", "RFC3339 timestamp selecting the period buckets (default now)")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}

	return Flags{
		ActorType: *actorType,
		ActorID:   *actorID,
		Plan:      *plan,
		At:        *at,
	}, nil
}
