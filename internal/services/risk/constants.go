package risk

import "time"

// Bounds for on-demand mule queries.
const (
	MinStatsWindow     = time.Hour
	MaxStatsWindow     = 168 * time.Hour
	MaxTopSuspects     = 50
	DefaultTopSuspects = 10
)

// Window store set names.
const (
	velocityPayeesSet  = "vel:%s:payees"
	velocityAmountsSet = "vel:%s:amounts"
	muleInSourcesSet   = "mule:in_sources:%s"
	muleInEventsSet    = "mule:in_events:%s"
	muleOutDestsSet    = "mule:out_dests:%s"
	muleOutEventsSet   = "mule:out_events:%s"
	muleKnownDestsSet  = "mule:known_destinations"
)

// Collaborator names used in logs and fallback metrics.
const (
	CollaboratorPayeeCheck = "payee_check"
	CollaboratorWatchlist  = "watchlist"
	CollaboratorModel      = "model"
	CollaboratorVelocity   = "velocity"
	CollaboratorMule       = "mule"
)

const timestampLayout = "2006-01-02T15:04:05"
