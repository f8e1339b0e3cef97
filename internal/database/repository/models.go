package repository

import "time"

// UsageRecord is one completion call as seen by the usage ledger.
type UsageRecord struct {
	ID             string
	ConversationID string
	Profile        string
	Outcome        string
	StatusCode     int
	Tag            string
	Latency        time.Duration
	CreatedAt      time.Time
}

// UsageSummary aggregates usage per profile and outcome.
type UsageSummary struct {
	Profile    string
	Outcome    string
	Calls      int
	AvgLatency time.Duration
}
