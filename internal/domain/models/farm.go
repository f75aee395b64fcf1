package models

import "time"

// DefaultHerd labels ledger rows that were recorded without a herd name.
const DefaultHerd = "default"

// FeedRecord captures feed actually distributed to a herd on a given day.
type FeedRecord struct {
	Date   time.Time
	Herd   string
	FeedKg float64
}

// RationPlan is the ledger view of a ration calculation: the latest plan per
// herd is what weekly consumption gets compared against.
type RationPlan struct {
	Date         time.Time
	Herd         string
	Category     string
	Stage        string
	Weight       float64
	Count        int
	DailyRation  float64
	TotalMonthly float64
}
