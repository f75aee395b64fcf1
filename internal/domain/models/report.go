package models

import "time"

// FeedReport compares planned and actual feed per herd over a period.
type FeedReport struct {
	PeriodStart time.Time         `bson:"period_start" json:"periodStart"`
	PeriodEnd   time.Time         `bson:"period_end" json:"periodEnd"`
	Days        int               `bson:"days" json:"days"`
	Herds       []HerdFeedSummary `bson:"herds" json:"herds"`
	CreatedAt   time.Time         `bson:"created_at" json:"createdAt"`
}

// HerdFeedSummary is the planned-vs-actual line of a single herd.
type HerdFeedSummary struct {
	Herd        string   `bson:"herd" json:"herd"`
	Category    string   `bson:"category" json:"category"`
	Count       int      `bson:"count" json:"count"`
	PlannedKg   float64  `bson:"planned_kg" json:"plannedKg"`
	ActualKg    float64  `bson:"actual_kg" json:"actualKg"`
	VariancePct *float64 `bson:"variance_pct,omitempty" json:"variancePct,omitempty"`
}
