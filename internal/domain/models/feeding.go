package models

import "time"

// FeedingRequest is the body accepted by the ration endpoint.
type FeedingRequest struct {
	Category string  `json:"category" binding:"required"`
	Weight   float64 `json:"weight" binding:"required,gt=0,lte=1000"`
	Stage    string  `json:"stage" binding:"required"`
	Count    int     `json:"count" binding:"required,min=1"`
	Herd     string  `json:"herd,omitempty"`
}

// FeedingResponse is the ration recommendation returned to callers.
type FeedingResponse struct {
	DailyRation  float64 `json:"dailyRation"`
	Protein      float64 `json:"protein"`
	Energy       float64 `json:"energy"`
	Lysine       float64 `json:"lysine"`
	Calcium      float64 `json:"calcium"`
	Phosphorus   float64 `json:"phosphorus"`
	TotalMonthly float64 `json:"totalMonthly"`
}

// RationCalculation is one archived calculation, stored in MongoDB.
type RationCalculation struct {
	ID        string          `bson:"_id" json:"id"`
	Herd      string          `bson:"herd" json:"herd"`
	Request   FeedingRequest  `bson:"request" json:"request"`
	Result    FeedingResponse `bson:"result" json:"result"`
	CreatedAt time.Time       `bson:"created_at" json:"createdAt"`
}

// CodeLabel pairs a category or stage code with its display name.
type CodeLabel struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// LabelCatalog lists every known category and stage for display.
type LabelCatalog struct {
	Categories []CodeLabel `json:"categories"`
	Stages     []CodeLabel `json:"stages"`
}
