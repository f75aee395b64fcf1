package ration

import (
	"math"
	"strings"
)

// Category identifies the class of animal a ration is computed for.
type Category string

const (
	CategorySowGestating Category = "sow-gestating"
	CategorySowLactating Category = "sow-lactating"
	CategoryBoar         Category = "boar"
	CategoryPiglet       Category = "piglet"
	CategoryGrower       Category = "grower"
	CategoryFinisher     Category = "finisher"
)

// Stage is the coarse physiological phase used to scale the base ration.
type Stage string

const (
	StageEarly Stage = "early"
	StageMid   Stage = "mid"
	StageLate  Stage = "late"
)

const (
	daysPerMonth = 30
	calcium      = 0.8
	phosphorus   = 0.6
)

// Params holds the inputs of a single ration calculation.
type Params struct {
	Category Category
	Weight   float64 // live weight, kg
	Stage    Stage
	Count    int
}

// Result is the ration and nutrient recommendation for Params.
type Result struct {
	DailyRation  float64 // kg per animal per day
	Protein      float64 // crude protein, %
	Energy       float64 // metabolizable energy, kcal/kg
	Lysine       float64 // %
	Calcium      float64 // %
	Phosphorus   float64 // %
	TotalMonthly float64 // kg for the whole count over 30 days
}

type requirement struct {
	base    func(weight float64) float64
	protein float64
	energy  float64
	lysine  float64
}

var requirements = map[Category]requirement{
	CategorySowGestating: {
		base:    func(w float64) float64 { return 2.0 + (w-150)*0.01 },
		protein: 13.0, energy: 3100, lysine: 0.55,
	},
	CategorySowLactating: {
		base:    func(w float64) float64 { return 5.0 + (w-150)*0.02 },
		protein: 17.5, energy: 3300, lysine: 0.95,
	},
	CategoryBoar: {
		base:    func(w float64) float64 { return 2.5 + (w-180)*0.008 },
		protein: 14.0, energy: 3100, lysine: 0.60,
	},
	CategoryPiglet: {
		base:    func(w float64) float64 { return w * 0.05 },
		protein: 20.0, energy: 3400, lysine: 1.35,
	},
	CategoryGrower: {
		base:    func(w float64) float64 { return w * 0.035 },
		protein: 16.0, energy: 3300, lysine: 0.95,
	},
	CategoryFinisher: {
		base:    func(w float64) float64 { return w * 0.03 },
		protein: 14.0, energy: 3300, lysine: 0.75,
	},
}

var multipliers = map[Stage]float64{
	StageEarly: 0.85,
	StageMid:   1.0,
	StageLate:  1.15,
}

// Calculate returns the ration recommendation for p. It never fails:
// an unknown category uses the grower table, an unknown stage applies no
// adjustment and a count below one is treated as a single animal.
// Validating weight is left to the caller.
func Calculate(p Params) Result {
	req, ok := requirements[normalizeCategory(p.Category)]
	if !ok {
		req = requirements[CategoryGrower]
	}

	multiplier, ok := multipliers[normalizeStage(p.Stage)]
	if !ok {
		multiplier = 1.0
	}

	count := p.Count
	if count < 1 {
		count = 1
	}

	daily := round(math.Max(0, req.base(p.Weight))*multiplier, 2)

	return Result{
		DailyRation:  daily,
		Protein:      req.protein,
		Energy:       req.energy,
		Lysine:       req.lysine,
		Calcium:      calcium,
		Phosphorus:   phosphorus,
		TotalMonthly: round(daily*daysPerMonth*float64(count), 1),
	}
}

// ParseCategory normalizes raw and reports whether it names a known category.
func ParseCategory(raw string) (Category, bool) {
	c := normalizeCategory(Category(raw))
	_, ok := requirements[c]
	return c, ok
}

// ParseStage normalizes raw and reports whether it names a known stage.
func ParseStage(raw string) (Stage, bool) {
	s := normalizeStage(Stage(raw))
	_, ok := multipliers[s]
	return s, ok
}

func normalizeCategory(c Category) Category {
	return Category(strings.ToLower(strings.TrimSpace(string(c))))
}

func normalizeStage(s Stage) Stage {
	return Stage(strings.ToLower(strings.TrimSpace(string(s))))
}

func round(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}
