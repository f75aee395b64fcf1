package ration

var categoryLabels = map[Category]string{
	CategorySowGestating: "Gestating sow",
	CategorySowLactating: "Lactating sow",
	CategoryBoar:         "Boar",
	CategoryPiglet:       "Piglet",
	CategoryGrower:       "Grower",
	CategoryFinisher:     "Finisher",
}

var stageLabels = map[Stage]string{
	StageEarly: "Early",
	StageMid:   "Mid",
	StageLate:  "Late",
}

// Categories lists the known categories in display order.
func Categories() []Category {
	return []Category{
		CategorySowGestating,
		CategorySowLactating,
		CategoryBoar,
		CategoryPiglet,
		CategoryGrower,
		CategoryFinisher,
	}
}

// Stages lists the known stages in display order.
func Stages() []Stage {
	return []Stage{StageEarly, StageMid, StageLate}
}

// CategoryLabel returns a display name for c, or the raw code when unknown.
func CategoryLabel(c Category) string {
	if label, ok := categoryLabels[normalizeCategory(c)]; ok {
		return label
	}
	return string(c)
}

// StageLabel returns a display name for s, or the raw code when unknown.
func StageLabel(s Stage) string {
	if label, ok := stageLabels[normalizeStage(s)]; ok {
		return label
	}
	return string(s)
}
