package safety

// LabelFor maps an overall score on a 0-100 scale to the fixed four-tier
// label/color pair (spec §6 "Label thresholds").
func LabelFor(score100 float64) (label, color string) {
	switch {
	case score100 >= 75:
		return "Very Safe", "#2E7D32"
	case score100 >= 55:
		return "Safe", "#558B2F"
	case score100 >= 35:
		return "Moderate", "#F9A825"
	default:
		return "Use Caution", "#C62828"
	}
}

// SegmentColor maps a single edge's unit-interval safetyScore to the
// fixed five-tier segment palette (spec §6 "Per-segment color thresholds").
func SegmentColor(safetyScore float64) string {
	switch {
	case safetyScore >= 0.7:
		return "#4CAF50"
	case safetyScore >= 0.5:
		return "#8BC34A"
	case safetyScore >= 0.35:
		return "#FFC107"
	case safetyScore >= 0.2:
		return "#FF9800"
	default:
		return "#F44336"
	}
}
