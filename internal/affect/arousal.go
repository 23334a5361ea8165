package affect

// EstimateArousal maps an emotion label to an arousal bucket. Unrecognized
// labels land in medium, not an error: the classifier's label set can drift
// and a new label must not break the pipeline.
func EstimateArousal(label string) Arousal {
	switch label {
	case "anger", "fear":
		return ArousalHigh
	case "sadness", "guilt", "shame", "neutral":
		return ArousalLow
	default:
		return ArousalMedium
	}
}
