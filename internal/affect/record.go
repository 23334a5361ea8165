package affect

// Arousal is the coarse intensity bucket derived from the emotion label.
type Arousal string

const (
	ArousalHigh   Arousal = "high"
	ArousalMedium Arousal = "medium"
	ArousalLow    Arousal = "low"
)

// Disclosure is the depth bucket for how much the user has revealed.
// Unknown is the fallback when the extractor could not produce a usable value.
type Disclosure string

const (
	DisclosureSurface Disclosure = "surface"
	DisclosureMid     Disclosure = "mid"
	DisclosureDeep    Disclosure = "deep"
	DisclosureUnknown Disclosure = "unknown"
)

// Record is the Stage-1 analysis of a single utterance. Every field is
// always populated; extraction failure substitutes the documented defaults
// instead of leaving fields empty. Stored as JSON alongside the user message.
type Record struct {
	EmotionLabel      string     `json:"emotion_label"`
	EmotionConfidence float64    `json:"emotion_confidence"`
	ArousalLevel      Arousal    `json:"arousal_level"`
	DisclosureLevel   Disclosure `json:"disclosure_level"`
	DistressScore     float64    `json:"distress_score"`
	HelpIntent        bool       `json:"help_intent"`
}
