package affect

import (
	"context"
	"log"
)

// Analyzer composes the classifier, the arousal table, and the extractor into
// one Stage-1 record. Classifier failure propagates; extractor failure has
// already been absorbed into the fallback values by the Extractor contract.
type Analyzer struct {
	classifier Classifier
	extractor  Extractor
}

func NewAnalyzer(classifier Classifier, extractor Extractor) *Analyzer {
	return &Analyzer{classifier: classifier, extractor: extractor}
}

func (a *Analyzer) Analyze(ctx context.Context, text string) (Record, error) {
	label, confidence, err := a.classifier.Classify(ctx, text)
	if err != nil {
		return Record{}, err
	}

	ext := a.extractor.Extract(ctx, text)

	rec := Record{
		EmotionLabel:      label,
		EmotionConfidence: confidence,
		ArousalLevel:      EstimateArousal(label),
		DisclosureLevel:   ext.DisclosureLevel,
		DistressScore:     ext.DistressScore,
		HelpIntent:        ext.HelpIntent,
	}
	log.Printf("stage1 emotion=%s confidence=%.3f arousal=%s disclosure=%s distress=%.2f help=%t",
		rec.EmotionLabel, rec.EmotionConfidence, rec.ArousalLevel, rec.DisclosureLevel, rec.DistressScore, rec.HelpIntent)
	return rec, nil
}
