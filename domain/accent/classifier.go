package accent

import (
	"context"
	"math"
	"strings"
)

// Prediction is the label and confidence returned by an accent model
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"score"`
}

// Classifier is the accent model capability. Implementations wrap a
// pretrained model; the model itself is never reimplemented here.
type Classifier interface {
	Classify(ctx context.Context, audioPath string) (Prediction, error)
}

// Validate checks the label is present and the confidence lies in [0,1]
func (p Prediction) Validate() error {
	if strings.TrimSpace(p.Label) == "" {
		return ErrEmptyLabel
	}
	if math.IsNaN(p.Confidence) || p.Confidence < 0 || p.Confidence > 1 {
		return ErrConfidenceRange
	}
	return nil
}

// Percent returns the confidence as a percentage rounded to two decimals
func (p Prediction) Percent() float64 {
	return math.Round(p.Confidence*10000) / 100
}
