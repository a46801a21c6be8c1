package classifier

import (
	"encoding/json"
	"time"

	"github.com/ayusman/mudra/internal/feature"
)

// Sample is a labeled feature vector used for fitting and evaluation.
type Sample struct {
	Features   feature.Vector
	Label      string
	UserID     string
	Confidence float64
	RecordedAt time.Time
}

// Dataset groups samples by gesture label.
type Dataset map[string][]Sample

// Labels returns the dataset's label names in unspecified order.
func (d Dataset) Labels() []string {
	out := make([]string, 0, len(d))
	for label := range d {
		out = append(out, label)
	}
	return out
}

// Algorithm is the learning strategy behind the classifier. The concrete
// statistical model can vary without touching the pipeline: anything that can
// fit a dataset and produce a Decision qualifies.
type Algorithm interface {
	// Name identifies the algorithm in serialized model artifacts.
	Name() string

	// Fit builds a decision function from the training dataset.
	Fit(train Dataset) (Decision, error)
}

// Decision is a fitted, immutable decision function.
type Decision interface {
	// Predict returns the highest-scoring label and its confidence for the
	// given feature vector. Low confidence is returned, never suppressed.
	Predict(v feature.Vector) (string, float64)

	// Parameters serializes the fitted parameters for the model artifact.
	Parameters() (json.RawMessage, error)
}
