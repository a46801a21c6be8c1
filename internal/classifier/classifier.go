package classifier

import (
	"errors"
	"sync/atomic"

	"github.com/ayusman/mudra/internal/feature"
)

// ErrNoActiveModel is returned by Classify before any model has been
// activated. It is recoverable: activate any trained model and retry.
var ErrNoActiveModel = errors.New("no active model: train and activate a model first")

// Config holds classifier options.
type Config struct {
	// ConfidenceThreshold marks results below it as unconfident. Such results
	// are still returned; callers decide whether to act on them.
	ConfidenceThreshold float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{ConfidenceThreshold: 0.7}
}

// Result is a single classification outcome.
type Result struct {
	Label      string
	Confidence float64
	// Confident is set when Confidence reached the configured threshold.
	Confident bool
	// ModelID identifies the model that produced the result.
	ModelID string
}

// Classifier holds the currently-active trained model and classifies feature
// vectors against it. The active model is swapped atomically: concurrent
// readers observe either the previous or the new model, never a partial one,
// and classification never blocks on activation.
type Classifier struct {
	cfg    Config
	active atomic.Pointer[TrainedModel]
}

// New creates a Classifier in the uninitialized state.
func New(cfg Config) *Classifier {
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = DefaultConfig().ConfidenceThreshold
	}
	return &Classifier{cfg: cfg}
}

// Activate makes the given model the active one. The model is fully
// constructed before the pointer swap, so in-flight classifications keep
// reading the previous model until the single atomic store.
func (c *Classifier) Activate(m *TrainedModel) error {
	if m == nil {
		return errors.New("activate: nil model")
	}
	c.active.Store(m)
	return nil
}

// Active returns the currently-active model, or nil before first activation.
func (c *Classifier) Active() *TrainedModel {
	return c.active.Load()
}

// Classify maps a feature vector to the best gesture label and its
// confidence under the active model. It fails with ErrNoActiveModel in the
// cold-start state. Low-confidence results are returned, not suppressed.
func (c *Classifier) Classify(v feature.Vector) (Result, error) {
	m := c.active.Load()
	if m == nil {
		return Result{}, ErrNoActiveModel
	}

	label, confidence := m.Predict(v)
	return Result{
		Label:      label,
		Confidence: confidence,
		Confident:  confidence >= c.cfg.ConfidenceThreshold,
		ModelID:    m.ModelID(),
	}, nil
}
