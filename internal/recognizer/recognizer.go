// Package recognizer wires the per-frame pipeline: ingest adapter, feature
// extractor and classifier, with latency accounting around the whole path
// and optional routing of extracted features into a recording session.
package recognizer

import (
	"time"

	"github.com/ayusman/mudra/internal/classifier"
	"github.com/ayusman/mudra/internal/feature"
	"github.com/ayusman/mudra/internal/landmark"
	"github.com/ayusman/mudra/internal/perf"
	"github.com/ayusman/mudra/internal/training"
)

// Config holds the recognizer's collaborators. Classifier is required;
// Monitor defaults to a fresh monitor; Recorder may be nil when recording is
// never used.
type Config struct {
	Classifier *classifier.Classifier
	Recorder   *training.Recorder
	Monitor    *perf.Monitor

	// LowConfidence flags frames whose detection confidence fell below it.
	// Flagged frames are still classified; downstream consumers decide how
	// to weight them.
	LowConfidence float64
}

// Frame is the result of processing one hand observation.
type Frame struct {
	Label      string
	Confidence float64
	Confident  bool
	LatencyMS  float64

	Handedness          landmark.Handedness
	DetectionConfidence float64
	LowConfidence       bool
}

// Recognizer runs the classification path once per incoming observation.
// Process is stateless apart from reading the atomically-swapped active
// model, so concurrent calls for independent hands are safe.
type Recognizer struct {
	cfg   Config
	nowFn func() time.Time
}

// New creates a Recognizer. Each hand in a frame is delivered as its own
// observation and processed independently.
func New(cfg Config) *Recognizer {
	if cfg.Monitor == nil {
		cfg.Monitor = perf.NewMonitor(perf.DefaultConfig())
	}
	if cfg.LowConfidence <= 0 {
		cfg.LowConfidence = landmark.DefaultLowConfidence
	}
	return &Recognizer{cfg: cfg, nowFn: time.Now}
}

// Process validates a raw observation, extracts its features and classifies
// them against the active model. The end-to-end latency of successful calls
// is recorded in the monitor; structural rejections and the cold-start state
// surface as errors and are not counted against the latency target.
func (r *Recognizer) Process(raw landmark.RawObservation) (Frame, error) {
	start := r.nowFn()

	obs, err := landmark.Normalize(raw)
	if err != nil {
		return Frame{}, err
	}

	res, err := r.cfg.Classifier.Classify(feature.Extract(obs))
	if err != nil {
		return Frame{}, err
	}

	latency := float64(time.Since(start).Nanoseconds()) / 1e6
	r.cfg.Monitor.Record(latency)

	return Frame{
		Label:               res.Label,
		Confidence:          res.Confidence,
		Confident:           res.Confident,
		LatencyMS:           latency,
		Handedness:          obs.Handedness,
		DetectionConfidence: obs.Score,
		LowConfidence:       obs.LowConfidence(r.cfg.LowConfidence),
	}, nil
}

// Capture routes an observation's features into an active recording session
// instead of classifying it. The observation still goes through the same
// ingest validation as the live path.
func (r *Recognizer) Capture(sessionID string, raw landmark.RawObservation) error {
	if r.cfg.Recorder == nil {
		return training.ErrSessionNotFound
	}

	obs, err := landmark.Normalize(raw)
	if err != nil {
		return err
	}

	return r.cfg.Recorder.RecordSample(sessionID, feature.Extract(obs), obs.Score)
}

// Stats exposes the monitor's rolling latency statistics.
func (r *Recognizer) Stats() perf.Stats {
	return r.cfg.Monitor.Stats()
}

// Monitor returns the underlying performance monitor.
func (r *Recognizer) Monitor() *perf.Monitor {
	return r.cfg.Monitor
}
