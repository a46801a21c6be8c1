package training

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/classifier"
	"github.com/ayusman/mudra/internal/feature"
	"github.com/ayusman/mudra/internal/store"
)

// Options control a training run.
type Options struct {
	// MinSamplesPerGesture is the per-label sample floor. Training is
	// all-or-nothing: one deficient label fails the whole run.
	MinSamplesPerGesture int

	// HoldoutFraction is the share of each label's samples withheld from
	// fitting and used to estimate accuracy.
	HoldoutFraction float64
}

// DefaultOptions returns the default training options.
func DefaultOptions() Options {
	return Options{
		MinSamplesPerGesture: 5,
		HoldoutFraction:      0.2,
	}
}

// InsufficientDataError reports every requested label that has not met the
// minimum-sample threshold. Nothing is trained when it is returned.
type InsufficientDataError struct {
	Required int
	Counts   map[string]int
}

func (e *InsufficientDataError) Error() string {
	labels := make([]string, 0, len(e.Counts))
	for label := range e.Counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		parts = append(parts, fmt.Sprintf("%s=%d", label, e.Counts[label]))
	}

	return fmt.Sprintf("insufficient training data: need %d samples per gesture, have %s",
		e.Required, strings.Join(parts, ", "))
}

// Labels returns the deficient label names, sorted.
func (e *InsufficientDataError) Labels() []string {
	labels := make([]string, 0, len(e.Counts))
	for label := range e.Counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Trainer fits new classifier versions from the durable datasets. It reads
// only from the store, never from in-flight classification state, so training
// may run concurrently with live classification.
type Trainer struct {
	st    *store.Store
	algo  classifier.Algorithm
	nowFn func() time.Time
}

// NewTrainer creates a Trainer using the given learning algorithm.
func NewTrainer(st *store.Store, algo classifier.Algorithm) *Trainer {
	return &Trainer{st: st, algo: algo, nowFn: time.Now}
}

// TrainAll trains over every label that has recorded samples.
func (t *Trainer) TrainAll(opts Options) (*classifier.TrainedModel, error) {
	labels, err := t.st.Samples().Labels()
	if err != nil {
		return nil, fmt.Errorf("list recorded labels: %w", err)
	}
	return t.Train(labels, opts)
}

// Train fits a new model over the requested custom labels plus the built-in
// taxonomy. It fails with InsufficientDataError naming every requested label
// below the minimum sample count; it never silently drops an under-sampled
// label. The returned model is persisted but NOT activated - activation is an
// explicit classifier step, so callers can inspect the holdout accuracy
// first. Training can take wall-clock time proportional to the dataset and
// must stay off the latency-sensitive classification path.
func (t *Trainer) Train(labels []string, opts Options) (*classifier.TrainedModel, error) {
	if opts.MinSamplesPerGesture <= 0 {
		opts.MinSamplesPerGesture = DefaultOptions().MinSamplesPerGesture
	}
	if opts.HoldoutFraction <= 0 || opts.HoldoutFraction >= 1 {
		opts.HoldoutFraction = DefaultOptions().HoldoutFraction
	}

	dataset, err := t.loadRequested(labels, opts.MinSamplesPerGesture)
	if err != nil {
		return nil, err
	}

	// Built-in gestures ship as a generated canonical dataset merged into
	// every run, so every model covers the full taxonomy.
	builtins, err := classifier.BuiltinDataset()
	if err != nil {
		return nil, fmt.Errorf("generate built-in dataset: %w", err)
	}
	for label, samples := range builtins {
		dataset[label] = samples
	}

	train, holdout := split(dataset, opts.HoldoutFraction)

	decision, err := t.algo.Fit(train)
	if err != nil {
		return nil, fmt.Errorf("fit %s: %w", t.algo.Name(), err)
	}

	accuracy, holdoutSize := evaluate(decision, holdout)

	labelSet := dataset.Labels()
	signature := classifier.SignatureOf(labelSet)

	version, err := t.st.Models().NextVersion(signature)
	if err != nil {
		return nil, fmt.Errorf("next version for %s: %w", signature, err)
	}

	model := classifier.NewTrainedModel(classifier.ModelInfo{
		ModelID:           uuid.New().String(),
		Version:           version,
		Signature:         signature,
		TrainedAt:         t.nowFn(),
		LabelSet:          labelSet,
		AccuracyOnHoldout: accuracy,
		HoldoutSize:       holdoutSize,
		MinSamplesUsed:    opts.MinSamplesPerGesture,
	}, t.algo.Name(), decision)

	artifact, err := model.MarshalArtifact()
	if err != nil {
		return nil, err
	}

	if err := t.st.Models().Save(store.ModelRecord{
		ID:                model.ModelID(),
		Version:           model.Version(),
		Signature:         model.Signature(),
		TrainedAt:         model.TrainedAt(),
		LabelSet:          model.LabelSet(),
		AccuracyOnHoldout: model.AccuracyOnHoldout(),
		HoldoutSize:       model.HoldoutSize(),
		MinSamplesUsed:    model.MinSamplesUsed(),
		Artifact:          artifact,
	}); err != nil {
		return nil, fmt.Errorf("save model %s: %w", model.ModelID(), err)
	}

	log.Printf("Trained model %s v%d over %d labels (holdout accuracy %.3f on %d samples)",
		model.ModelID(), model.Version(), len(labelSet), accuracy, holdoutSize)

	return model, nil
}

// loadRequested loads the requested labels' datasets from the store,
// enforcing the minimum-sample threshold over the whole request before
// anything is fitted.
func (t *Trainer) loadRequested(labels []string, minSamples int) (classifier.Dataset, error) {
	counts, err := t.st.Samples().CountByLabel()
	if err != nil {
		return nil, fmt.Errorf("count samples: %w", err)
	}

	deficient := make(map[string]int)
	for _, label := range labels {
		if classifier.IsBuiltin(label) {
			return nil, fmt.Errorf("%w: %q", ErrBuiltinLabel, label)
		}
		if counts[label] < minSamples {
			deficient[label] = counts[label]
		}
	}
	if len(deficient) > 0 {
		return nil, &InsufficientDataError{Required: minSamples, Counts: deficient}
	}

	dataset := make(classifier.Dataset, len(labels))
	for _, label := range labels {
		rows, err := t.st.Samples().ByLabel(label)
		if err != nil {
			return nil, fmt.Errorf("load samples for %s: %w", label, err)
		}

		samples := make([]classifier.Sample, 0, len(rows))
		for _, row := range rows {
			var v feature.Vector
			copy(v[:], row.Features)
			samples = append(samples, classifier.Sample{
				Features:   v,
				Label:      row.Label,
				UserID:     row.UserID,
				Confidence: row.Confidence,
				RecordedAt: row.RecordedAt,
			})
		}
		dataset[label] = samples
	}

	return dataset, nil
}

// split withholds the trailing fraction of each label's samples (which
// arrive oldest first) as the holdout. The split is deterministic so training
// results are reproducible from the same datasets.
func split(dataset classifier.Dataset, fraction float64) (train, holdout classifier.Dataset) {
	train = make(classifier.Dataset, len(dataset))
	holdout = make(classifier.Dataset, len(dataset))

	for label, samples := range dataset {
		n := int(float64(len(samples)) * fraction)
		if n >= len(samples) {
			n = len(samples) - 1
		}

		cut := len(samples) - n
		train[label] = samples[:cut]
		if n > 0 {
			holdout[label] = samples[cut:]
		}
	}

	return train, holdout
}

// evaluate computes the fraction of holdout samples the decision labels
// correctly. An empty holdout reports accuracy 0 with size 0.
func evaluate(d classifier.Decision, holdout classifier.Dataset) (float64, int) {
	total, correct := 0, 0
	for label, samples := range holdout {
		for _, s := range samples {
			total++
			if got, _ := d.Predict(s.Features); got == label {
				correct++
			}
		}
	}

	if total == 0 {
		return 0, 0
	}
	return float64(correct) / float64(total), total
}
