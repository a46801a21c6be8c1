package classifier

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/feature"
)

// ModelInfo carries the identifying metadata of a trained model.
type ModelInfo struct {
	ModelID           string
	Version           int
	Signature         string
	TrainedAt         time.Time
	LabelSet          []string
	AccuracyOnHoldout float64
	HoldoutSize       int
	MinSamplesUsed    int
}

// TrainedModel is an immutable fitted classifier. A successful training run
// creates a new TrainedModel with a fresh ModelID; existing models are never
// overwritten in place.
type TrainedModel struct {
	info      ModelInfo
	algorithm string
	decision  Decision
}

// NewTrainedModel wraps a fitted decision with its metadata.
func NewTrainedModel(info ModelInfo, algorithm string, d Decision) *TrainedModel {
	labels := make([]string, len(info.LabelSet))
	copy(labels, info.LabelSet)
	sort.Strings(labels)
	info.LabelSet = labels

	return &TrainedModel{info: info, algorithm: algorithm, decision: d}
}

// ModelID returns the model's unique identifier.
func (m *TrainedModel) ModelID() string { return m.info.ModelID }

// Version returns the monotonic version within the model's label signature.
func (m *TrainedModel) Version() int { return m.info.Version }

// Signature returns the hash of the model's sorted label set.
func (m *TrainedModel) Signature() string { return m.info.Signature }

// TrainedAt returns when the training run completed.
func (m *TrainedModel) TrainedAt() time.Time { return m.info.TrainedAt }

// AccuracyOnHoldout returns the fraction of held-out samples the fitted
// decision classified correctly, 0 when HoldoutSize is 0.
func (m *TrainedModel) AccuracyOnHoldout() float64 { return m.info.AccuracyOnHoldout }

// HoldoutSize returns the number of held-out samples used for evaluation.
func (m *TrainedModel) HoldoutSize() int { return m.info.HoldoutSize }

// MinSamplesUsed returns the per-label sample threshold in force when the
// model was trained.
func (m *TrainedModel) MinSamplesUsed() int { return m.info.MinSamplesUsed }

// LabelSet returns a copy of the model's sorted label set.
func (m *TrainedModel) LabelSet() []string {
	out := make([]string, len(m.info.LabelSet))
	copy(out, m.info.LabelSet)
	return out
}

// HasLabel reports whether the model can emit the given label.
func (m *TrainedModel) HasLabel(label string) bool {
	i := sort.SearchStrings(m.info.LabelSet, label)
	return i < len(m.info.LabelSet) && m.info.LabelSet[i] == label
}

// Predict runs the model's decision function.
func (m *TrainedModel) Predict(v feature.Vector) (string, float64) {
	return m.decision.Predict(v)
}

// SignatureOf returns the version-scoping signature of a label set: a short
// hash of the sorted label names. Two models trained over the same label set
// share a signature and compete on the same version counter.
func SignatureOf(labels []string) string {
	sorted := make([]string, len(labels))
	copy(sorted, labels)
	sort.Strings(sorted)

	sum := sha256.Sum256([]byte(strings.Join(sorted, "\x00")))
	return hex.EncodeToString(sum[:])[:12]
}

// artifact is the durable JSON form of a trained model, sufficient to reload
// and activate the model in a fresh process.
type artifact struct {
	ModelID           string          `json:"model_id"`
	Version           int             `json:"version"`
	Signature         string          `json:"signature"`
	TrainedAt         time.Time       `json:"trained_at"`
	LabelSet          []string        `json:"label_set"`
	AccuracyOnHoldout float64         `json:"accuracy_on_holdout"`
	HoldoutSize       int             `json:"holdout_size"`
	MinSamplesUsed    int             `json:"min_samples_used"`
	Algorithm         string          `json:"algorithm"`
	Parameters        json.RawMessage `json:"parameters"`
}

// MarshalArtifact serializes the model, fitted parameters included.
func (m *TrainedModel) MarshalArtifact() ([]byte, error) {
	params, err := m.decision.Parameters()
	if err != nil {
		return nil, fmt.Errorf("serialize model parameters: %w", err)
	}

	return json.Marshal(artifact{
		ModelID:           m.info.ModelID,
		Version:           m.info.Version,
		Signature:         m.info.Signature,
		TrainedAt:         m.info.TrainedAt,
		LabelSet:          m.info.LabelSet,
		AccuracyOnHoldout: m.info.AccuracyOnHoldout,
		HoldoutSize:       m.info.HoldoutSize,
		MinSamplesUsed:    m.info.MinSamplesUsed,
		Algorithm:         m.algorithm,
		Parameters:        params,
	})
}

// LoadArtifact reconstructs a trained model from its serialized artifact.
func LoadArtifact(data []byte) (*TrainedModel, error) {
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}

	var d Decision
	switch a.Algorithm {
	case nearestCentroidName:
		cd := &centroidDecision{}
		if err := json.Unmarshal(a.Parameters, cd); err != nil {
			return nil, fmt.Errorf("parse %s parameters: %w", a.Algorithm, err)
		}
		d = cd
	default:
		return nil, fmt.Errorf("unknown model algorithm %q", a.Algorithm)
	}

	return NewTrainedModel(ModelInfo{
		ModelID:           a.ModelID,
		Version:           a.Version,
		Signature:         a.Signature,
		TrainedAt:         a.TrainedAt,
		LabelSet:          a.LabelSet,
		AccuracyOnHoldout: a.AccuracyOnHoldout,
		HoldoutSize:       a.HoldoutSize,
		MinSamplesUsed:    a.MinSamplesUsed,
	}, a.Algorithm, d), nil
}
