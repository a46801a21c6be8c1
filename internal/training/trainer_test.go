package training

import (
	"errors"
	"testing"

	"github.com/ayusman/mudra/internal/classifier"
	"github.com/ayusman/mudra/internal/store"
)

// recordSamples commits n samples for a label through a recording session.
func recordSamples(t *testing.T, r *Recorder, label string, n int) {
	t.Helper()

	id, err := r.StartRecording(label, "user-1")
	if err != nil {
		t.Fatalf("StartRecording(%s) error = %v", label, err)
	}
	for i := 0; i < n; i++ {
		if err := r.RecordSample(id, vec(float64(i), float64(i)*0.5), 0.9); err != nil {
			t.Fatalf("RecordSample() error = %v", err)
		}
	}
	if _, err := r.StopRecording(id); err != nil {
		t.Fatalf("StopRecording() error = %v", err)
	}
}

func TestTrain_Succeeds(t *testing.T) {
	st := newTestStore(t)
	r := NewRecorder(st)
	tr := NewTrainer(st, classifier.NearestCentroid{})

	recordSamples(t, r, "wave", 10)

	model, err := tr.Train([]string{"wave"}, Options{MinSamplesPerGesture: 5, HoldoutFraction: 0.2})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	// The label set is the custom label unioned with the full built-in
	// taxonomy.
	if !model.HasLabel("wave") {
		t.Error("expected wave in the label set")
	}
	for _, builtin := range classifier.Builtins() {
		if !model.HasLabel(builtin) {
			t.Errorf("expected built-in %s in the label set", builtin)
		}
	}
	if len(model.LabelSet()) != len(classifier.Builtins())+1 {
		t.Errorf("unexpected label set size %d", len(model.LabelSet()))
	}

	if model.ModelID() == "" || model.Version() != 1 {
		t.Errorf("expected model id and version 1, got %q v%d", model.ModelID(), model.Version())
	}
	if model.MinSamplesUsed() != 5 {
		t.Errorf("expected min samples 5, got %d", model.MinSamplesUsed())
	}
	if model.HoldoutSize() == 0 {
		t.Error("expected a non-empty holdout")
	}
	if acc := model.AccuracyOnHoldout(); acc < 0 || acc > 1 {
		t.Errorf("accuracy out of range: %f", acc)
	}

	// Training persists the artifact but never activates anything.
	rec, err := st.Models().GetByID(model.ModelID())
	if err != nil {
		t.Fatalf("model not persisted: %v", err)
	}
	if rec.Version != 1 {
		t.Errorf("persisted version mismatch: %d", rec.Version)
	}
}

func TestTrain_InsufficientData(t *testing.T) {
	st := newTestStore(t)
	r := NewRecorder(st)
	tr := NewTrainer(st, classifier.NearestCentroid{})

	recordSamples(t, r, "salute", 3)
	recordSamples(t, r, "wave", 10)

	_, err := tr.Train([]string{"salute", "wave"}, Options{MinSamplesPerGesture: 5, HoldoutFraction: 0.2})

	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}

	// Every deficient label is named with its count; sufficient ones are not.
	if got := insufficient.Labels(); len(got) != 1 || got[0] != "salute" {
		t.Errorf("expected only salute named, got %v", got)
	}
	if insufficient.Counts["salute"] != 3 || insufficient.Required != 5 {
		t.Errorf("wrong counts: %+v", insufficient)
	}

	// All-or-nothing: no model was produced.
	if _, err := st.Models().Latest(); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected no persisted model, got %v", err)
	}
}

func TestTrain_SufficiencyBoundary(t *testing.T) {
	st := newTestStore(t)
	r := NewRecorder(st)
	tr := NewTrainer(st, classifier.NearestCentroid{})

	recordSamples(t, r, "wave", 5)

	// Exactly the minimum passes; one fewer fails.
	if _, err := tr.Train([]string{"wave"}, Options{MinSamplesPerGesture: 5, HoldoutFraction: 0.2}); err != nil {
		t.Errorf("exactly min samples should train: %v", err)
	}
	if _, err := tr.Train([]string{"wave"}, Options{MinSamplesPerGesture: 6, HoldoutFraction: 0.2}); err == nil {
		t.Error("expected InsufficientDataError below the threshold")
	}

	// An unknown label has zero samples and must be named too.
	_, err := tr.Train([]string{"never_recorded"}, Options{MinSamplesPerGesture: 5, HoldoutFraction: 0.2})
	var insufficient *InsufficientDataError
	if !errors.As(err, &insufficient) || insufficient.Counts["never_recorded"] != 0 {
		t.Errorf("expected never_recorded named with count 0, got %v", err)
	}
}

func TestTrain_RejectsBuiltinLabel(t *testing.T) {
	st := newTestStore(t)
	tr := NewTrainer(st, classifier.NearestCentroid{})

	if _, err := tr.Train([]string{"thumbs_up"}, DefaultOptions()); !errors.Is(err, ErrBuiltinLabel) {
		t.Errorf("expected ErrBuiltinLabel, got %v", err)
	}
}

func TestTrain_VersionsAreMonotonic(t *testing.T) {
	st := newTestStore(t)
	r := NewRecorder(st)
	tr := NewTrainer(st, classifier.NearestCentroid{})

	recordSamples(t, r, "wave", 10)

	m1, err := tr.Train([]string{"wave"}, DefaultOptions())
	if err != nil {
		t.Fatalf("first Train() error = %v", err)
	}
	m2, err := tr.Train([]string{"wave"}, DefaultOptions())
	if err != nil {
		t.Fatalf("second Train() error = %v", err)
	}

	// Same label-set signature: versions increment, ids always differ, and
	// the first model is untouched.
	if m1.Signature() != m2.Signature() {
		t.Errorf("expected shared signature, got %q vs %q", m1.Signature(), m2.Signature())
	}
	if m2.Version() != m1.Version()+1 {
		t.Errorf("expected version %d, got %d", m1.Version()+1, m2.Version())
	}
	if m1.ModelID() == m2.ModelID() {
		t.Error("two training runs must produce distinct model ids")
	}

	recordSamples(t, r, "salute", 5)
	m3, err := tr.Train([]string{"wave", "salute"}, DefaultOptions())
	if err != nil {
		t.Fatalf("third Train() error = %v", err)
	}
	if m3.Signature() == m1.Signature() {
		t.Error("a different label set must get its own signature")
	}
	if m3.Version() != 1 {
		t.Errorf("a new signature starts at version 1, got %d", m3.Version())
	}

	records, err := st.Models().List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected all 3 models retained, got %d", len(records))
	}
}

func TestTrain_TrainAll(t *testing.T) {
	st := newTestStore(t)
	r := NewRecorder(st)
	tr := NewTrainer(st, classifier.NearestCentroid{})

	recordSamples(t, r, "wave", 6)
	recordSamples(t, r, "salute", 7)

	model, err := tr.TrainAll(DefaultOptions())
	if err != nil {
		t.Fatalf("TrainAll() error = %v", err)
	}
	if !model.HasLabel("wave") || !model.HasLabel("salute") {
		t.Errorf("expected every recorded label, got %v", model.LabelSet())
	}
}

func TestTrain_ModelRoundTripsThroughStore(t *testing.T) {
	st := newTestStore(t)
	r := NewRecorder(st)
	tr := NewTrainer(st, classifier.NearestCentroid{})

	recordSamples(t, r, "wave", 10)

	model, err := tr.Train([]string{"wave"}, DefaultOptions())
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	rec, err := st.Models().GetByID(model.ModelID())
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	loaded, err := classifier.LoadArtifact(rec.Artifact)
	if err != nil {
		t.Fatalf("LoadArtifact() error = %v", err)
	}

	probe := vec(2, 1)
	wantLabel, wantConf := model.Predict(probe)
	gotLabel, gotConf := loaded.Predict(probe)
	if gotLabel != wantLabel || gotConf != wantConf {
		t.Errorf("restored model disagrees: got (%q, %v), want (%q, %v)",
			gotLabel, gotConf, wantLabel, wantConf)
	}
	if loaded.TrainedAt().Unix() != model.TrainedAt().Unix() {
		t.Errorf("trained-at drifted through the store: %v vs %v", loaded.TrainedAt(), model.TrainedAt())
	}
}
