package store

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "mudra.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func sampleRow(label string, at time.Time, features ...float64) TrainingSample {
	return TrainingSample{
		Label:      label,
		UserID:     "user-1",
		Confidence: 0.9,
		Features:   features,
		RecordedAt: at,
	}
}

func TestSamples_AppendAndRead(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)

	err := s.Samples().Append("wave", []TrainingSample{
		sampleRow("wave", now, 1, 2, 3),
		sampleRow("wave", now.Add(time.Second), 4, 5, 6),
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := s.Samples().ByLabel("wave")
	if err != nil {
		t.Fatalf("ByLabel() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(got))
	}

	// Oldest first, features intact.
	if got[0].Features[0] != 1 || got[1].Features[0] != 4 {
		t.Errorf("wrong order or features: %v, %v", got[0].Features, got[1].Features)
	}
	if got[0].UserID != "user-1" || got[0].Confidence != 0.9 {
		t.Errorf("metadata lost: %+v", got[0])
	}
}

func TestSamples_AppendEmptyIsNoop(t *testing.T) {
	s := newTestStore(t)

	if err := s.Samples().Append("wave", nil); err != nil {
		t.Fatalf("Append(nil) error = %v", err)
	}

	counts, err := s.Samples().CountByLabel()
	if err != nil {
		t.Fatalf("CountByLabel() error = %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("expected no rows, got %v", counts)
	}
}

func TestSamples_CountAndLabels(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	s.Samples().Append("wave", []TrainingSample{sampleRow("wave", now, 1)})
	s.Samples().Append("salute", []TrainingSample{
		sampleRow("salute", now, 1),
		sampleRow("salute", now, 2),
	})

	counts, err := s.Samples().CountByLabel()
	if err != nil {
		t.Fatalf("CountByLabel() error = %v", err)
	}
	if counts["wave"] != 1 || counts["salute"] != 2 {
		t.Errorf("wrong counts: %v", counts)
	}

	labels, err := s.Samples().Labels()
	if err != nil {
		t.Fatalf("Labels() error = %v", err)
	}
	if len(labels) != 2 || labels[0] != "salute" || labels[1] != "wave" {
		t.Errorf("wrong labels: %v", labels)
	}
}

func TestModels_SaveAndLoad(t *testing.T) {
	s := newTestStore(t)
	trainedAt := time.Now().UTC().Truncate(time.Second)

	rec := ModelRecord{
		ID:                "model-1",
		Version:           1,
		Signature:         "abc123",
		TrainedAt:         trainedAt,
		LabelSet:          []string{"thumbs_up", "wave"},
		AccuracyOnHoldout: 0.95,
		HoldoutSize:       8,
		MinSamplesUsed:    5,
		Artifact:          json.RawMessage(`{"algorithm":"nearest_centroid"}`),
	}
	if err := s.Models().Save(rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Models().GetByID("model-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Version != 1 || got.Signature != "abc123" || got.AccuracyOnHoldout != 0.95 {
		t.Errorf("metadata mismatch: %+v", got)
	}
	if len(got.LabelSet) != 2 || got.LabelSet[0] != "thumbs_up" {
		t.Errorf("label set mismatch: %v", got.LabelSet)
	}
	if string(got.Artifact) != `{"algorithm":"nearest_centroid"}` {
		t.Errorf("artifact mismatch: %s", got.Artifact)
	}
}

func TestModels_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Models().GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Models().Latest(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Latest() on empty store, got %v", err)
	}
}

func TestModels_LatestAndList(t *testing.T) {
	s := newTestStore(t)
	base := time.Now().UTC().Truncate(time.Second)

	for i, id := range []string{"old", "mid", "new"} {
		err := s.Models().Save(ModelRecord{
			ID:        id,
			Version:   i + 1,
			Signature: "sig",
			TrainedAt: base.Add(time.Duration(i) * time.Minute),
			LabelSet:  []string{"wave"},
			Artifact:  json.RawMessage(`{}`),
		})
		if err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}

	latest, err := s.Models().Latest()
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest.ID != "new" {
		t.Errorf("expected newest model, got %q", latest.ID)
	}

	// Old models are retained for rollback, newest first.
	all, err := s.Models().List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 || all[0].ID != "new" || all[2].ID != "old" {
		t.Errorf("wrong list: %v", all)
	}
}

func TestModels_NextVersion(t *testing.T) {
	s := newTestStore(t)

	for want := 1; want <= 3; want++ {
		got, err := s.Models().NextVersion("sig-a")
		if err != nil {
			t.Fatalf("NextVersion() error = %v", err)
		}
		if got != want {
			t.Errorf("expected version %d, got %d", want, got)
		}
	}

	// Counters are scoped per signature.
	got, err := s.Models().NextVersion("sig-b")
	if err != nil {
		t.Fatalf("NextVersion() error = %v", err)
	}
	if got != 1 {
		t.Errorf("expected a fresh counter for a new signature, got %d", got)
	}
}
