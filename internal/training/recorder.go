// Package training turns recorded feature samples into new classifier
// versions: recording sessions buffer samples in memory, stop_recording
// flushes them into the durable per-label datasets, and Train fits a new
// immutable model from those datasets.
package training

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/classifier"
	"github.com/ayusman/mudra/internal/feature"
	"github.com/ayusman/mudra/internal/store"
)

// ErrSessionNotFound is returned when a session handle is unknown. Stale and
// abandoned handles are indistinguishable from never-issued ones.
var ErrSessionNotFound = errors.New("recording session not found")

// ErrBuiltinLabel is returned when a custom label collides with a built-in
// gesture name.
var ErrBuiltinLabel = errors.New("label collides with a built-in gesture")

// session is one caller's in-memory recording buffer. Sessions must not be
// shared across concurrent callers; concurrent sessions for different labels
// are independent.
type session struct {
	id        string
	label     string
	userID    string
	startedAt time.Time
	buffer    []store.TrainingSample
	closed    bool
	flushed   int
}

// Recorder manages recording sessions and commits them to the durable
// datasets. Only an explicit StopRecording commits samples; a session that
// goes out of scope never touches the dataset.
type Recorder struct {
	st *store.Store

	mu       sync.Mutex
	sessions map[string]*session
	nowFn    func() time.Time
}

// NewRecorder creates a Recorder backed by the given store.
func NewRecorder(st *store.Store) *Recorder {
	return &Recorder{
		st:       st,
		sessions: make(map[string]*session),
		nowFn:    time.Now,
	}
}

// StartRecording opens a recording session for the given gesture label and
// returns its handle. The label is only checked for built-in collisions
// here; whether it has enough samples is a training-time concern.
func (r *Recorder) StartRecording(label, userID string) (string, error) {
	if label == "" {
		return "", errors.New("start recording: empty label")
	}
	if classifier.IsBuiltin(label) {
		return "", fmt.Errorf("%w: %q", ErrBuiltinLabel, label)
	}

	s := &session{
		id:        uuid.New().String(),
		label:     label,
		userID:    userID,
		startedAt: r.nowFn(),
	}

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	return s.id, nil
}

// RecordSample appends a feature vector to the session's in-memory buffer.
// It fails with ErrSessionNotFound when the handle is unknown or the session
// has already been stopped.
func (r *Recorder) RecordSample(sessionID string, v feature.Vector, confidence float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok || s.closed {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	s.buffer = append(s.buffer, store.TrainingSample{
		Label:      s.label,
		UserID:     s.userID,
		Confidence: confidence,
		Features:   v[:],
		RecordedAt: r.nowFn(),
	})
	return nil
}

// StopRecording flushes the session's buffer into the label's durable
// dataset and returns the committed sample count. It is idempotent: repeated
// calls are no-ops returning the count of the first flush.
func (r *Recorder) StopRecording(sessionID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if s.closed {
		return s.flushed, nil
	}

	if err := r.st.Samples().Append(s.label, s.buffer); err != nil {
		return 0, fmt.Errorf("flush session %s: %w", sessionID, err)
	}

	s.flushed = len(s.buffer)
	s.closed = true
	s.buffer = nil

	return s.flushed, nil
}

// Abandon drops a session without committing its buffer. Dropping an unknown
// handle is a no-op; the durable dataset is untouched either way.
func (r *Recorder) Abandon(sessionID string) {
	r.mu.Lock()
	delete(r.sessions, sessionID)
	r.mu.Unlock()
}

// SessionLabel returns the label a session is recording for.
func (r *Recorder) SessionLabel(sessionID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return s.label, nil
}
