package classifier

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/ayusman/mudra/internal/feature"
)

// TieEpsilon is the score margin within which two labels are considered tied.
// Ties prefer a built-in label over a custom one (built-ins are assumed
// better validated); between two labels of the same kind the more recently
// trained label wins.
const TieEpsilon = 0.01

// nearestCentroidName identifies the algorithm in model artifacts.
const nearestCentroidName = "nearest_centroid"

// NearestCentroid fits one centroid per label and scores a prediction by its
// distance to the nearest centroid, with confidence 1/(1+distance).
type NearestCentroid struct{}

// Name implements Algorithm.
func (NearestCentroid) Name() string { return nearestCentroidName }

// Fit implements Algorithm. It fails when the dataset is empty or any label
// has no samples.
func (NearestCentroid) Fit(train Dataset) (Decision, error) {
	if len(train) == 0 {
		return nil, errors.New("nearest centroid: empty training dataset")
	}

	d := &centroidDecision{
		Centroids: make(map[string][]float64, len(train)),
		TrainedAt: make(map[string]time.Time, len(train)),
	}

	for label, samples := range train {
		if len(samples) == 0 {
			return nil, errors.New("nearest centroid: label " + label + " has no samples")
		}

		centroid := make([]float64, feature.Dim)
		var latest time.Time
		for _, s := range samples {
			for i := 0; i < feature.Dim; i++ {
				centroid[i] += s.Features[i]
			}
			if s.RecordedAt.After(latest) {
				latest = s.RecordedAt
			}
		}

		n := float64(len(samples))
		for i := range centroid {
			centroid[i] /= n
		}

		d.Centroids[label] = centroid
		d.TrainedAt[label] = latest
	}

	return d, nil
}

// centroidDecision is the fitted decision function for NearestCentroid. Its
// fields are exported only for artifact serialization; a fitted decision is
// never mutated.
type centroidDecision struct {
	Centroids map[string][]float64 `json:"centroids"`
	TrainedAt map[string]time.Time `json:"trained_at"`
}

// Predict implements Decision. All labels are scored by 1/(1+distance); the
// labels within TieEpsilon of the top score are tie-broken by the
// built-in-over-custom, then newest-trained policy. Ranking does not depend
// on map iteration order, so repeated calls always agree.
func (d *centroidDecision) Predict(v feature.Vector) (string, float64) {
	scores := make(map[string]float64, len(d.Centroids))
	top := 0.0

	for label, centroid := range d.Centroids {
		var c feature.Vector
		copy(c[:], centroid)

		score := 1.0 / (1.0 + feature.Distance(v, c))
		scores[label] = score
		if score > top {
			top = score
		}
	}

	var winner string
	for label, score := range scores {
		if score < top-TieEpsilon {
			continue
		}
		if winner == "" || d.prefer(label, winner) {
			winner = label
		}
	}

	return winner, scores[winner]
}

// prefer reports whether candidate wins a tie against incumbent. The final
// lexicographic comparison only keeps the result stable when both labels are
// the same kind and were trained at the same instant.
func (d *centroidDecision) prefer(candidate, incumbent string) bool {
	cb, ib := IsBuiltin(candidate), IsBuiltin(incumbent)
	if cb != ib {
		return cb
	}
	ct, it := d.TrainedAt[candidate], d.TrainedAt[incumbent]
	if !ct.Equal(it) {
		return ct.After(it)
	}
	return candidate < incumbent
}

// Parameters implements Decision.
func (d *centroidDecision) Parameters() (json.RawMessage, error) {
	return json.Marshal(d)
}
