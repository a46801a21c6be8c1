package landmark

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Handedness identifies which hand an observation belongs to.
type Handedness string

const (
	// Left is the detector's label for a left hand.
	Left Handedness = "Left"
	// Right is the detector's label for a right hand.
	Right Handedness = "Right"
)

// DefaultLowConfidence is the detection confidence below which an observation
// is considered weak. Weak observations are passed through, never rejected.
const DefaultLowConfidence = 0.5

// ErrInvalidObservation is returned when a raw observation is structurally
// invalid and cannot be turned into a HandObservation.
var ErrInvalidObservation = errors.New("invalid hand observation")

// RawObservation is the per-frame, per-hand record delivered by the external
// landmark detector, prior to any validation.
type RawObservation struct {
	Landmarks  []Point3D    `json:"landmarks"`
	Handedness string       `json:"handedness"`
	Score      float64      `json:"score"`
	Box        *BoundingBox `json:"box,omitempty"`
}

// HandObservation is a validated single-hand observation: exactly 21
// landmarks, a recognized handedness and a detection confidence. Instances
// are immutable by convention; they are created per inbound frame and
// discarded after feature extraction.
type HandObservation struct {
	Points     [NumLandmarks]Point3D
	Handedness Handedness
	Score      float64
	Box        BoundingBox
}

// Normalize validates a raw observation and repackages it as a
// HandObservation. It fails with ErrInvalidObservation when the landmark
// count is not 21, any coordinate is non-finite, or the handedness label is
// missing or unrecognized. A missing bounding box is derived from the
// landmark extrema. A low detection confidence is passed through unchanged;
// structural validity is the only rejection criterion.
func Normalize(raw RawObservation) (HandObservation, error) {
	var obs HandObservation

	if len(raw.Landmarks) != NumLandmarks {
		return obs, fmt.Errorf("%w: expected %d landmarks, got %d",
			ErrInvalidObservation, NumLandmarks, len(raw.Landmarks))
	}

	for i, p := range raw.Landmarks {
		if !p.finite() {
			return obs, fmt.Errorf("%w: landmark %d has non-finite coordinates",
				ErrInvalidObservation, i)
		}
		obs.Points[i] = p
	}

	switch strings.ToLower(strings.TrimSpace(raw.Handedness)) {
	case "left":
		obs.Handedness = Left
	case "right":
		obs.Handedness = Right
	default:
		return obs, fmt.Errorf("%w: unrecognized handedness %q",
			ErrInvalidObservation, raw.Handedness)
	}

	obs.Score = raw.Score

	if raw.Box != nil {
		obs.Box = *raw.Box
	} else {
		obs.Box = boxFromPoints(obs.Points[:])
	}

	return obs, nil
}

// LowConfidence reports whether the detection confidence falls below the
// given threshold. Pass DefaultLowConfidence unless the caller has its own
// policy.
func (h HandObservation) LowConfidence(threshold float64) bool {
	return h.Score < threshold
}

// Centered returns a copy of the observation with the wrist at the origin and
// all points scaled so the wrist to middle finger MCP distance is 1.0. This
// makes downstream geometry invariant to the hand's position and apparent
// size in the frame. Degenerate geometry (reference length near zero) yields
// the translated but unscaled points.
func (h HandObservation) Centered() HandObservation {
	out := h

	wrist := h.Points[Wrist]
	for i := 0; i < NumLandmarks; i++ {
		out.Points[i] = Point3D{
			X: h.Points[i].X - wrist.X,
			Y: h.Points[i].Y - wrist.Y,
			Z: h.Points[i].Z - wrist.Z,
		}
	}

	scale := Distance(Point3D{}, out.Points[MiddleMCP])
	if scale < 1e-10 {
		return out
	}

	for i := 0; i < NumLandmarks; i++ {
		out.Points[i].X /= scale
		out.Points[i].Y /= scale
		out.Points[i].Z /= scale
	}

	return out
}

// boxFromPoints derives a bounding box from landmark extrema in the xy plane.
func boxFromPoints(points []Point3D) BoundingBox {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}

	return BoundingBox{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
