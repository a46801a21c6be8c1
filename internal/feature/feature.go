// Package feature derives fixed-length numeric feature vectors from hand
// observations. The vectors are invariant to the hand's position and apparent
// size in the frame, which is what lets a model trained on one user's hand
// geometry generalize to others.
package feature

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ayusman/mudra/internal/landmark"
)

// Dim is the fixed dimension of every feature vector:
// 5 fingertip to palm-center distances, 4 adjacent fingertip gaps, the
// thumb-index pinch distance, 15 joint flexion angles (3 per finger), 10
// bounding-box-normalized fingertip coordinates, and the box aspect ratio.
const Dim = 36

// Vector is a fixed-dimension feature vector. It has value semantics: every
// pipeline call owns the vector it created.
type Vector [Dim]float64

// Distance returns the Euclidean distance between two feature vectors.
func Distance(a, b Vector) float64 {
	return floats.Distance(a[:], b[:], 2)
}

var fingertips = [5]int{
	landmark.ThumbTip, landmark.IndexTip, landmark.MiddleTip,
	landmark.RingTip, landmark.PinkyTip,
}

// Per-finger joint triples for flexion angles. Each triple (a, b, c) measures
// the angle at b between segments b->a and b->c.
var flexionJoints = [15][3]int{
	{landmark.Wrist, landmark.ThumbCMC, landmark.ThumbMCP},
	{landmark.ThumbCMC, landmark.ThumbMCP, landmark.ThumbIP},
	{landmark.ThumbMCP, landmark.ThumbIP, landmark.ThumbTip},
	{landmark.Wrist, landmark.IndexMCP, landmark.IndexPIP},
	{landmark.IndexMCP, landmark.IndexPIP, landmark.IndexDIP},
	{landmark.IndexPIP, landmark.IndexDIP, landmark.IndexTip},
	{landmark.Wrist, landmark.MiddleMCP, landmark.MiddlePIP},
	{landmark.MiddleMCP, landmark.MiddlePIP, landmark.MiddleDIP},
	{landmark.MiddlePIP, landmark.MiddleDIP, landmark.MiddleTip},
	{landmark.Wrist, landmark.RingMCP, landmark.RingPIP},
	{landmark.RingMCP, landmark.RingPIP, landmark.RingDIP},
	{landmark.RingPIP, landmark.RingDIP, landmark.RingTip},
	{landmark.Wrist, landmark.PinkyMCP, landmark.PinkyPIP},
	{landmark.PinkyMCP, landmark.PinkyPIP, landmark.PinkyDIP},
	{landmark.PinkyPIP, landmark.PinkyDIP, landmark.PinkyTip},
}

// Extract computes the feature vector for a validated observation. It is
// deterministic (pure arithmetic, no state) and never fails: degenerate
// geometry such as coincident landmarks or a zero-size bounding box yields
// zero-valued components instead of an error.
func Extract(obs landmark.HandObservation) Vector {
	var v Vector

	// All distance features are computed on the wrist-origin, reference-scaled
	// copy, so they are already divided by the wrist to middle-MCP length.
	c := obs.Centered()

	palm := palmCenter(c)

	i := 0

	// Fingertip to palm-center distances.
	for _, tip := range fingertips {
		v[i] = landmark.Distance(c.Points[tip], palm)
		i++
	}

	// Adjacent fingertip gaps.
	for f := 0; f < 4; f++ {
		v[i] = landmark.Distance(c.Points[fingertips[f]], c.Points[fingertips[f+1]])
		i++
	}

	// Thumb to index pinch distance.
	v[i] = landmark.Distance(c.Points[landmark.ThumbTip], c.Points[landmark.IndexTip])
	i++

	// Flexion angles at each finger's joints.
	for _, j := range flexionJoints {
		v[i] = jointAngle(c.Points[j[0]], c.Points[j[1]], c.Points[j[2]])
		i++
	}

	// Bounding-box-normalized fingertip coordinates, from the raw points so
	// the signature reflects where the fingers sit inside the detected box.
	for _, tip := range fingertips {
		x, y := 0.0, 0.0
		if obs.Box.W > 1e-10 {
			x = (obs.Points[tip].X - obs.Box.X) / obs.Box.W
		}
		if obs.Box.H > 1e-10 {
			y = (obs.Points[tip].Y - obs.Box.Y) / obs.Box.H
		}
		v[i] = x
		v[i+1] = y
		i += 2
	}

	// Box aspect ratio.
	if obs.Box.H > 1e-10 {
		v[i] = obs.Box.W / obs.Box.H
	}

	return v
}

// palmCenter averages the wrist and the five MCP knuckles.
func palmCenter(obs landmark.HandObservation) landmark.Point3D {
	idx := [6]int{
		landmark.Wrist, landmark.ThumbMCP, landmark.IndexMCP,
		landmark.MiddleMCP, landmark.RingMCP, landmark.PinkyMCP,
	}

	var sum landmark.Point3D
	for _, j := range idx {
		sum.X += obs.Points[j].X
		sum.Y += obs.Points[j].Y
		sum.Z += obs.Points[j].Z
	}

	n := float64(len(idx))
	return landmark.Point3D{X: sum.X / n, Y: sum.Y / n, Z: sum.Z / n}
}

// jointAngle returns the angle in radians at b between segments b->a and
// b->c. Coincident points yield 0.
func jointAngle(a, b, c landmark.Point3D) float64 {
	ux, uy, uz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	vx, vy, vz := c.X-b.X, c.Y-b.Y, c.Z-b.Z

	un := math.Sqrt(ux*ux + uy*uy + uz*uz)
	vn := math.Sqrt(vx*vx + vy*vy + vz*vz)
	if un < 1e-10 || vn < 1e-10 {
		return 0
	}

	cos := (ux*vx + uy*vy + uz*vz) / (un * vn)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos)
}
