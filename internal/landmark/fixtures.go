package landmark

import "math"

// PoseSpec parameterizes a synthesized hand pose. Curl and Spread are indexed
// thumb, index, middle, ring, pinky. Curl runs from 0 (fully extended) to 1
// (fully curled toward the palm); Spread is an angle in radians added to the
// finger's rest direction; Tilt leans the whole hand in the image plane.
type PoseSpec struct {
	Curl   [5]float64
	Spread [5]float64
	Tilt   float64
}

// Finger geometry for the synthesized right hand. Rest angles fan out from
// straight-up; lengths are in normalized image units so the synthesized hand
// sits comfortably inside a [0,1] frame.
var (
	fingerRest    = [5]float64{0.80, 0.15, 0.00, -0.15, -0.30}
	fingerPalmLen = [5]float64{0.08, 0.20, 0.21, 0.20, 0.17}
	fingerSegLen  = [5][3]float64{
		{0.07, 0.055, 0.045}, // thumb: CMC->MCP->IP->Tip
		{0.065, 0.040, 0.032},
		{0.072, 0.045, 0.034},
		{0.066, 0.042, 0.032},
		{0.050, 0.034, 0.028},
	}
)

// curlBend is the per-joint bend in radians for a fully curled finger.
const curlBend = 1.55

// SynthesizePose builds a deterministic right-hand observation from a pose
// spec. The same spec always yields the same landmarks.
func SynthesizePose(spec PoseSpec) HandObservation {
	obs := HandObservation{
		Handedness: Right,
		Score:      0.95,
	}

	wrist := Point3D{X: 0.5, Y: 0.85, Z: 0}
	obs.Points[Wrist] = wrist

	// Joint index chains per finger, base joint first.
	chains := [5][4]int{
		{ThumbCMC, ThumbMCP, ThumbIP, ThumbTip},
		{IndexMCP, IndexPIP, IndexDIP, IndexTip},
		{MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip},
		{RingMCP, RingPIP, RingDIP, RingTip},
		{PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip},
	}

	for f := 0; f < 5; f++ {
		theta := fingerRest[f] + spec.Spread[f] + spec.Tilt

		base := Point3D{
			X: wrist.X + fingerPalmLen[f]*math.Sin(theta),
			Y: wrist.Y - fingerPalmLen[f]*math.Cos(theta),
			Z: 0,
		}
		obs.Points[chains[f][0]] = base

		pos := base
		for s := 0; s < 3; s++ {
			theta += spec.Curl[f] * curlBend
			pos = Point3D{
				X: pos.X + fingerSegLen[f][s]*math.Sin(theta),
				Y: pos.Y - fingerSegLen[f][s]*math.Cos(theta),
				Z: pos.Z - spec.Curl[f]*0.02,
			}
			obs.Points[chains[f][s+1]] = pos
		}
	}

	obs.Box = boxFromPoints(obs.Points[:])
	return obs
}

// builtinPoses maps each built-in gesture name to its canonical pose spec.
var builtinPoses = map[string]PoseSpec{
	"open_hand":   {Curl: [5]float64{0, 0, 0, 0, 0}, Spread: [5]float64{0.1, 0.06, 0, -0.06, -0.1}},
	"closed_fist": {Curl: [5]float64{0.8, 1, 1, 1, 1}},
	"pointing":    {Curl: [5]float64{0.7, 0, 1, 1, 1}},
	"thumbs_up":   {Curl: [5]float64{0, 1, 1, 1, 1}, Spread: [5]float64{0.25, 0, 0, 0, 0}},
	"peace_sign":  {Curl: [5]float64{0.7, 0, 0, 1, 1}, Spread: [5]float64{0, 0.18, -0.18, 0, 0}},
	"ok_sign":     {Curl: [5]float64{0.45, 0.55, 0, 0, 0}, Spread: [5]float64{-0.2, 0.25, 0, -0.06, -0.1}},
	"grab":        {Curl: [5]float64{0.5, 0.55, 0.55, 0.55, 0.55}},
	"release":     {Curl: [5]float64{0.15, 0.15, 0.15, 0.15, 0.15}, Spread: [5]float64{0.2, 0.12, 0, -0.12, -0.2}},
	"pinch":       {Curl: [5]float64{0.35, 0.45, 0.9, 0.9, 0.9}, Spread: [5]float64{-0.25, 0.3, 0, 0, 0}},
	"spread":      {Curl: [5]float64{0, 0, 0, 0, 0}, Spread: [5]float64{0.3, 0.22, 0, -0.22, -0.3}},
	"rotate":      {Curl: [5]float64{0, 0, 1, 1, 1}, Spread: [5]float64{0.3, -0.45, 0, 0, 0}},
	"zoom":        {Curl: [5]float64{0, 0, 1, 1, 1}, Spread: [5]float64{0.55, 0.1, 0, 0, 0}},
	"swipe_left":  {Curl: [5]float64{0.1, 0, 0, 0, 0}, Tilt: -0.6},
	"swipe_right": {Curl: [5]float64{0.1, 0, 0, 0, 0}, Tilt: 0.6},
	"swipe_up":    {Curl: [5]float64{0.1, 0, 0, 0, 0}},
	"swipe_down":  {Curl: [5]float64{0.3, 0.3, 0.3, 0.3, 0.3}, Tilt: 0.25},
	"select":      {Curl: [5]float64{0.7, 0, 0.5, 1, 1}},
	"deselect":    {Curl: [5]float64{0.7, 0.5, 1, 1, 1}},
}

// BuiltinPose returns the canonical observation for a built-in gesture name.
// The second return value is false when the name has no canonical pose.
func BuiltinPose(name string) (HandObservation, bool) {
	spec, ok := builtinPoses[name]
	if !ok {
		return HandObservation{}, false
	}
	return SynthesizePose(spec), true
}

// BuiltinPoseVariant returns a slightly perturbed copy of a built-in pose.
// Variants are deterministic: the same (name, variant) pair always yields the
// same observation. Variant 2 of 5 is the canonical pose itself.
func BuiltinPoseVariant(name string, variant int) (HandObservation, bool) {
	spec, ok := builtinPoses[name]
	if !ok {
		return HandObservation{}, false
	}

	delta := float64(variant - 2)
	for f := 0; f < 5; f++ {
		spec.Curl[f] = clamp01(spec.Curl[f] + 0.015*delta)
		spec.Spread[f] += 0.008 * delta
	}

	return SynthesizePose(spec), true
}

// ThumbsUpPose returns the canonical thumbs up observation, a convenience for
// tests and demos.
func ThumbsUpPose() HandObservation {
	obs, _ := BuiltinPose("thumbs_up")
	return obs
}

// OpenHandPose returns the canonical open hand observation.
func OpenHandPose() HandObservation {
	obs, _ := BuiltinPose("open_hand")
	return obs
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
