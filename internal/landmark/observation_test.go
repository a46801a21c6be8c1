package landmark

import (
	"errors"
	"math"
	"testing"
)

func validRaw() RawObservation {
	pose := OpenHandPose()
	return RawObservation{
		Landmarks:  pose.Points[:],
		Handedness: "Right",
		Score:      0.9,
	}
}

func TestNormalize_Valid(t *testing.T) {
	obs, err := Normalize(validRaw())
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	if obs.Handedness != Right {
		t.Errorf("expected Right handedness, got %q", obs.Handedness)
	}
	if obs.Score != 0.9 {
		t.Errorf("expected score 0.9, got %f", obs.Score)
	}
	if obs.Box.W <= 0 || obs.Box.H <= 0 {
		t.Errorf("expected derived bounding box, got %+v", obs.Box)
	}
}

func TestNormalize_WrongLandmarkCount(t *testing.T) {
	raw := validRaw()
	raw.Landmarks = raw.Landmarks[:20]

	_, err := Normalize(raw)
	if !errors.Is(err, ErrInvalidObservation) {
		t.Fatalf("expected ErrInvalidObservation, got %v", err)
	}
}

func TestNormalize_NonFiniteCoordinate(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		raw := validRaw()
		points := make([]Point3D, len(raw.Landmarks))
		copy(points, raw.Landmarks)
		points[7].Y = bad
		raw.Landmarks = points

		if _, err := Normalize(raw); !errors.Is(err, ErrInvalidObservation) {
			t.Errorf("coordinate %v: expected ErrInvalidObservation, got %v", bad, err)
		}
	}
}

func TestNormalize_Handedness(t *testing.T) {
	cases := []struct {
		in   string
		want Handedness
		ok   bool
	}{
		{"Left", Left, true},
		{"right", Right, true},
		{" LEFT ", Left, true},
		{"", "", false},
		{"both", "", false},
	}

	for _, tc := range cases {
		raw := validRaw()
		raw.Handedness = tc.in

		obs, err := Normalize(raw)
		if tc.ok {
			if err != nil {
				t.Errorf("handedness %q: unexpected error %v", tc.in, err)
			} else if obs.Handedness != tc.want {
				t.Errorf("handedness %q: got %q, want %q", tc.in, obs.Handedness, tc.want)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidObservation) {
			t.Errorf("handedness %q: expected ErrInvalidObservation, got %v", tc.in, err)
		}
	}
}

func TestNormalize_LowConfidencePassedThrough(t *testing.T) {
	raw := validRaw()
	raw.Score = 0.1

	obs, err := Normalize(raw)
	if err != nil {
		t.Fatalf("low confidence must not be rejected: %v", err)
	}

	if !obs.LowConfidence(DefaultLowConfidence) {
		t.Error("expected observation to be flagged low confidence")
	}
	if obs.LowConfidence(0.05) {
		t.Error("expected observation to clear a 0.05 threshold")
	}
}

func TestNormalize_ExplicitBoxKept(t *testing.T) {
	raw := validRaw()
	box := BoundingBox{X: 0.1, Y: 0.2, W: 0.5, H: 0.6}
	raw.Box = &box

	obs, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if obs.Box != box {
		t.Errorf("expected box %+v to be kept, got %+v", box, obs.Box)
	}
}

func TestCentered_WristAtOriginUnitReference(t *testing.T) {
	obs, err := Normalize(validRaw())
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	c := obs.Centered()

	if c.Points[Wrist] != (Point3D{}) {
		t.Errorf("expected wrist at origin, got %+v", c.Points[Wrist])
	}

	ref := Distance(Point3D{}, c.Points[MiddleMCP])
	if math.Abs(ref-1.0) > 1e-9 {
		t.Errorf("expected unit reference length, got %f", ref)
	}
}

func TestCentered_DegenerateGeometry(t *testing.T) {
	// All landmarks coincident: reference length is zero.
	var obs HandObservation
	for i := range obs.Points {
		obs.Points[i] = Point3D{X: 0.5, Y: 0.5, Z: 0.5}
	}

	c := obs.Centered()
	for i, p := range c.Points {
		if p != (Point3D{}) {
			t.Fatalf("expected point %d at origin, got %+v", i, p)
		}
	}
}
