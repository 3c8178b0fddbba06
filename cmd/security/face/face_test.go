package face

import (
	"math"
	"testing"
)

func testDescriptor(seed float64) []float64 {
	d := make([]float64, DescriptorLength)
	for i := range d {
		d[i] = seed + float64(i)*0.001
	}
	return d
}

func TestDistance_SelfIsZero(t *testing.T) {
	a := testDescriptor(0.25)

	d, err := Distance(a, a)
	if err != nil {
		t.Fatalf("Distance error: %v", err)
	}
	if d != 0 {
		t.Fatalf("expected zero self-distance, got %v", d)
	}

	ok, err := DefaultConfig().Similar(a, a)
	if err != nil {
		t.Fatalf("Similar error: %v", err)
	}
	if !ok {
		t.Fatalf("expected a descriptor to match itself")
	}
}

func TestDistance_Symmetry(t *testing.T) {
	a := testDescriptor(0.1)
	b := testDescriptor(-0.3)

	ab, err := Distance(a, b)
	if err != nil {
		t.Fatalf("Distance(a,b) error: %v", err)
	}
	ba, err := Distance(b, a)
	if err != nil {
		t.Fatalf("Distance(b,a) error: %v", err)
	}
	if ab != ba {
		t.Fatalf("expected symmetric distance, got %v vs %v", ab, ba)
	}
}

func TestDistance_KnownValue(t *testing.T) {
	a := make([]float64, 4)
	b := []float64{3, 4, 0, 0}

	d, err := Distance(a, b)
	if err != nil {
		t.Fatalf("Distance error: %v", err)
	}
	if d != 5 {
		t.Fatalf("expected 5, got %v", d)
	}
}

func TestDistance_LengthMismatch(t *testing.T) {
	a := testDescriptor(0)
	b := make([]float64, DescriptorLength-1)

	if _, err := Distance(a, b); err != ErrLengthMismatch {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	if _, err := DefaultConfig().Similar(a, b); err != ErrLengthMismatch {
		t.Fatalf("expected ErrLengthMismatch from Similar, got %v", err)
	}
}

func TestDistance_NonFiniteElement(t *testing.T) {
	a := testDescriptor(0)
	b := testDescriptor(0)
	b[17] = math.NaN()

	if _, err := Distance(a, b); err != ErrInvalidElement {
		t.Fatalf("expected ErrInvalidElement, got %v", err)
	}

	b[17] = math.Inf(1)
	if _, err := Distance(a, b); err != ErrInvalidElement {
		t.Fatalf("expected ErrInvalidElement for Inf, got %v", err)
	}
}

func TestSimilar_ThresholdBoundary(t *testing.T) {
	a := make([]float64, DescriptorLength)
	b := make([]float64, DescriptorLength)
	// Distance is exactly 0.6: strict less-than must reject.
	b[0] = 0.6

	cfg := DefaultConfig()
	ok, err := cfg.Similar(a, b)
	if err != nil {
		t.Fatalf("Similar error: %v", err)
	}
	if ok {
		t.Fatalf("distance equal to threshold must not match")
	}

	b[0] = 0.59
	ok, err = cfg.Similar(a, b)
	if err != nil {
		t.Fatalf("Similar error: %v", err)
	}
	if !ok {
		t.Fatalf("distance below threshold must match")
	}
}

func TestValidateDescriptor(t *testing.T) {
	if err := ValidateDescriptor(testDescriptor(0)); err != nil {
		t.Fatalf("expected valid descriptor, got %v", err)
	}
	if err := ValidateDescriptor(make([]float64, 64)); err != ErrLengthMismatch {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}

	d := testDescriptor(0)
	d[0] = math.NaN()
	if err := ValidateDescriptor(d); err != ErrInvalidElement {
		t.Fatalf("expected ErrInvalidElement, got %v", err)
	}
}

func TestFromEnv_ThresholdOverride(t *testing.T) {
	t.Setenv("FACEGATE_FACE_MATCH_THRESHOLD", "0.45")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv error: %v", err)
	}
	if cfg.Threshold != 0.45 {
		t.Fatalf("expected 0.45, got %v", cfg.Threshold)
	}
}

func TestFromEnv_RejectsBadThreshold(t *testing.T) {
	for _, v := range []string{"0", "-1", "abc", "3.5"} {
		t.Setenv("FACEGATE_FACE_MATCH_THRESHOLD", v)
		if _, err := FromEnv(); err == nil {
			t.Fatalf("expected error for threshold %q", v)
		}
	}
}
