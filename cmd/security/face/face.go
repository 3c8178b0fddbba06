package face

import (
	"math"
)

// DescriptorLength is the embedding size produced by the face model.
// Any other length is a fatal input error and must never be stored.
const DescriptorLength = 128

// Distance returns the Euclidean (L2) distance between two equal-length
// descriptors.
//
// Returns ErrLengthMismatch when len(a) != len(b), and ErrInvalidElement
// when either vector contains a NaN or Inf element.
func Distance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrLengthMismatch
	}

	var sum float64
	for i := range a {
		if !isFinite(a[i]) || !isFinite(b[i]) {
			return 0, ErrInvalidElement
		}
		d := a[i] - b[i]
		sum += d * d
	}

	return math.Sqrt(sum), nil
}

// Similar reports whether a and b belong to the same face under the
// configured threshold: Distance(a, b) < threshold.
func (c Config) Similar(a, b []float64) (bool, error) {
	d, err := Distance(a, b)
	if err != nil {
		return false, err
	}
	return d < c.Threshold, nil
}

// ValidateDescriptor checks descriptor integrity before it is compared or
// stored: exact length and finite elements.
func ValidateDescriptor(d []float64) error {
	if len(d) != DescriptorLength {
		return ErrLengthMismatch
	}
	for _, v := range d {
		if !isFinite(v) {
			return ErrInvalidElement
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
