package face

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultThreshold matches the calibration of the 128-dimension face-api
// style embeddings the reference model produces.
const DefaultThreshold = 0.6

// Config controls the similarity decision.
type Config struct {
	// Threshold is the maximum Euclidean distance between two descriptors
	// for them to be considered the same face.
	Threshold float64
}

// DefaultConfig returns the baseline comparison config.
func DefaultConfig() Config {
	return Config{Threshold: DefaultThreshold}
}

// FromEnv loads config from environment variables.
//
// Env surface:
// - FACEGATE_FACE_MATCH_THRESHOLD (float, exclusive range (0, 2])
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv("FACEGATE_FACE_MATCH_THRESHOLD"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return Config{}, fmt.Errorf("FACEGATE_FACE_MATCH_THRESHOLD: not a float")
		}
		// Descriptors are unit-scale embeddings; a threshold beyond 2.0
		// would accept essentially any pair.
		if f <= 0 || f > 2 {
			return Config{}, fmt.Errorf("FACEGATE_FACE_MATCH_THRESHOLD: out of range (0..2]")
		}
		cfg.Threshold = f
	}

	return cfg, nil
}
