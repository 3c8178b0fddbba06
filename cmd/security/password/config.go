package password

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
// 12 rounds is the reference calibration; it is a policy knob relative to
// the hashing primitive, not an invariant.
const DefaultCost = 12

// Config is the single configuration surface for this package.
type Config struct {
	// Cost is the bcrypt work factor applied by Hash.
	Cost int
}

// DefaultConfig returns a strong baseline suitable for interactive logins.
func DefaultConfig() Config {
	return Config{Cost: DefaultCost}
}

// FromEnv loads config from environment variables.
//
// Env surface:
// - FACEGATE_BCRYPT_COST (int, bcrypt.MinCost..bcrypt.MaxCost)
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv("FACEGATE_BCRYPT_COST"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("FACEGATE_BCRYPT_COST: not an integer")
		}
		if n < bcrypt.MinCost || n > bcrypt.MaxCost {
			return Config{}, fmt.Errorf("FACEGATE_BCRYPT_COST: out of range [%d..%d]", bcrypt.MinCost, bcrypt.MaxCost)
		}
		cfg.Cost = n
	}

	return cfg, nil
}
