package conf

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// ParseBool accepts the spellings users type into the shell.
func ParseBool(s string) (bool, error) {
	switch s {
	case "1", "t", "y", "true", "yes", "on":
		return true, nil
	case "0", "f", "n", "false", "no", "off":
		return false, nil
	}
	return false, errors.New("Unrecognized boolean value")
}

// FormatBool is the stored form of a boolean.
func FormatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// ParseInt parses a non-negative decimal that fits in 32 bits.
func ParseInt(s string) (int, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 || v > math.MaxInt32 {
		return 0, errors.New("Invalid number")
	}
	return int(v), nil
}

// ParseIntRange is ParseInt restricted to [min, max].
func ParseIntRange(s string, min, max int) (int, error) {
	v, err := ParseInt(s)
	if err != nil {
		return 0, err
	}
	if v < min || v > max {
		return 0, errors.Errorf("Value must be between %d and %d", min, max)
	}
	return v, nil
}
