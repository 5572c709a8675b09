package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseMaxAge parses a retention duration string. Accepted forms are a
// number followed by a unit suffix (s, m, h, d) or a bare number, which is
// interpreted as days. Fractional values are allowed ("1.5h").
func ParseMaxAge(value string) (time.Duration, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return 0, fmt.Errorf("retention duration is empty")
	}

	unit := time.Duration(24) * time.Hour
	number := trimmed
	switch trimmed[len(trimmed)-1] {
	case 's':
		unit = time.Second
		number = trimmed[:len(trimmed)-1]
	case 'm':
		unit = time.Minute
		number = trimmed[:len(trimmed)-1]
	case 'h':
		unit = time.Hour
		number = trimmed[:len(trimmed)-1]
	case 'd':
		number = trimmed[:len(trimmed)-1]
	}

	amount, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("retention duration %q: %w", value, err)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("retention duration %q must be positive", value)
	}
	return time.Duration(amount * float64(unit)), nil
}
