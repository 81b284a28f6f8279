package pkg

import (
	"fmt"
	"os"
	"strconv"
)

// Getenv returns the value of key, or defaultValue when key is not set at all.
// An empty but set value is returned as is.
func Getenv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// GetenvUint64 is Getenv for unsigned integers such as chain ids.
func GetenvUint64(key string, defaultValue uint64) (uint64, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
