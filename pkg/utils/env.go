package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func GetEnvTrimmed(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func GetEnvTrimmedOrDefault(key, defaultValue string) string {
	if v := GetEnvTrimmed(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool returns defaultValue when the variable is unset or not a valid bool.
func GetEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(GetEnvTrimmed(key))
	if err != nil {
		return defaultValue
	}
	return b
}

// GetEnvInt returns defaultValue when the variable is unset, unparsable or below min.
func GetEnvInt(key string, defaultValue, min int) int {
	n, err := strconv.Atoi(GetEnvTrimmed(key))
	if err != nil || n < min {
		return defaultValue
	}
	return n
}

// GetEnvDuration accepts Go duration strings ("30s", "1m") and ignores non-positive values.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(GetEnvTrimmed(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
