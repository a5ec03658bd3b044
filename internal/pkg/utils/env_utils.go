package utils

import "os"

// GetEnv returns the environment variable key, or defaultValue when it is unset or empty.
func GetEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return defaultValue
}
