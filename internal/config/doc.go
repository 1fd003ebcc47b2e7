// Package config provides layered configuration for the lode CLI.
//
// Configuration is assembled from three sources, lowest to highest
// precedence:
//   - built-in defaults
//   - an optional config.yaml or config.toml under the user root
//   - LODE_* environment variables
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("user repository at %s\n", cfg.UserRoot)
//
// Environment Variables:
//   - LODE_USER_ROOT, LODE_SYSTEM_ROOT
//   - LODE_SEARCH_PATHS, LODE_HASH_IGNORE
//   - LODE_LOG_LEVEL, LODE_LOG_DEV
package config
