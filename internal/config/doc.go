// Package config loads entropy-sentinel configuration from local and global
// YAML files. CLI code resolves precedence (CLI > local > global) and maps
// the result into engine and detection settings.
package config
