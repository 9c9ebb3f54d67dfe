// Package file provides a file-based implementation of the config store port.
// Configuration is persisted as TOML on the local filesystem and nested
// tables are flattened into dot-notation keys.
package file
