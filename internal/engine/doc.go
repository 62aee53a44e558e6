// Package engine runs the detection core over files: it selects targets
// under a root, reads them, scans them with a bounded worker pool, converts
// byte ranges into line/column positions, and reuses cached results for
// unchanged files. External consumers should use pkg/core.
package engine
