// Package core provides a small, stable facade over entropy-sentinel's
// internal packages for editor integrations and other tools. It re-exports
// a narrow API surface so callers can depend on a stable import path
// without importing internal packages.
//
// Example:
//
//	for _, f := range core.Scan(source) {
//		fmt.Println(f.Kind, f.Name, f.Range.Start, f.Range.End)
//	}
//
//	rescan := core.Debounce(func() { publish(core.Scan(read())) }, 500*time.Millisecond)
//	onEdit(rescan)
package core
