// Package sentinel provides the command-line interface for entropy-sentinel.
// It wires subcommands (scan, watch, vault, entropy, baseline, config,
// history, completion), parses flags, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/entropy-sentinel/sentinel/cmd/sentinel"
//	func main() { sentinel.Execute() }
package sentinel
