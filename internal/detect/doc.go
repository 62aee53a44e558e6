// Package detect implements the secret detection core: an assignment
// extractor built on a swappable Matcher, a dummy-value filter, and a
// classifier that applies entropy thresholds chosen by variable name.
//
// Everything in this package is pure. A Classifier holds no mutable state,
// so one instance may scan any number of texts concurrently.
package detect
