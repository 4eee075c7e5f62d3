// Package coach is the entry point of the sentence pipeline. A Coach picks
// the requested provider, calls it, and on any failure answers from the
// local fallback instead, so generation and evaluation always produce a
// result.
package coach
