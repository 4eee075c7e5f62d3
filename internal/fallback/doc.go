// Package fallback produces sentences and evaluations locally, without a
// provider, so the pipeline always has a result to return.
package fallback
