// Package prompt builds the instruction text sent to a provider for
// sentence generation and for rubric-based sentence evaluation.
package prompt
