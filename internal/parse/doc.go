// Package parse turns a provider's reply text into a generated sentence or a
// sentence evaluation. Evaluations are parsed strictly as JSON first and,
// failing that, leniently with patterns over the raw text.
package parse
