// Package processor contains the application logic behind the command line.
// It wires the token store, provider clients, metrics and logger into a
// coach and runs the generate, evaluate, batch, token and model-listing
// flows on it, rendering results as text, JSON or YAML.
package processor
