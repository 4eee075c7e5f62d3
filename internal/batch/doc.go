// Package batch reads vocabulary word lists and writes generated sentences
// back in the same line format.
package batch
