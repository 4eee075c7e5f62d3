// Package vocab holds the vocabulary types shared by the sentence
// generation and evaluation pipeline.
package vocab
