package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"codeberg.org/snonux/sentencecraft/internal/vocab"
)

func TestGeneration(t *testing.T) {
	p := Generation("apple")

	assert.Contains(t, p, `using the word "apple"`)
	assert.Contains(t, p, "8-15 words")
	assert.Contains(t, p, "only return the sentence")
}

func TestEvaluation(t *testing.T) {
	p := Evaluation("apple", "I eat an apple every day.", vocab.Chinese)

	assert.Contains(t, p, `target word they had to use is "apple"`)
	assert.Contains(t, p, `"I eat an apple every day."`)
	assert.Contains(t, p, "Simplified Chinese")
	assert.Contains(t, p, `"score"`)
	assert.Contains(t, p, `"feedback"`)

	for _, c := range Rubric {
		assert.Contains(t, p, c.Name)
	}
	assert.Contains(t, p, "(30%)")
	assert.Contains(t, p, "(25%)")
	assert.Contains(t, p, "(15%)")
}

func TestRubricWeights(t *testing.T) {
	total := 0
	for _, c := range Rubric {
		total += c.Weight
	}
	assert.Equal(t, 100, total)
}
