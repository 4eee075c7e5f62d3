package fallback

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Placeholder is replaced with the target word in a template.
const Placeholder = "{word}"

// Templates are the sentences the generator picks from.
var Templates = []string{
	"I need to {word} this task today.",
	"The {word} is very important.",
	"Can you {word} this for me?",
	"This {word} looks interesting.",
	"We should {word} more often.",
}

// Rand is the randomness the generator draws from.
type Rand interface {
	Intn(n int) int
}

// Generator fills a randomly chosen template with the target word.
type Generator struct {
	mu  sync.Mutex
	rnd Rand
}

// NewGenerator creates a generator drawing from rnd.
func NewGenerator(rnd Rand) *Generator {
	return &Generator{rnd: rnd}
}

// NewSeededGenerator creates a generator with a math/rand source seeded
// with seed.
func NewSeededGenerator(seed int64) *Generator {
	return NewGenerator(rand.New(rand.NewSource(seed)))
}

// NewTimeSeededGenerator seeds from the current time.
func NewTimeSeededGenerator() *Generator {
	return NewSeededGenerator(time.Now().UnixNano())
}

// Generate returns a sentence containing word.
func (g *Generator) Generate(word string) string {
	g.mu.Lock()
	i := g.rnd.Intn(len(Templates))
	g.mu.Unlock()

	return strings.Replace(Templates[i], Placeholder, word, 1)
}
