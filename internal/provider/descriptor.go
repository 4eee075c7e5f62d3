package provider

import (
	"fmt"
	"sort"
)

// ID identifies a provider and its credential slot.
type ID string

const (
	DeepSeekID ID = "deepseek"
	QwenID     ID = "qwen"
)

// Output caps in tokens.
const (
	GenerationMaxTokens = 100
	EvaluationMaxTokens = 400
	ValidationMaxTokens = 10
)

// Descriptor is everything that distinguishes one provider from another.
type Descriptor struct {
	ID                    ID
	EndpointURL           string // base URL; the client appends /chat/completions
	Model                 string
	GenerationTemperature float32
	EvaluationTemperature float32
}

// Evaluation runs cooler than generation to keep scores consistent.
var (
	DeepSeek = Descriptor{
		ID:                    DeepSeekID,
		EndpointURL:           "https://api.deepseek.com/v1",
		Model:                 "deepseek-chat",
		GenerationTemperature: 0.7,
		EvaluationTemperature: 0.3,
	}
	Qwen = Descriptor{
		ID:                    QwenID,
		EndpointURL:           "https://router.huggingface.co/v1",
		Model:                 "Qwen/Qwen3-235B-A22B-Instruct-2507:novita",
		GenerationTemperature: 0.7,
		EvaluationTemperature: 0.3,
	}
)

var builtin = map[ID]Descriptor{
	DeepSeekID: DeepSeek,
	QwenID:     Qwen,
}

// Lookup returns the built-in descriptor for id.
func Lookup(id ID) (Descriptor, error) {
	d, ok := builtin[id]
	if !ok {
		return Descriptor{}, fmt.Errorf("unknown provider: %s (available: %v)", id, IDs())
	}
	return d, nil
}

// Descriptors returns all built-in descriptors.
func Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(builtin))
	for _, id := range IDs() {
		out = append(out, builtin[id])
	}
	return out
}

// IDs returns the built-in provider ids in sorted order.
func IDs() []ID {
	ids := make([]ID, 0, len(builtin))
	for id := range builtin {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
