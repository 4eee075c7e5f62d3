package vocab

import (
	"fmt"
	"math"
	"strings"
)

const (
	MinScore = 1
	MaxScore = 10
)

// Word is a vocabulary entry. A non-empty Sentence is cached output and is
// never replaced by the pipeline.
type Word struct {
	Name     string `json:"name" yaml:"name"`
	Sentence string `json:"sentence,omitempty" yaml:"sentence,omitempty"`
}

// HasSentence reports whether the word already carries a cached sentence.
func (w Word) HasSentence() bool {
	return strings.TrimSpace(w.Sentence) != ""
}

// SentenceEvaluation is the score and review of a learner's sentence.
type SentenceEvaluation struct {
	Score    int    `json:"score" yaml:"score"`
	Feedback string `json:"feedback" yaml:"feedback"`
}

// ClampScore rounds a raw score to the nearest integer and clamps it to
// [MinScore, MaxScore].
func ClampScore(raw float64) int {
	if math.IsNaN(raw) {
		return MinScore
	}
	score := math.Round(raw)
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return int(score)
}

// Language is the interface language used for evaluation feedback.
type Language string

const (
	English Language = "en"
	Chinese Language = "zh"
)

// Name returns the language name as it should appear in a prompt.
func (l Language) Name() string {
	switch l {
	case Chinese:
		return "Simplified Chinese"
	default:
		return "English"
	}
}

// ParseLanguage maps a language code to a Language.
func ParseLanguage(code string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "", "en", "english":
		return English, nil
	case "zh", "zh-cn", "chinese":
		return Chinese, nil
	default:
		return "", fmt.Errorf("unsupported language: %s", code)
	}
}
