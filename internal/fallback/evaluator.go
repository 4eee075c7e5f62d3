package fallback

import (
	"strings"
	"unicode/utf8"

	"codeberg.org/snonux/sentencecraft/internal/vocab"
)

const baseScore = 5

type feedbackText struct {
	wordUsed   string
	goodLength string
	complete   string
	generic    string
}

var feedbackTexts = map[vocab.Language]feedbackText{
	vocab.English: {
		wordUsed:   "Well done, you used the target word correctly. ",
		goodLength: "The sentence has a good length. ",
		complete:   "The sentence is structurally complete.",
		generic:    "Nice effort! Keep practicing and your sentences will keep getting better!",
	},
	vocab.Chinese: {
		wordUsed:   "很好，正确使用了目标单词。",
		goodLength: "句子长度适中。",
		complete:   "句子结构完整。",
		generic:    "您的造句不错，继续练习会越来越好！",
	},
}

// Evaluator scores a sentence with fixed heuristics.
type Evaluator struct {
	lang vocab.Language
}

// NewEvaluator creates an evaluator writing feedback in lang.
func NewEvaluator(lang vocab.Language) *Evaluator {
	if _, ok := feedbackTexts[lang]; !ok {
		lang = vocab.English
	}
	return &Evaluator{lang: lang}
}

// Evaluate scores sentence against word:
// base 5, +2 if the word appears (case-insensitive) else -2, +1 for a
// trimmed length between 11 and 99 characters, +1 for closing punctuation.
func (e *Evaluator) Evaluate(word, sentence string) vocab.SentenceEvaluation {
	text := feedbackTexts[e.lang]
	trimmed := strings.TrimSpace(sentence)

	score := baseScore
	var feedback strings.Builder

	if strings.Contains(strings.ToLower(sentence), strings.ToLower(word)) {
		score += 2
		feedback.WriteString(text.wordUsed)
	} else {
		score -= 2
	}

	if n := utf8.RuneCountInString(trimmed); n > 10 && n < 100 {
		score++
		feedback.WriteString(text.goodLength)
	}

	if strings.HasSuffix(trimmed, ".") || strings.HasSuffix(trimmed, "!") || strings.HasSuffix(trimmed, "?") {
		score++
		feedback.WriteString(text.complete)
	}

	msg := strings.TrimSpace(feedback.String())
	if msg == "" {
		msg = text.generic
	}

	return vocab.SentenceEvaluation{
		Score:    vocab.ClampScore(float64(score)),
		Feedback: msg,
	}
}
