package parse

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"codeberg.org/snonux/sentencecraft/internal/vocab"
)

var (
	// ErrNoContent means the reply carried no usable sentence.
	ErrNoContent = errors.New("reply has no sentence content")
	// ErrUnparseable means neither the strict nor the lenient stage could
	// read a score and feedback.
	ErrUnparseable = errors.New("reply is not a valid evaluation")
)

const quoteChars = `"'“”‘’«»`

var (
	scorePattern    = regexp.MustCompile(`(?i)score["\s]*:\s*(\d+)`)
	feedbackPattern = regexp.MustCompile(`(?i)feedback["\s]*:\s*["']([^"']+)["']`)
)

// Sentence extracts a generated sentence, removing one layer of wrapping
// quotes.
func Sentence(content string) (string, error) {
	s := strings.TrimSpace(content)
	s = trimOneQuote(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrNoContent
	}
	return s, nil
}

func trimOneQuote(s string) string {
	if r, size := utf8.DecodeRuneInString(s); size > 0 && strings.ContainsRune(quoteChars, r) {
		s = s[size:]
	}
	if r, size := utf8.DecodeLastRuneInString(s); size > 0 && strings.ContainsRune(quoteChars, r) {
		s = s[:len(s)-size]
	}
	return s
}

// strictReply mirrors the JSON object the evaluation prompt asks for.
type strictReply struct {
	Score    *float64 `json:"score"`
	Feedback *string  `json:"feedback"`
}

// Evaluation parses an evaluation reply.
func Evaluation(content string) (vocab.SentenceEvaluation, error) {
	content = strings.TrimSpace(content)

	if eval, ok := Strict(content); ok {
		return eval, nil
	}
	if eval, ok := Lenient(content); ok {
		return eval, nil
	}
	return vocab.SentenceEvaluation{}, ErrUnparseable
}

// Strict accepts only a JSON object with a numeric score in [1,10] and a
// non-empty string feedback. The score is rounded.
func Strict(content string) (vocab.SentenceEvaluation, bool) {
	var reply strictReply
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return vocab.SentenceEvaluation{}, false
	}
	if reply.Score == nil || reply.Feedback == nil {
		return vocab.SentenceEvaluation{}, false
	}
	score := *reply.Score
	if score < vocab.MinScore || score > vocab.MaxScore {
		return vocab.SentenceEvaluation{}, false
	}
	feedback := strings.TrimSpace(*reply.Feedback)
	if feedback == "" {
		return vocab.SentenceEvaluation{}, false
	}
	return vocab.SentenceEvaluation{Score: vocab.ClampScore(score), Feedback: feedback}, true
}

// Lenient pattern-matches a score and a quoted feedback anywhere in the
// text and clamps the score into range.
func Lenient(content string) (vocab.SentenceEvaluation, bool) {
	scoreMatch := scorePattern.FindStringSubmatch(content)
	feedbackMatch := feedbackPattern.FindStringSubmatch(content)
	if scoreMatch == nil || feedbackMatch == nil {
		return vocab.SentenceEvaluation{}, false
	}

	raw, err := strconv.ParseFloat(scoreMatch[1], 64)
	if err != nil {
		return vocab.SentenceEvaluation{}, false
	}
	feedback := strings.TrimSpace(feedbackMatch[1])
	if feedback == "" {
		return vocab.SentenceEvaluation{}, false
	}
	return vocab.SentenceEvaluation{Score: vocab.ClampScore(raw), Feedback: feedback}, true
}
