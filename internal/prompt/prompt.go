package prompt

import (
	"strings"
	"text/template"

	"codeberg.org/snonux/sentencecraft/internal/vocab"
)

// Validation is the minimal prompt used to check a token.
const Validation = "Hello"

// Criterion is one weighted rubric line.
type Criterion struct {
	Name        string
	Weight      int
	Description string
}

// Rubric is the fixed evaluation rubric. Weights add up to 100.
var Rubric = []Criterion{
	{Name: "Grammatical correctness", Weight: 30, Description: "sentence structure, tense, voice and subject-verb agreement are correct"},
	{Name: "Use of the target word", Weight: 30, Description: "the target word is used correctly and naturally, with the right part of speech and context"},
	{Name: "Naturalness and fluency", Weight: 25, Description: "the sentence sounds like idiomatic English and reads fluently"},
	{Name: "Vocabulary and structure", Weight: 15, Description: "word choice is appropriate and the sentence structure shows some variety"},
}

var generationTmpl = template.Must(template.New("generation").Parse(
	`Generate a simple, classic, interesting, and commonly used English sentence using the word "{{.Word}}". The sentence should be:
1. Easy to understand for a language learner
2. Natural and commonly used in daily life
3. Not too complex or academic
4. Around 8-15 words long
5. Show the word in context clearly

Please only return the sentence, nothing else.`))

var evaluationTmpl = template.Must(template.New("evaluation").Parse(
	`Evaluate the following sentence written by an English learner. The target word they had to use is "{{.Word}}".

Learner's sentence: "{{.Sentence}}"

Provide:
1. A score from 1 to 10 (10 is best)
2. Detailed feedback written in {{.Language}}

Scoring rubric:
{{range .Rubric}}- {{.Name}} ({{.Weight}}%): {{.Description}}
{{end}}
Reply with a JSON object in exactly this format and nothing else:
{
  "score": <number from 1 to 10>,
  "feedback": "<feedback in {{.Language}} covering: 1. overall assessment 2. strengths 3. what to improve 4. a suggestion>"
}

Keep the feedback encouraging and specific so the learner can improve.`))

// Generation returns the prompt asking for one example sentence for word.
func Generation(word string) string {
	return render(generationTmpl, struct{ Word string }{Word: word})
}

// Evaluation returns the rubric prompt for a learner's sentence, asking for
// feedback in lang.
func Evaluation(word, sentence string, lang vocab.Language) string {
	return render(evaluationTmpl, struct {
		Word     string
		Sentence string
		Language string
		Rubric   []Criterion
	}{
		Word:     word,
		Sentence: sentence,
		Language: lang.Name(),
		Rubric:   Rubric,
	})
}

func render(t *template.Template, data any) string {
	var b strings.Builder
	// Templates are parsed at init and only take string fields.
	if err := t.Execute(&b, data); err != nil {
		panic(err)
	}
	return b.String()
}
