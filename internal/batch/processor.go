package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"codeberg.org/snonux/sentencecraft/internal/vocab"
)

// Result pairs a word with the sentence produced for it.
type Result struct {
	Word     string `json:"word" yaml:"word"`
	Sentence string `json:"sentence" yaml:"sentence"`
	Cached   bool   `json:"cached" yaml:"cached"`
}

// ReadBatchFile reads words from a file.
// Supports formats:
// - Word only: "apple" (a sentence will be generated)
// - With cached sentence: "apple = I eat an apple every day." (kept as is)
// Blank lines and lines starting with '#' are skipped.
func ReadBatchFile(filename string) ([]vocab.Word, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	defer f.Close()

	words, err := ReadWords(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return words, nil
}

// ReadWords parses word list lines from r.
func ReadWords(r io.Reader) ([]vocab.Word, error) {
	var words []vocab.Word

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, sentence, _ := strings.Cut(line, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			// "= sentence" has no word to attach to
			continue
		}
		words = append(words, vocab.Word{
			Name:     name,
			Sentence: strings.TrimSpace(sentence),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return words, nil
}

// WriteResults writes results as "word = sentence" lines.
func WriteResults(w io.Writer, results []Result) error {
	bw := bufio.NewWriter(w)
	for _, r := range results {
		if _, err := fmt.Fprintf(bw, "%s = %s\n", r.Word, r.Sentence); err != nil {
			return err
		}
	}
	return bw.Flush()
}
