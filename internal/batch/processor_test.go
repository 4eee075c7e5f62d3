package batch

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"codeberg.org/snonux/sentencecraft/internal/vocab"
)

func TestReadBatchFile(t *testing.T) {
	tests := []struct {
		name        string
		fileContent string
		want        []vocab.Word
	}{
		{
			name:        "empty file",
			fileContent: "",
			want:        nil,
		},
		{
			name:        "only whitespace",
			fileContent: "   \n\t\r\n   ",
			want:        nil,
		},
		{
			name: "words only",
			fileContent: `apple
river
borrow`,
			want: []vocab.Word{
				{Name: "apple"},
				{Name: "river"},
				{Name: "borrow"},
			},
		},
		{
			name: "mixed format",
			fileContent: `apple = I eat an apple every day.
river
borrow = Can I borrow your pen?`,
			want: []vocab.Word{
				{Name: "apple", Sentence: "I eat an apple every day."},
				{Name: "river"},
				{Name: "borrow", Sentence: "Can I borrow your pen?"},
			},
		},
		{
			name: "comments and blank lines",
			fileContent: `
# week 3
apple

  river  
`,
			want: []vocab.Word{
				{Name: "apple"},
				{Name: "river"},
			},
		},
		{
			name:        "windows line endings",
			fileContent: "apple\r\nriver = The river is wide.\r\nborrow",
			want: []vocab.Word{
				{Name: "apple"},
				{Name: "river", Sentence: "The river is wide."},
				{Name: "borrow"},
			},
		},
		{
			name:        "multiple equals signs",
			fileContent: `equal = One plus one = two.`,
			want: []vocab.Word{
				{Name: "equal", Sentence: "One plus one = two."},
			},
		},
		{
			name:        "empty sentence part",
			fileContent: "apple =   ",
			want: []vocab.Word{
				{Name: "apple"},
			},
		},
		{
			name:        "sentence without word is skipped",
			fileContent: "= orphan sentence",
			want:        nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpFile := filepath.Join(t.TempDir(), "words.txt")
			if err := os.WriteFile(tmpFile, []byte(tt.fileContent), 0644); err != nil {
				t.Fatalf("Failed to create test file: %v", err)
			}

			got, err := ReadBatchFile(tmpFile)
			if err != nil {
				t.Fatalf("ReadBatchFile() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadBatchFile() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestReadBatchFile_Missing(t *testing.T) {
	_, err := ReadBatchFile(filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestWriteResults(t *testing.T) {
	var buf bytes.Buffer
	err := WriteResults(&buf, []Result{
		{Word: "apple", Sentence: "I eat an apple every day.", Cached: true},
		{Word: "river", Sentence: "The river is wide."},
	})
	if err != nil {
		t.Fatalf("WriteResults() error = %v", err)
	}

	want := "apple = I eat an apple every day.\nriver = The river is wide.\n"
	if buf.String() != want {
		t.Errorf("WriteResults() = %q, want %q", buf.String(), want)
	}
}

func TestWriteThenRead(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResults(&buf, []Result{{Word: "apple", Sentence: "Apples are red."}}); err != nil {
		t.Fatal(err)
	}

	words, err := ReadWords(&buf)
	if err != nil {
		t.Fatal(err)
	}
	want := []vocab.Word{{Name: "apple", Sentence: "Apples are red."}}
	if !reflect.DeepEqual(words, want) {
		t.Errorf("ReadWords() = %#v, want %#v", words, want)
	}
}
