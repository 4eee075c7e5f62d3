package vocab

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampScore(t *testing.T) {
	tests := []struct {
		raw  float64
		want int
	}{
		{raw: 0, want: 1},
		{raw: -3, want: 1},
		{raw: 1, want: 1},
		{raw: 4.4, want: 4},
		{raw: 4.5, want: 5},
		{raw: 9.6, want: 10},
		{raw: 11, want: 10},
		{raw: math.NaN(), want: 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampScore(tt.raw), "ClampScore(%v)", tt.raw)
	}
}

func TestWordHasSentence(t *testing.T) {
	assert.False(t, Word{Name: "apple"}.HasSentence())
	assert.False(t, Word{Name: "apple", Sentence: "   "}.HasSentence())
	assert.True(t, Word{Name: "apple", Sentence: "I like apples."}.HasSentence())
}

func TestParseLanguage(t *testing.T) {
	lang, err := ParseLanguage("")
	require.NoError(t, err)
	assert.Equal(t, English, lang)

	lang, err = ParseLanguage("ZH")
	require.NoError(t, err)
	assert.Equal(t, Chinese, lang)
	assert.Equal(t, "Simplified Chinese", lang.Name())

	_, err = ParseLanguage("klingon")
	assert.Error(t, err)
}
