package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

func TestLiteralPattern(t *testing.T) {
	tests := []struct {
		name          string
		find          string
		replace       string
		caseSensitive bool
		input         string
		want          string
	}{
		{"case insensitive", "bad", "good", false, "Bad news, BAD day", "good news, good day"},
		{"case sensitive", "Bad", "good", true, "Bad news, bad day", "good news, bad day"},
		{"regex metacharacters are literal", "c++ (beta)", "Go", false, "Learn C++ (beta) now", "Learn Go now"},
		{"dot is literal", "a.b", "x", false, "a.b axb", "x axb"},
		{"replacement is literal", "price", "$1", false, "price drop", "$1 drop"},
		{"no match", "zzz", "y", false, "nothing here", "nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewLiteralPattern(tt.find, tt.replace, tt.caseSensitive)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Apply(tt.input))
		})
	}
}

func TestLiteralPattern_EmptyFind(t *testing.T) {
	_, err := NewLiteralPattern("", "x", false)
	assert.ErrorIs(t, err, news.ErrEmptyFindText)
}

func TestLiteralPattern_PathologicalInput(t *testing.T) {
	p, err := NewLiteralPattern("(a+)+$", "safe", false)
	require.NoError(t, err)
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaab", p.Apply("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaab"))
	assert.Equal(t, "x safe", p.Apply("x (a+)+$"))
}

func TestApplyAll_OrderMatters(t *testing.T) {
	patterns := CompilePatterns([]news.ReplacementPattern{
		{FindText: "cat", ReplaceText: "dog"},
		{FindText: "dog", ReplaceText: "wolf"},
		{FindText: "", ReplaceText: "ignored"},
	})
	require.Len(t, patterns, 2)

	assert.Equal(t, "wolf and wolf", ApplyAll("cat and dog", patterns))
}

func TestApplyAll_IdempotentOnDisjointPatterns(t *testing.T) {
	patterns := CompilePatterns([]news.ReplacementPattern{
		{FindText: "gloomy", ReplaceText: "sunny"},
		{FindText: "crisis", ReplaceText: "challenge", CaseSensitive: true},
	})

	inputs := []string{
		"A gloomy crisis unfolds",
		"GLOOMY weather, Crisis averted",
		"nothing to change",
	}
	for _, in := range inputs {
		once := ApplyAll(in, patterns)
		assert.Equal(t, once, ApplyAll(once, patterns), in)
	}
}
