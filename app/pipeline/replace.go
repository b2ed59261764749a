package pipeline

import (
	"fmt"
	"regexp"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

// LiteralPattern is a compiled find-and-replace rule whose find text always
// matches literally. Construction escapes the find text, so user input never
// reaches the regexp compiler unescaped.
type LiteralPattern struct {
	re          *regexp.Regexp
	replacement string
}

func NewLiteralPattern(find, replace string, caseSensitive bool) (*LiteralPattern, error) {
	if find == "" {
		return nil, news.ErrEmptyFindText
	}

	expr := regexp.QuoteMeta(find)
	if !caseSensitive {
		expr = "(?i)" + expr
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to compile pattern %q: %w", find, err)
	}

	return &LiteralPattern{re: re, replacement: replace}, nil
}

// Apply replaces every occurrence of the find text. The replacement is
// inserted verbatim, so "$1" stays "$1".
func (p *LiteralPattern) Apply(s string) string {
	return p.re.ReplaceAllLiteralString(s, p.replacement)
}

// CompilePatterns turns stored patterns into literal patterns, keeping list
// order. Patterns with empty find text are skipped.
func CompilePatterns(patterns []news.ReplacementPattern) []*LiteralPattern {
	compiled := make([]*LiteralPattern, 0, len(patterns))
	for _, p := range patterns {
		lp, err := NewLiteralPattern(p.FindText, p.ReplaceText, p.CaseSensitive)
		if err != nil {
			continue
		}
		compiled = append(compiled, lp)
	}
	return compiled
}

// ApplyAll runs patterns in order, each on the output of the previous one.
func ApplyAll(s string, patterns []*LiteralPattern) string {
	for _, p := range patterns {
		s = p.Apply(s)
	}
	return s
}
