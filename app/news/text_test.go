package news

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWords(t *testing.T) {
	assert.Equal(t, []string{"hello", "world", "ai", "2024"}, Words("Hello, WORLD! AI-2024"))
	assert.Empty(t, Words("  ...  "))
}

func TestWordSet(t *testing.T) {
	set := WordSet("The quick brown fox jumps over the lazy dog", 3)
	assert.Len(t, set, 5)
	assert.Contains(t, set, "quick")
	assert.Contains(t, set, "lazy")
	assert.NotContains(t, set, "fox")
}

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("Global RECESSION fears", "recession"))
	assert.False(t, ContainsFold("Markets rally", "recession"))
	assert.False(t, ContainsFold("anything", "   "))
}

func TestReadTime(t *testing.T) {
	assert.Equal(t, 1, ReadTime("short"))

	long := ""
	for i := 0; i < 450; i++ {
		long += "word "
	}
	assert.Equal(t, 2, ReadTime(long))
}

func TestArticleJSON(t *testing.T) {
	a := Article{ID: 3, Title: "t", Curation: CurationTopFive}
	data, err := json.Marshal(FilteredArticle{Article: a, PriorityScore: 2})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, true, out["isTopFive"])
	assert.Equal(t, false, out["isCurated"])
	assert.Equal(t, float64(2), out["priorityScore"])
	assert.Equal(t, []any{}, out["keywords"])
}

func TestParseKeywordType(t *testing.T) {
	kt, err := ParseKeywordType("blocked")
	require.NoError(t, err)
	assert.Equal(t, KeywordBlocked, kt)

	_, err = ParseKeywordType("boosted")
	assert.ErrorIs(t, err, ErrInvalidKeywordType)
}
