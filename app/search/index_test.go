package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	require.NoError(t, idx.Index(context.Background(), []news.Article{
		{ID: 1, Title: "Solar farm powers village", Summary: "Clean energy arrives", Source: "Good News", Keywords: []string{"renewables"}},
		{ID: 2, Title: "Library reopens", Summary: "Books and solar panels on the roof", Source: "City Desk", Category: "community"},
		{ID: 3, Title: "Dog rescued from river", Summary: "Firefighters help", Source: "Daily Smile"},
	}))
	return idx
}

func TestIndexSearch(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	ids, err := idx.Search(ctx, "solar", 10)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, int64(1), ids[0], "title matches rank above summary matches")

	ids, err = idx.Search(ctx, "renewables", 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)

	ids, err = idx.Search(ctx, "resc", 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids, "prefixes match titles")

	ids, err = idx.Search(ctx, "community", 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)
}

func TestIndexSearchShortQuery(t *testing.T) {
	idx := newTestIndex(t)

	ids, err := idx.Search(context.Background(), " a ", 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestIndexReplacesDocuments(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Index(ctx, []news.Article{{ID: 3, Title: "Cat adopted", Summary: "Happy ending"}}))

	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	ids, err := idx.Search(ctx, "rescued", 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
