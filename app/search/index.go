package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Index is an in-memory full text index over stored articles. It is rebuilt
// from the database on startup and fed new articles after each ingest.
type Index struct {
	idx bleve.Index
}

func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}
	return &Index{idx: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	text := func() *mapping.FieldMapping {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = standard.Name
		f.Store = false
		return f
	}

	dm.AddFieldMappingsAt("title", text())
	dm.AddFieldMappingsAt("summary", text())
	dm.AddFieldMappingsAt("source", text())
	dm.AddFieldMappingsAt("category", text())
	dm.AddFieldMappingsAt("keywords", text())

	im.DefaultMapping = dm
	return im
}

func (i *Index) Close() error {
	return i.idx.Close()
}

// Index adds or replaces the given articles.
func (i *Index) Index(ctx context.Context, articles []news.Article) error {
	batch := i.idx.NewBatch()
	for _, a := range articles {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := batch.Index(docID(a.ID), document(a)); err != nil {
			return fmt.Errorf("failed to index article %d: %w", a.ID, err)
		}
	}
	if err := i.idx.Batch(batch); err != nil {
		return fmt.Errorf("failed to apply index batch: %w", err)
	}
	return nil
}

// Search returns the ids of the best matching articles, best first. Queries
// shorter than two characters match nothing.
func (i *Index) Search(ctx context.Context, query string, limit int) ([]int64, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []int64{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	var qs []bleveQuery.Query
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		qs = append(qs,
			fieldQuery(bleve.NewMatchQuery(tok), "title", 4.0),
			fieldQuery(bleve.NewPrefixQuery(tok), "title", 3.0),
			fieldQuery(bleve.NewMatchQuery(tok), "keywords", 3.0),
			fieldQuery(bleve.NewMatchQuery(tok), "summary", 2.0),
			fieldQuery(bleve.NewPrefixQuery(tok), "summary", 1.5),
			fieldQuery(bleve.NewMatchQuery(tok), "source", 1.0),
			fieldQuery(bleve.NewMatchQuery(tok), "category", 1.0),
		)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	res, err := i.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search articles: %w", err)
	}

	ids := make([]int64, 0, len(res.Hits))
	for _, h := range res.Hits {
		id, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// DocCount reports the number of indexed articles.
func (i *Index) DocCount() (uint64, error) {
	return i.idx.DocCount()
}

type boostable interface {
	bleveQuery.Query
	SetField(string)
	SetBoost(float64)
}

func fieldQuery(q boostable, field string, boost float64) bleveQuery.Query {
	q.SetField(field)
	q.SetBoost(boost)
	return q
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func document(a news.Article) map[string]any {
	return map[string]any{
		"title":    a.Title,
		"summary":  a.Summary,
		"source":   a.Source,
		"category": a.Category,
		"keywords": strings.Join(a.Keywords, " "),
	}
}
