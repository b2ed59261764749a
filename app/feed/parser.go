package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

const maxSummaryRunes = 500

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) (*Metadata, []Item, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:       strings.TrimSpace(feed.Title),
		Link:        feed.Link,
		Description: feed.Description,
		Language:    feed.Language,
	}

	if feed.Image != nil {
		metadata.ImageURL = feed.Image.URL
	}

	items := make([]Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		items = append(items, p.normalizeItem(item))
	}

	return metadata, items, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	description, descriptionImage := htmlText(item.Description)
	content, contentImage := htmlText(item.Content)

	normalized := Item{
		GUID:        cmp.Or(item.GUID, item.Link),
		Title:       strings.TrimSpace(item.Title),
		Link:        strings.TrimSpace(item.Link),
		Description: description,
		Content:     content,
		Categories:  item.Categories,
	}

	if item.PublishedParsed != nil {
		normalized.PublishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		normalized.PublishedAt = *item.UpdatedParsed
	}

	normalized.ImageURL = cmp.Or(p.itemImage(item), contentImage, descriptionImage)

	return normalized
}

// itemImage looks for an image in the item's explicit media fields.
func (p *Parser) itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enclosure := range item.Enclosures {
		if enclosure != nil && strings.HasPrefix(enclosure.Type, "image/") {
			return enclosure.URL
		}
	}
	return ""
}

// Candidates converts parsed items into ingestion candidates. Items the feed
// filters excluded are skipped. Source and category fall back to the feed
// title and the item's first category.
func (p *Parser) Candidates(metadata *Metadata, items []Item, feedConfig *Config, now time.Time) []news.Candidate {
	source := feedConfig.Source
	if source == "" && metadata != nil {
		source = metadata.Title
	}
	source = cmp.Or(source, feedConfig.Name)

	candidates := make([]news.Candidate, 0, len(items))
	for _, item := range items {
		if item.IsFiltered {
			continue
		}

		category := feedConfig.Category
		if category == "" && len(item.Categories) > 0 {
			category = strings.ToLower(strings.TrimSpace(item.Categories[0]))
		}

		summary := cmp.Or(item.Description, truncate(item.Content, maxSummaryRunes))
		published := item.PublishedAt
		if published.IsZero() {
			published = now
		}

		candidates = append(candidates, news.Candidate{
			Title:       item.Title,
			Summary:     summary,
			Content:     cmp.Or(item.Content, summary),
			Link:        item.Link,
			Source:      source,
			Category:    cmp.Or(category, "general"),
			ImageURL:    item.ImageURL,
			PublishedAt: published.UTC(),
		})
	}
	return candidates
}

// htmlText returns the visible text of an HTML fragment with whitespace
// collapsed, plus the source of its first image.
func htmlText(fragment string) (string, string) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return "", ""
	}
	if !strings.Contains(fragment, "<") {
		return strings.Join(strings.Fields(fragment), " "), ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " "), ""
	}

	doc.Find("script, style").Remove()
	image, _ := doc.Find("img[src]").First().Attr("src")
	return strings.Join(strings.Fields(doc.Text()), " "), image
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return strings.TrimSpace(string([]rune(text)[:limit])) + "..."
}
