package feed

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const articlePage = `<!DOCTYPE html>
<html>
<head><title>Town builds solar farm</title></head>
<body>
  <nav><a href="/">Home</a><a href="/news">News</a></nav>
  <article>
    <h1>Town builds solar farm</h1>
    <p>The small town of Riverbend switched on its community solar farm on Monday, supplying power to four hundred homes.</p>
    <p>Residents funded the project through a cooperative and will share the savings on their electricity bills for the next twenty years.</p>
    <p>Organisers say the farm will also host a school programme teaching students how renewable energy systems work in practice.</p>
    <p>Local businesses have already signed up to buy surplus power, and the council expects the cooperative to repay its start-up loan two years ahead of schedule.</p>
    <p>Neighbouring villages have asked the cooperative for advice, and a second site on the old quarry grounds is being surveyed this spring.</p>
  </article>
  <footer>Copyright</footer>
</body>
</html>`

func TestContentExtractorRun(t *testing.T) {
	text, err := NewContentExtractor().Run([]byte(articlePage), "https://example.com/solar")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(text, "Riverbend switched on its community solar farm") {
		t.Errorf("Expected article body in extracted text, got: %q", text)
	}
	if strings.Contains(text, "<p>") {
		t.Error("Expected plain text without markup")
	}
	if !strings.Contains(text, "\n\n") {
		t.Error("Expected paragraphs separated by blank lines")
	}
}

func TestContentExtractorEmpty(t *testing.T) {
	if _, err := NewContentExtractor().Run(nil, "https://example.com"); err == nil {
		t.Error("Expected error for empty data")
	}
}

func mustDocument(t *testing.T, fragment string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestParagraphs(t *testing.T) {
	text := paragraphs(mustDocument(t, `<div><p>First <em>para</em>.</p><ul><li>Item <p>nested</p></li></ul></div>`))
	if text != "First para.\n\nItem nested" {
		t.Errorf("Unexpected text: %q", text)
	}

	text = paragraphs(mustDocument(t, `<div>bare text</div>`))
	if text != "bare text" {
		t.Errorf("Expected fallback to document text, got %q", text)
	}
}
