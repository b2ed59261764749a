package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

// Channel describes an outgoing RSS channel built from stored articles.
type Channel struct {
	Name        string // path segment under /feeds/
	Title       string
	Description string
}

// Generator renders article lists as RSS 2.0 documents.
type Generator struct {
	baseURL string
	version string
}

func NewGenerator(baseURL, version string) *Generator {
	return &Generator{baseURL: strings.TrimRight(baseURL, "/"), version: version}
}

func (g *Generator) Run(channel Channel, articles []news.Article) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", channel.Title, 4)
	g.writeElement(&buf, "link", g.baseURL+"/", 4)
	g.writeElement(&buf, "description", channel.Description, 4)

	selfLink := fmt.Sprintf("%s/feeds/%s", g.baseURL, channel.Name)
	fmt.Fprintf(&buf, "    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(selfLink))

	lastBuildDate := time.Now()
	if len(articles) > 0 {
		lastBuildDate = articles[0].PublishedAt
	}
	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("BrightBuzz/%s", g.version), 4)
	g.writeElement(&buf, "language", "en", 4)

	for _, a := range articles {
		g.writeItem(&buf, a)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, a news.Article) {
	buf.WriteString("    <item>\n")

	buf.WriteString("      <guid isPermaLink=\"true\">")
	xml.EscapeText(buf, []byte(a.URL))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", a.Title, 6)
	g.writeElement(buf, "link", a.URL, 6)
	g.writeElement(buf, "description", a.Summary, 6)

	if a.Content != "" && a.Content != a.Summary {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(strings.ReplaceAll(a.Content, "]]>", "]]]]><![CDATA[>"))
		buf.WriteString("]]></content:encoded>\n")
	}

	g.writeElement(buf, "pubDate", a.PublishedAt.Format(time.RFC1123Z), 6)
	g.writeElement(buf, "author", a.Source, 6)
	g.writeElement(buf, "category", a.Category, 6)

	if a.ImageURL != "" {
		fmt.Fprintf(buf, "      <enclosure url=\"%s\" length=\"0\" type=\"image/jpeg\" />\n",
			html.EscapeString(a.ImageURL))
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
