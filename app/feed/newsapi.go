package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

const (
	DefaultNewsAPIURL   = "https://newsapi.org"
	DefaultNewsAPIQuery = "breakthrough OR innovation OR rescued OR record OR celebrates"
	newsAPIPageSize     = 50
	newsAPITimeout      = 15 * time.Second
)

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	URLToImage  string    `json:"urlToImage"`
	PublishedAt time.Time `json:"publishedAt"`
}

// NewsAPIClient queries a search-style news API for extra candidates when
// the feeds alone yield too few new articles.
type NewsAPIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
}

func NewNewsAPIClient(httpClient *http.Client, baseURL, apiKey, userAgent string) *NewsAPIClient {
	if baseURL == "" {
		baseURL = DefaultNewsAPIURL
	}
	return &NewsAPIClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		userAgent:  userAgent,
	}
}

// Search returns candidates for query, newest first.
func (c *NewsAPIClient) Search(ctx context.Context, query string) ([]news.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, newsAPITimeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", strconv.Itoa(newsAPIPageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query news API: %w", err)
	}
	defer resp.Body.Close()

	var body newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode news API response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		return nil, fmt.Errorf("news API error: %d %s %s", resp.StatusCode, body.Code, body.Message)
	}

	candidates := make([]news.Candidate, 0, len(body.Articles))
	for _, a := range body.Articles {
		summary, _ := htmlText(a.Description)
		content, _ := htmlText(stripTruncationMarker(a.Content))
		candidates = append(candidates, news.Candidate{
			Title:       strings.TrimSpace(a.Title),
			Summary:     summary,
			Content:     content,
			Link:        strings.TrimSpace(a.URL),
			Source:      a.Source.Name,
			Category:    "general",
			ImageURL:    a.URLToImage,
			PublishedAt: a.PublishedAt.UTC(),
		})
	}
	return candidates, nil
}

// stripTruncationMarker removes the "[+123 chars]" suffix the API appends to
// clipped content.
func stripTruncationMarker(content string) string {
	if i := strings.LastIndex(content, "[+"); i >= 0 && strings.HasSuffix(content, "chars]") {
		return strings.TrimSpace(content[:i])
	}
	return content
}
