package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

const (
	DefaultGeminiModel = "gemini-1.5-flash"
	maxPromptRunes     = 6000
)

type generator interface {
	generate(ctx context.Context, prompt string) (string, error)
}

type genaiGenerator struct {
	model *genai.GenerativeModel
}

func (g *genaiGenerator) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response from Gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return sb.String(), nil
}

// Gemini enriches articles through the Google Gemini API.
type Gemini struct {
	client  *genai.Client
	jsonGen generator
	textGen generator
}

func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	jsonModel := client.GenerativeModel(modelName)
	jsonModel.SetTemperature(0.1)
	jsonModel.ResponseMIMEType = "application/json"

	textModel := client.GenerativeModel(modelName)
	textModel.SetTemperature(0.4)

	return &Gemini{
		client:  client,
		jsonGen: &genaiGenerator{model: jsonModel},
		textGen: &genaiGenerator{model: textModel},
	}, nil
}

func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *Gemini) AnalyzeSentiment(ctx context.Context, text string) (Sentiment, error) {
	prompt := fmt.Sprintf(`Rate how positive and uplifting this news text is.
Respond with JSON only: {"rating": <0.0-1.0>, "confidence": <0.0-1.0>}
where rating 0 is very negative, 0.5 neutral and 1 very positive.

TEXT:
%s`, clip(text))

	raw, err := g.jsonGen.generate(ctx, prompt)
	if err != nil {
		return Sentiment{}, err
	}

	var s Sentiment
	if err := decodeJSON(raw, &s); err != nil {
		return Sentiment{}, fmt.Errorf("failed to decode sentiment: %w", err)
	}
	s.Rating = news.ClampSentiment(s.Rating)
	s.Confidence = news.ClampSentiment(s.Confidence)
	return s, nil
}

func (g *Gemini) ExtractKeywords(ctx context.Context, text string) ([]string, error) {
	prompt := fmt.Sprintf(`Extract up to %d short topical keywords from this news text.
Respond with JSON only: {"keywords": ["..."]}

TEXT:
%s`, MaxKeywords, clip(text))

	raw, err := g.jsonGen.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var out struct {
		Keywords []string `json:"keywords"`
	}
	if err := decodeJSON(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode keywords: %w", err)
	}
	return normalizeKeywords(out.Keywords), nil
}

func (g *Gemini) Summarize(ctx context.Context, title, content string) (string, error) {
	prompt := fmt.Sprintf(`Summarize this news article in two or three plain sentences.
Do not start with phrases like "The article". No markdown.

TITLE: %s
CONTENT:
%s`, title, clip(content))

	summary, err := g.textGen.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}

// WriteScript turns a set of articles into a spoken podcast script.
func (g *Gemini) WriteScript(ctx context.Context, title string, articles []news.Article) (string, error) {
	var sb strings.Builder
	for i, a := range articles {
		fmt.Fprintf(&sb, "%d. %s (%s): %s\n", i+1, a.Title, a.Source, a.Summary)
	}

	prompt := fmt.Sprintf(`Write a warm, upbeat script for a short news podcast episode titled %q.
Cover every story below in order with a brief spoken transition between them.
Plain text only, no speaker labels, no markdown.

STORIES:
%s`, title, clip(sb.String()))

	script, err := g.textGen.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(script), nil
}

func clip(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= maxPromptRunes {
		return text
	}
	return string([]rune(text)[:maxPromptRunes]) + " [TRUNCATED]"
}

// decodeJSON parses a model reply, tolerating markdown code fences around it.
func decodeJSON(raw string, v any) error {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	return json.Unmarshal([]byte(strings.TrimSpace(raw)), v)
}
