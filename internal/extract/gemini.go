package extract

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultModel   = "gemini-1.5-flash"
	DefaultTimeout = time.Minute
)

// generateFunc performs one model call and returns the response text.
type generateFunc func(ctx context.Context, apiKey, model string, contents []*genai.Content) (string, error)

// Gemini extracts transactions with the Gemini API. One attempt per
// document, bounded by Timeout.
type Gemini struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	DateLayout string // Go layout the model is asked to emit dates in

	generate generateFunc
}

// NewGemini returns a Gemini extractor. Zero Model and Timeout take defaults.
func NewGemini(apiKey, model string, timeout time.Duration, dateLayout string) *Gemini {
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gemini{
		APIKey:     apiKey,
		Model:      model,
		Timeout:    timeout,
		DateLayout: dateLayout,
		generate:   generateContent,
	}
}

func (g *Gemini) Extract(ctx context.Context, doc Document) (string, error) {
	if g.APIKey == "" {
		return "", fmt.Errorf("%w: no API key", ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: Prompt(g.DateLayout)},
				{
					InlineData: &genai.Blob{
						MIMEType: doc.MIMEType,
						Data:     doc.Data,
					},
				},
			},
		},
	}

	generate := g.generate
	if generate == nil {
		generate = generateContent
	}
	text, err := generate(ctx, g.APIKey, g.Model, contents)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, doc.Name, err)
	}
	return text, nil
}

func generateContent(ctx context.Context, apiKey, model string, contents []*genai.Content) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}
