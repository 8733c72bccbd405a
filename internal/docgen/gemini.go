package docgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"jobcompass/internal/storage"
	"jobcompass/internal/utils"
)

const (
	defaultModel = "gemini-2.5-flash"

	generateTimeout = 90 * time.Second
	maxAttempts     = 3
	retryDelay      = 5 * time.Second
)

// GeminiGenerator produces documents with the Gemini API.
type GeminiGenerator struct {
	client    *genai.Client
	modelName string
}

var _ Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a generator configured for the Gemini API
// backend.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &GeminiGenerator{client: client, modelName: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, kind storage.DocumentKind, r *storage.Recipient, l *storage.Listing) (string, error) {
	if err := validateProfile(r); err != nil {
		return "", err
	}

	prompt, err := buildPrompt(kind, r, l)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := g.generateContent(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if attempt < maxAttempts {
			if err := utils.WaitFor(ctx, retryDelay); err != nil {
				return "", err
			}
		}
	}

	return "", fmt.Errorf("generate %s after %d attempts: %w", kind, maxAttempts, lastErr)
}

func (g *GeminiGenerator) generateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

func (g *GeminiGenerator) Model() string {
	return g.modelName
}
