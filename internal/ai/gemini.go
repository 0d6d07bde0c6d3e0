package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// defaultTemperature keeps plans varied but structured.
const defaultTemperature = 0.4

// GeminiGenerator implements Generator using Google's Gemini models.
// One client is shared; a model handle is configured per request.
type GeminiGenerator struct {
	client      *genai.Client
	temperature float32
}

// NewGeminiGenerator initializes a new Gemini client.
func NewGeminiGenerator(ctx context.Context, apiKey string, opts ...option.ClientOption) (*GeminiGenerator, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, temperature: defaultTemperature}, nil
}

// Close cleans up the Gemini client resources.
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// Generate performs exactly one GenerateContent call.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	model := g.client.GenerativeModel(req.Model)
	model.SetTemperature(g.temperature)
	if req.System != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	}
	if req.Schema != nil {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = req.Schema
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", classify(req.Model, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &GenError{Kind: KindEmptyOutput, Model: req.Model}
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", &GenError{Kind: KindEmptyOutput, Model: req.Model}
	}
	return out, nil
}
