package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/carelink/reminisce/server/domain/entities"
	"github.com/carelink/reminisce/server/domain/repositories"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiGenerator implements the TextGenerator interface using Google's
// Gemini API. Alternate provider; selected with GENERATOR_PROVIDER=gemini.
type GeminiGenerator struct {
	client *genai.Client
	logger *zap.Logger
	model  string
}

var _ repositories.TextGenerator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a new Gemini text generator.
func NewGeminiGenerator(logger *zap.Logger) (*GeminiGenerator, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiGenerator{
		client: client,
		logger: logger,
		model:  model,
	}, nil
}

// Generate runs one non-chat generation with the instruction block as the
// system instruction.
func (g *GeminiGenerator) Generate(ctx context.Context, request entities.GenerationRequest) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(request.Content, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(request.Instructions, genai.RoleUser),
	}

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var b strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	text := b.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini returned empty content")
	}

	g.logger.Debug("Generated reminder text",
		zap.String("model", g.model),
		zap.Int("responseLength", len(text)))
	return text, nil
}
