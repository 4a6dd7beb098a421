package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/carelink/reminisce/server/domain/entities"
	"github.com/carelink/reminisce/server/domain/repositories"
)

const defaultOpenAIModel = "gpt-4"

// OpenAIConfig holds configuration for the OpenAI text generator.
// Required fields:
// - APIKey: Your OpenAI API key
// Optional fields with defaults:
// - Model: chat model name (default: "gpt-4")
// - BaseURL: override for the API endpoint
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// ValidateOpenAIConfig validates the OpenAIConfig.
func ValidateOpenAIConfig(config OpenAIConfig) error {
	if config.APIKey == "" {
		return fmt.Errorf("OpenAI API key is required")
	}
	return nil
}

// NewOpenAIConfigFromEnv creates an OpenAIConfig from environment
// variables.
func NewOpenAIConfigFromEnv() OpenAIConfig {
	return OpenAIConfig{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   os.Getenv("OPENAI_MODEL"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
	}
}

// OpenAIGenerator implements the TextGenerator interface with OpenAI chat
// completions.
type OpenAIGenerator struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

var _ repositories.TextGenerator = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator creates a new OpenAI text generator.
func NewOpenAIGenerator(config OpenAIConfig, logger *zap.Logger) (*OpenAIGenerator, error) {
	if err := ValidateOpenAIConfig(config); err != nil {
		return nil, err
	}

	model := config.Model
	if model == "" {
		model = defaultOpenAIModel
		logger.Info("Using default OpenAI model", zap.String("model", model))
	}

	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &OpenAIGenerator{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger,
	}, nil
}

// Generate sends the assembled instruction block and user content as one
// chat completion and returns the raw response text verbatim.
func (g *OpenAIGenerator) Generate(ctx context.Context, request entities.GenerationRequest) (string, error) {
	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(request.Instructions),
			openai.UserMessage(request.Content),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	text := completion.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("openai returned empty content")
	}

	g.logger.Debug("Generated reminder text",
		zap.String("model", g.model),
		zap.Int("responseLength", len(text)))
	return text, nil
}
