package translate

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Noop passes keywords through unchanged. The default when no
// translation backend is configured.
type Noop struct{}

func (Noop) Translate(_ context.Context, keyword string) (string, error) {
	return keyword, nil
}

// OpenAITranslator normalizes search keywords to English via a chat
// completion, so queries in any language embed comparably to the
// English entity descriptions.
type OpenAITranslator struct {
	client *openai.Client
	model  string
}

func NewOpenAITranslator(apiKeyEnv, model string) (*OpenAITranslator, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAITranslator{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

func (t *OpenAITranslator) Translate(ctx context.Context, keyword string) (string, error) {
	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "Translate the user's search keyword to English. If it is already English, return it unchanged. Reply with the keyword only, no explanation.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: keyword,
			},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("translation returned no choices")
	}
	translated := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translated == "" {
		return "", fmt.Errorf("translation returned an empty keyword")
	}
	return translated, nil
}
