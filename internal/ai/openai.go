package ai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider explains code via the OpenAI chat completions API (or any
// compatible endpoint behind a custom base URL).
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates an OpenAI provider
func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Explain sends the prompt (and, in vision mode, the image) and returns
// the raw completion text.
func (p *OpenAIProvider) Explain(ctx context.Context, prompt string, imageBase64 string) (string, error) {
	var messages []openai.ChatCompletionMessage

	if imageBase64 != "" {
		messages = []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: imageBase64,
						},
					},
				},
			},
		}
	} else {
		messages = []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
	})
	if err != nil {
		return "", serviceErr("openai", "chat completion failed: "+err.Error(), err)
	}

	if len(resp.Choices) == 0 {
		return "", serviceErr("openai", "empty response from model", nil)
	}

	return resp.Choices[0].Message.Content, nil
}
