package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"travelplanner/retry"
)

// Completer sends one prompt to a hosted language model and returns its text.
type Completer interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// OpenAIClient is a minimal chat-completions client.
type OpenAIClient struct {
	provider
	apiKey  string
	baseURL string
}

func NewOpenAIClient(apiKey, baseURL string, httpClient *http.Client, rc retry.Config) *OpenAIClient {
	return &OpenAIClient{
		provider: newProvider("openai", httpClient, rc, apiKey),
		apiKey:   apiKey,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type openAIErrorResponse struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends prompt as a single user message.
func (c *OpenAIClient) Complete(ctx context.Context, model, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", Errorf(MissingCredential, "OpenAI API key not configured")
	}

	reqBody, err := json.Marshal(chatCompletionRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	log.Printf("🤖 openai: model=%s prompt_tokens~%d", model, CountPromptTokens(model, prompt))

	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/chat/completions", reqBody, map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	})
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			var apiErr openAIErrorResponse
			if json.Unmarshal(se.Body, &apiErr) == nil && apiErr.Error != nil {
				return "", fmt.Errorf("OpenAI API error (%d): %s", se.Code, apiErr.Error.Message)
			}
		}
		return "", err
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
