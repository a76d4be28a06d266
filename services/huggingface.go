package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"travelplanner/retry"
)

const DefaultHuggingFaceModel = "mistralai/Mistral-7B-Instruct-v0.3"

// HuggingFaceClient completes prompts through the HuggingFace inference API.
type HuggingFaceClient struct {
	provider
	apiKey       string
	baseURL      string
	defaultModel string
}

func NewHuggingFaceClient(apiKey, baseURL, defaultModel string, httpClient *http.Client, rc retry.Config) *HuggingFaceClient {
	if defaultModel == "" {
		defaultModel = DefaultHuggingFaceModel
	}
	return &HuggingFaceClient{
		provider:     newProvider("huggingface", httpClient, rc, apiKey),
		apiKey:       apiKey,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		defaultModel: defaultModel,
	}
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfResponse []struct {
	GeneratedText string `json:"generated_text"`
}

// Complete wraps prompt in an instruction block. OpenAI model ids are not served here,
// so gpt-* identifiers fall back to the client's default model.
func (c *HuggingFaceClient) Complete(ctx context.Context, model, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", Errorf(MissingCredential, "HuggingFace API key not configured")
	}
	if model == "" || strings.HasPrefix(model, "gpt-") {
		model = c.defaultModel
	}

	reqBody, err := json.Marshal(hfRequest{
		Inputs: "[INST] You are a helpful travel assistant. " + prompt + " [/INST]",
		Parameters: hfParameters{
			MaxNewTokens:   600,
			Temperature:    0.6,
			ReturnFullText: false,
		},
	})
	if err != nil {
		return "", err
	}

	log.Printf("🤖 huggingface: model=%s prompt_tokens~%d", model, CountPromptTokens(model, prompt))

	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/models/"+model, reqBody, map[string]string{
		"Authorization": "Bearer " + c.apiKey,
	})
	if err != nil {
		return "", err
	}

	var resp hfResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse AI response: %v", err)
	}
	if len(resp) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp[0].GeneratedText), nil
}
