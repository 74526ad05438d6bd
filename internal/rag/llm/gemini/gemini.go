// Package gemini is the alternate Provider implementation on Google's
// genai API, selected with LLM_PROVIDER=gemini.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/salutethegenius/bahamasopendata/pkg/logging"
)

type Client struct {
	api   *genai.Client
	model string
	log   *logging.Logger
}

func New(ctx context.Context, apiKey, model string) (*Client, error) {
	api, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{
		api:   api,
		model: model,
		log:   logging.New("gemini"),
	}, nil
}

func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.3),
	}

	result, err := c.api.Models.GenerateContent(ctx, c.model, genai.Text(userPrompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return result.Text(), nil
}
