package aura

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/eleven-am/aura-studio/internal/shared"
	"github.com/sashabaranov/go-openai"
)

const serviceName = "image service"

var ErrEmptyPrompt = errors.New("empty prompt")

type Client struct {
	api     *openai.Client
	baseURL string
	model   string
	timeout time.Duration
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = strings.TrimRight(baseURL, "/")
	apiCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		api:     openai.NewClientWithConfig(apiCfg),
		baseURL: apiCfg.BaseURL,
		model:   model,
		timeout: timeout,
	}
}

// Generate asks for exactly one square standard-quality image and returns the
// URL of the first result. The URL is neither fetched nor validated.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	resp, err := c.api.CreateImage(ctx, openai.ImageRequest{
		Model:   c.model,
		Prompt:  req.Prompt,
		N:       1,
		Size:    DefaultSize,
		Quality: DefaultQuality,
	})
	if err != nil {
		return nil, remoteError(err)
	}

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return nil, fmt.Errorf("%s: %w", serviceName, shared.ErrEmptyResult)
	}

	return &GenerateResponse{
		URL:           resp.Data[0].URL,
		RevisedPrompt: resp.Data[0].RevisedPrompt,
	}, nil
}

// remoteError maps SDK failures onto shared.RemoteError so callers see the
// same error shape for every hosted model.
func remoteError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code, ok := apiErr.Code.(string)
		if !ok {
			code = apiErr.Type
		}
		return &shared.RemoteError{
			Service:    serviceName,
			StatusCode: apiErr.HTTPStatusCode,
			Code:       code,
			Message:    apiErr.Message,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &shared.RemoteError{
			Service:    serviceName,
			StatusCode: reqErr.HTTPStatusCode,
		}
	}

	return fmt.Errorf("image request: %w", err)
}
