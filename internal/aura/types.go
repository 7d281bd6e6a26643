package aura

import (
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultModel   = openai.CreateImageModelDallE3
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultSize    = openai.CreateImageSize1024x1024
	DefaultQuality = openai.CreateImageQualityStandard
)

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type GenerateRequest struct {
	Prompt string
}

type GenerateResponse struct {
	URL           string
	RevisedPrompt string
}
