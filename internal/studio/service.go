// Package studio runs the upload, description and aura stages for one session.
package studio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/eleven-am/aura-studio/internal/aura"
	"github.com/eleven-am/aura-studio/internal/description"
	"github.com/eleven-am/aura-studio/internal/media"
	"github.com/eleven-am/aura-studio/internal/session"
	"github.com/eleven-am/aura-studio/internal/shared"
)

var (
	ErrLocalIO      = errors.New("local file error")
	ErrRemoteFailed = errors.New("remote service failed")
)

type MetricsRecorder interface {
	IncrementMetric(ctx context.Context, field string) error
}

type Config struct {
	TempDir string
}

type AuraResult struct {
	URL           string
	Prompt        string
	RevisedPrompt string
}

type Service struct {
	describer description.Describer
	generator aura.Generator
	metrics   MetricsRecorder
	tempDir   string
	logger    *slog.Logger
}

func NewService(cfg Config, describer description.Describer, generator aura.Generator, metrics MetricsRecorder, logger *slog.Logger) *Service {
	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "aura-studio")
	}
	return &Service{
		describer: describer,
		generator: generator,
		metrics:   metrics,
		tempDir:   tempDir,
		logger:    logger,
	}
}

// Upload writes the image to the session's temporary file, replacing any
// earlier upload. The current description is kept until a new one replaces it.
func (s *Service) Upload(ctx context.Context, state *session.State, img media.Image) error {
	if len(img.Data) == 0 {
		return shared.ErrNoImage
	}

	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		return fmt.Errorf("%w: create temp dir: %w", ErrLocalIO, err)
	}

	path := filepath.Join(s.tempDir, state.ID+media.Extension(img))
	if err := os.WriteFile(path, img.Data, 0o600); err != nil {
		return fmt.Errorf("%w: write upload: %w", ErrLocalIO, err)
	}

	previous := state.ImagePath
	state.ImagePath = path
	state.ImageName = img.Filename
	state.ContentType = media.DetectContentType(img.Data, img.ContentType)

	if previous != "" && previous != path {
		s.removeFile(previous)
	}

	s.record(ctx, session.MetricUploads)
	s.logger.Info("image uploaded", "session_id", state.ID, "filename", img.Filename, "size", len(img.Data))
	return nil
}

// Describe reads the uploaded image back and asks the description service
// for a markdown description. On any failure the session's description is
// left untouched.
func (s *Service) Describe(ctx context.Context, state *session.State) (string, error) {
	if !state.HasImage() {
		return "", shared.ErrNoImage
	}

	data, err := os.ReadFile(state.ImagePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", shared.ErrNoImage
		}
		return "", fmt.Errorf("%w: read upload: %w", ErrLocalIO, err)
	}

	resp, err := s.describer.Describe(ctx, description.DescribeRequest{
		Image: media.Image{
			Filename:    state.ImageName,
			ContentType: state.ContentType,
			Data:        data,
		},
	})
	if err != nil {
		s.record(ctx, session.MetricErrors)
		s.logger.Error("description failed", "error", err, "session_id", state.ID)
		return "", fmt.Errorf("%w: %w", ErrRemoteFailed, err)
	}
	if resp.Description == "" {
		s.record(ctx, session.MetricErrors)
		return "", fmt.Errorf("%w: %w", ErrRemoteFailed, shared.ErrEmptyResult)
	}

	state.Description = resp.Description
	s.record(ctx, session.MetricDescriptions)
	s.logger.Info("description generated", "session_id", state.ID, "model", resp.Model, "total_tokens", resp.Usage.TotalTokens)
	return resp.Description, nil
}

// GenerateAura builds the aura prompt from the session's description and
// returns the URL of the generated image. It refuses to run without a
// description.
func (s *Service) GenerateAura(ctx context.Context, state *session.State) (*AuraResult, error) {
	if !state.HasDescription() {
		return nil, shared.ErrNoDescription
	}

	prompt := aura.BuildPrompt(state.Description)
	resp, err := s.generator.Generate(ctx, aura.GenerateRequest{Prompt: prompt})
	if err != nil {
		s.record(ctx, session.MetricErrors)
		s.logger.Error("aura generation failed", "error", err, "session_id", state.ID)
		return nil, fmt.Errorf("%w: %w", ErrRemoteFailed, err)
	}

	s.record(ctx, session.MetricAuras)
	s.logger.Info("aura generated", "session_id", state.ID, "revised_prompt", resp.RevisedPrompt)
	return &AuraResult{URL: resp.URL, Prompt: prompt, RevisedPrompt: resp.RevisedPrompt}, nil
}

// Reset removes the session's uploaded image and clears its results.
func (s *Service) Reset(ctx context.Context, state *session.State) {
	if state.ImagePath != "" {
		s.removeFile(state.ImagePath)
	}
	state.ImagePath = ""
	state.ImageName = ""
	state.ContentType = ""
	state.Description = ""
	s.logger.Info("session reset", "session_id", state.ID)
}

func (s *Service) removeFile(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove upload", "error", err, "path", path)
	}
}

func (s *Service) record(ctx context.Context, field string) {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.IncrementMetric(ctx, field); err != nil {
		s.logger.Warn("failed to record metric", "error", err, "metric", field)
	}
}
