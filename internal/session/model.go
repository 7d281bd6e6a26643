package session

import (
	"strings"
	"time"
)

const (
	IDPrefix  = "sess_"
	keyPrefix = "aura:session:"
)

const (
	MetricUploads      = "uploads"
	MetricDescriptions = "descriptions"
	MetricAuras        = "auras"
	MetricErrors       = "errors"
)

// State is the interaction state of one browser session. It is loaded at the
// start of every request and handed to the stages that need it.
type State struct {
	ID          string    `json:"id"`
	ImagePath   string    `json:"image_path,omitempty"`
	ImageName   string    `json:"image_name,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *State) RedisKey() string {
	return keyPrefix + s.ID
}

func (s *State) HasImage() bool {
	return s.ImagePath != ""
}

func (s *State) HasDescription() bool {
	return strings.TrimSpace(s.Description) != ""
}

type Metrics struct {
	Date         string `json:"date"`
	Uploads      int64  `json:"uploads"`
	Descriptions int64  `json:"descriptions"`
	Auras        int64  `json:"auras"`
	Errors       int64  `json:"errors"`
}

func (m *Metrics) set(field string, value int64) {
	switch field {
	case MetricUploads:
		m.Uploads = value
	case MetricDescriptions:
		m.Descriptions = value
	case MetricAuras:
		m.Auras = value
	case MetricErrors:
		m.Errors = value
	}
}

func MetricsRedisKey(date string) string {
	return "aura:metrics:" + date
}

func metricsDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
