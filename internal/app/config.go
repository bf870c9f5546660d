package app

import (
	"errors"
	"strings"
	"time"
)

// Config holds runtime configuration for the assistant.
type Config struct {
	// SiteURL is the institutional site the crawler starts from.
	SiteURL string

	// LLM
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Crawl
	UserAgent     string
	PageTimeout   time.Duration
	PDFTimeout    time.Duration
	RespectRobots bool
	MaxPages      int

	// Documents
	IndexPath string

	// Server
	ListenAddr string

	// Behavior
	DryRun  bool
	Verbose bool
}

// ValidateConfig checks the minimal required settings. Dry-run skips
// the model requirement so the retrieval pipeline can be exercised
// offline.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.SiteURL) == "" {
		return errors.New("config: site URL is required")
	}
	if !cfg.DryRun && strings.TrimSpace(cfg.LLMModel) == "" {
		return errors.New("config: llm.model is required (or set LLM_MODEL)")
	}
	if cfg.MaxPages < 0 {
		return errors.New("config: negative page limits are not allowed")
	}
	return nil
}
