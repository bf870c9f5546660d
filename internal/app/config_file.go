package app

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the single-file YAML configuration schema. Nested
// sections map naturally to flags and environment variables.
type FileConfig struct {
	Site string `yaml:"site"`

	LLM struct {
		BaseURL string `yaml:"base"`
		Model   string `yaml:"model"`
		APIKey  string `yaml:"key"`
	} `yaml:"llm"`

	Crawl struct {
		UserAgent string `yaml:"userAgent"`
		// Timeouts are duration strings like "20s".
		PageTimeout   string `yaml:"pageTimeout"`
		PDFTimeout    string `yaml:"pdfTimeout"`
		RespectRobots *bool  `yaml:"respectRobots"`
		MaxPages      int    `yaml:"maxPages"`
	} `yaml:"crawl"`

	Documents struct {
		Index string `yaml:"index"`
	} `yaml:"documents"`

	Server struct {
		Listen string `yaml:"listen"`
	} `yaml:"server"`

	DryRun  bool `yaml:"dryRun"`
	Verbose bool `yaml:"verbose"`
}

// LoadConfigFile reads a YAML config file.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fc, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

// ApplyFileConfig overlays file values into cfg for fields still at
// their zero or flag-default value. Flags parse first, so an explicit
// flag always wins over the file.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	const (
		siteDefault     = "https://enig.rnu.tn"
		maxPagesDefault = 5
		listenDefault   = ":8080"
	)

	if (cfg.SiteURL == "" || cfg.SiteURL == siteDefault) && fc.Site != "" {
		cfg.SiteURL = fc.Site
	}
	if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMModel == "" && fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}

	if cfg.UserAgent == "" && fc.Crawl.UserAgent != "" {
		cfg.UserAgent = fc.Crawl.UserAgent
	}
	if cfg.PageTimeout == 0 {
		if d, err := time.ParseDuration(fc.Crawl.PageTimeout); err == nil && d > 0 {
			cfg.PageTimeout = d
		}
	}
	if cfg.PDFTimeout == 0 {
		if d, err := time.ParseDuration(fc.Crawl.PDFTimeout); err == nil && d > 0 {
			cfg.PDFTimeout = d
		}
	}
	if fc.Crawl.RespectRobots != nil {
		cfg.RespectRobots = *fc.Crawl.RespectRobots
	}
	if (cfg.MaxPages == 0 || cfg.MaxPages == maxPagesDefault) && fc.Crawl.MaxPages > 0 {
		cfg.MaxPages = fc.Crawl.MaxPages
	}

	if cfg.IndexPath == "" && fc.Documents.Index != "" {
		cfg.IndexPath = fc.Documents.Index
	}
	if (cfg.ListenAddr == "" || cfg.ListenAddr == listenDefault) && fc.Server.Listen != "" {
		cfg.ListenAddr = fc.Server.Listen
	}
	if !cfg.DryRun && fc.DryRun {
		cfg.DryRun = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}
