package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// MinPageDelayMS is the floor for the inter-page delay against the places
// provider. The provider rejects page tokens requested too soon, so the
// config can raise this but never lower it.
const MinPageDelayMS = 2000

type Config struct {
	App struct {
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
	} `yaml:"app" json:"app"`

	Places struct {
		BaseURL     string  `yaml:"base_url" json:"base_url"`
		Language    string  `yaml:"language" json:"language"`
		Region      string  `yaml:"region" json:"region"`
		PageDelayMS int     `yaml:"page_delay_ms" json:"page_delay_ms"`
		TimeoutSecs int     `yaml:"timeout_seconds" json:"timeout_seconds"`
		ReqPerSec   float64 `yaml:"req_per_sec" json:"req_per_sec"`
	} `yaml:"places" json:"places"`

	Search struct {
		PageSize      int `yaml:"page_size" json:"page_size"`
		DetailWorkers int `yaml:"detail_workers" json:"detail_workers"`
	} `yaml:"search" json:"search"`

	Enrich struct {
		Enabled     bool `yaml:"enabled" json:"enabled"`
		MaxBytes    int  `yaml:"max_bytes" json:"max_bytes"`
		TimeoutSecs int  `yaml:"timeout_seconds" json:"timeout_seconds"`
	} `yaml:"enrich" json:"enrich"`
}

func Default() Config {
	var cfg Config
	cfg.App.Port = 38561
	cfg.Places.BaseURL = "https://maps.googleapis.com/maps/api/place"
	cfg.Places.Language = "en"
	cfg.Places.PageDelayMS = MinPageDelayMS
	cfg.Places.TimeoutSecs = 20
	cfg.Places.ReqPerSec = 5
	cfg.Search.PageSize = 20
	cfg.Search.DetailWorkers = 8
	cfg.Enrich.Enabled = true
	cfg.Enrich.MaxBytes = 512 * 1024
	cfg.Enrich.TimeoutSecs = 15
	return cfg
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
