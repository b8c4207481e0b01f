package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP struct {
		Bind    string  `yaml:"bind"`
		RateRPS float64 `yaml:"rate_rps"`
	} `yaml:"http"`
	OpenAI struct {
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"openai"`
	Chart struct {
		URL string `yaml:"url"`
	} `yaml:"chart"`
	Log struct {
		Format string `yaml:"format"` // "text" or "json"
	} `yaml:"log"`
}

// Load reads configuration in ascending precedence: defaults, an optional
// YAML file, then FORGE_* environment variables. A missing YAML file is not
// an error; a malformed one is.
func Load(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := defaults()

	// 2. Load YAML config when present
	if path != "" {
		file, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	// 3. Override with Environment Variables if present
	if v := os.Getenv("FORGE_HTTP_BIND"); v != "" {
		cfg.HTTP.Bind = v
	}
	if v := os.Getenv("FORGE_RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.HTTP.RateRPS = f
		}
	}
	if v := os.Getenv("FORGE_OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("FORGE_OPENAI_MODEL"); v != "" {
		cfg.OpenAI.Model = v
	}
	if v := os.Getenv("FORGE_OPENAI_BASE_URL"); v != "" {
		cfg.OpenAI.BaseURL = v
	}
	if v := os.Getenv("FORGE_CHART_URL"); v != "" {
		cfg.Chart.URL = v
	}
	if v := os.Getenv("FORGE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.HTTP.Bind = ":8080"
	cfg.HTTP.RateRPS = 2
	cfg.OpenAI.Model = "gpt-4.1-mini"
	cfg.Chart.URL = "https://quickchart.io"
	cfg.Log.Format = "text"
	return cfg
}
