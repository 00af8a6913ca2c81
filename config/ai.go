package config

import "time"

// OllamaConfig 模型服务地址，走 OpenAI 兼容接口
type OllamaConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	Model   string `json:"model" yaml:"model"`
}

func (o *OllamaConfig) fillDefaults() {
	if o.BaseURL == "" {
		o.BaseURL = "http://localhost:11434"
	}
	if o.Model == "" {
		o.Model = "llama2"
	}
}

type SummaryConfig struct {
	CacheMinutes    int `json:"cache_minutes" yaml:"cache_minutes"`
	UpdateThreshold int `json:"update_threshold" yaml:"update_threshold"`
}

type AIConfig struct {
	Summary           SummaryConfig `json:"summary" yaml:"summary"`
	CommentSampleSize int           `json:"comment_sample_size" yaml:"comment_sample_size"`
}

func (a *AIConfig) fillDefaults() {
	if a.Summary.CacheMinutes <= 0 {
		a.Summary.CacheMinutes = 30
	}
	if a.Summary.UpdateThreshold <= 0 {
		a.Summary.UpdateThreshold = 3
	}
	if a.CommentSampleSize <= 0 {
		a.CommentSampleSize = 50
	}
}

func (a *AIConfig) CacheWindow() time.Duration {
	return time.Duration(a.Summary.CacheMinutes) * time.Minute
}

func ProvideOllamaConfig(cfg *Config) *OllamaConfig {
	return cfg.Ollama
}

func ProvideAIConfig(cfg *Config) *AIConfig {
	return cfg.AI
}
