package config

type RetentionPolicy struct {
	Days    int  `json:"days" yaml:"days"`
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// RetentionConfig 逻辑删除数据的保留策略
type RetentionConfig struct {
	Comments RetentionPolicy `json:"comments" yaml:"comments"`
	Posts    RetentionPolicy `json:"posts" yaml:"posts"`
}

func DefaultRetention() *RetentionConfig {
	return &RetentionConfig{
		Comments: RetentionPolicy{Days: 7, Enabled: true},
		Posts:    RetentionPolicy{Days: 30, Enabled: true},
	}
}

func (r *RetentionConfig) fillDefaults() {
	if r.Comments.Days <= 0 {
		r.Comments.Days = 7
	}
	if r.Posts.Days <= 0 {
		r.Posts.Days = 30
	}
}

func ProvideRetentionConfig(cfg *Config) *RetentionConfig {
	return cfg.Retention
}
