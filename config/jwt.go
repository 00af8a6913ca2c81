package config

import "time"

type Jwt struct {
	Secret string `json:"secret_key" yaml:"secret_key"`
	// TTL 单位秒
	TTL int `json:"ttl" yaml:"ttl"`
}

func (j *Jwt) Expire() time.Duration {
	return time.Duration(j.TTL) * time.Second
}

func ProvideJwtConfig(cfg *Config) *Jwt {
	return cfg.Jwt
}
