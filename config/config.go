package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 配置信息
type Config struct {
	App       *App             `json:"app" yaml:"app"`
	Redis     *Redis           `json:"redis" yaml:"redis"`
	MySQL     *MySQL           `json:"mysql" yaml:"mysql"`
	Jwt       *Jwt             `json:"jwt" yaml:"jwt"`
	Oss       *OssConfig       `json:"oss" yaml:"oss"`
	Server    *Server          `json:"server" yaml:"server"`
	Ollama    *OllamaConfig    `json:"ollama" yaml:"ollama"`
	AI        *AIConfig        `json:"ai" yaml:"ai"`
	Retention *RetentionConfig `json:"retention" yaml:"retention"`
}

type Server struct {
	Http int `json:"http" yaml:"http"`
}

func New(filename string) *Config {
	// 本地 .env 只补充未设置的环境变量
	_ = godotenv.Load(".env.local", ".env")

	content, err := os.ReadFile(filename)
	if err != nil {
		panic(err)
	}

	var conf Config
	if err := yaml.Unmarshal(content, &conf); err != nil {
		panic(fmt.Sprintf("解析 config.yaml 读取错误: %v", err))
	}

	conf.fillDefaults()
	conf.applyEnv()

	return &conf
}

// Debug 调试模式
func (c *Config) Debug() bool {
	return c.App.Debug
}

func (c *Config) fillDefaults() {
	if c.App == nil {
		c.App = &App{Env: "dev"}
	}
	if c.Server == nil {
		c.Server = &Server{}
	}
	if c.Server.Http == 0 {
		c.Server.Http = 8080
	}
	if c.Redis == nil {
		c.Redis = &Redis{Address: "127.0.0.1", Port: 6379}
	}
	if c.MySQL == nil {
		c.MySQL = &MySQL{}
	}
	if c.Jwt == nil {
		c.Jwt = &Jwt{}
	}
	if c.Jwt.TTL == 0 {
		c.Jwt.TTL = 86400
	}
	if c.Oss == nil {
		c.Oss = &OssConfig{}
	}
	if c.Ollama == nil {
		c.Ollama = &OllamaConfig{}
	}
	c.Ollama.fillDefaults()
	if c.AI == nil {
		c.AI = &AIConfig{}
	}
	c.AI.fillDefaults()
	if c.Retention == nil {
		c.Retention = DefaultRetention()
	}
	c.Retention.fillDefaults()
}

// applyEnv 环境变量覆盖 yaml 中的同名配置
func (c *Config) applyEnv() {
	envInt("RETENTION_COMMENTS_DAYS", &c.Retention.Comments.Days)
	envBool("RETENTION_COMMENTS_ENABLED", &c.Retention.Comments.Enabled)
	envInt("RETENTION_POSTS_DAYS", &c.Retention.Posts.Days)
	envBool("RETENTION_POSTS_ENABLED", &c.Retention.Posts.Enabled)

	envInt("AI_SUMMARY_CACHE_MINUTES", &c.AI.Summary.CacheMinutes)
	envInt("AI_SUMMARY_UPDATE_THRESHOLD", &c.AI.Summary.UpdateThreshold)
	envInt("AI_COMMENT_SAMPLE_SIZE", &c.AI.CommentSampleSize)

	envString("OLLAMA_BASE_URL", &c.Ollama.BaseURL)
	envString("OLLAMA_MODEL", &c.Ollama.Model)

	envString("REDIS_HOST", &c.Redis.Address)
	envInt("REDIS_PORT", &c.Redis.Port)
	envString("REDIS_PASSWORD", &c.Redis.Password)
	envInt("REDIS_DB", &c.Redis.Database)

	envString("MYSQL_DRIVER", &c.MySQL.Driver)
	envString("MYSQL_DSN", &c.MySQL.DSN)

	envString("OSS_ENDPOINT", &c.Oss.Endpoint)
	envString("OSS_BUCKET", &c.Oss.Bucket)
	envString("OSS_ACCESS_KEY_ID", &c.Oss.AccessKeyID)
	envString("OSS_ACCESS_KEY_SECRET", &c.Oss.AccessKeySecret)

	envString("JWT_SECRET_KEY", &c.Jwt.Secret)
	envInt("JWT_TTL", &c.Jwt.TTL)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			*dst = b
		}
	}
}
