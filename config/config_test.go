package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewFillsDefaults(t *testing.T) {
	conf := New(writeYAML(t, "app:\n  env: test\n"))

	assert.Equal(t, 8080, conf.Server.Http)
	assert.Equal(t, 86400, conf.Jwt.TTL)
	assert.Equal(t, "http://localhost:11434", conf.Ollama.BaseURL)
	assert.Equal(t, "llama2", conf.Ollama.Model)
	assert.Equal(t, 30, conf.AI.Summary.CacheMinutes)
	assert.Equal(t, 3, conf.AI.Summary.UpdateThreshold)
	assert.Equal(t, 50, conf.AI.CommentSampleSize)
	assert.Equal(t, 30*time.Minute, conf.AI.CacheWindow())
	assert.Equal(t, *DefaultRetention(), *conf.Retention)
	assert.False(t, conf.Debug())
}

func TestNewReadsYAML(t *testing.T) {
	conf := New(writeYAML(t, `
app:
  debug: true
server:
  http: 9090
ai:
  summary:
    cache_minutes: 5
    update_threshold: 10
retention:
  comments:
    days: 3
    enabled: false
  posts:
    days: 60
    enabled: true
`))

	assert.True(t, conf.Debug())
	assert.Equal(t, 9090, conf.Server.Http)
	assert.Equal(t, 5, conf.AI.Summary.CacheMinutes)
	assert.Equal(t, 10, conf.AI.Summary.UpdateThreshold)
	assert.Equal(t, RetentionPolicy{Days: 3, Enabled: false}, conf.Retention.Comments)
	assert.Equal(t, RetentionPolicy{Days: 60, Enabled: true}, conf.Retention.Posts)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RETENTION_POSTS_DAYS", "14")
	t.Setenv("RETENTION_COMMENTS_ENABLED", "false")
	t.Setenv("AI_SUMMARY_UPDATE_THRESHOLD", "5")
	t.Setenv("OLLAMA_MODEL", "qwen2")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("JWT_SECRET_KEY", "from-env")
	// 非法值忽略
	t.Setenv("JWT_TTL", "abc")

	conf := New(writeYAML(t, "jwt:\n  secret_key: from-yaml\n  ttl: 60\n"))

	assert.Equal(t, 14, conf.Retention.Posts.Days)
	assert.False(t, conf.Retention.Comments.Enabled)
	assert.Equal(t, 5, conf.AI.Summary.UpdateThreshold)
	assert.Equal(t, "qwen2", conf.Ollama.Model)
	assert.Equal(t, "redis.internal", conf.Redis.Address)
	assert.Equal(t, 6380, conf.Redis.Port)
	assert.Equal(t, "from-env", conf.Jwt.Secret)
	assert.Equal(t, 60, conf.Jwt.TTL)
}

func TestMySQLDsn(t *testing.T) {
	m := &MySQL{Username: "u", Password: "p", Host: "db", Port: 3306, Database: "film"}
	assert.Equal(t, "u:p@tcp(db:3306)/film?charset=utf8mb4&parseTime=True&loc=UTC", m.Dsn())

	m.DSN = "file::memory:"
	assert.Equal(t, "file::memory:", m.Dsn())
}

func TestNewPanicsOnMissingFile(t *testing.T) {
	assert.Panics(t, func() { New(filepath.Join(t.TempDir(), "missing.yaml")) })
}
