package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.False(t, cfg.Queue.Enable)

	assert.Equal(t, 100, cfg.Analysis.SummaryLength)
	assert.Equal(t, 30, cfg.Analysis.Tolerance)
	assert.Equal(t, 200, cfg.Analysis.MaxWords)
	assert.Equal(t, "tfidf", cfg.Analysis.KeywordMethod)
	assert.Equal(t, 20, cfg.Analysis.Dedup.MinKeep)
	assert.Equal(t, 30, cfg.Analysis.Dedup.RetryPool)
	assert.InDelta(t, 0.6, cfg.Analysis.Weights.Keyword, 1e-9)
	assert.Equal(t, 200, cfg.Analysis.Weights.MaxLength)

	assert.False(t, cfg.Polish.Enable)
	assert.Equal(t, "deepseek-chat", cfg.Polish.Model)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  mode: debug
analysis:
  summary_length: 50
  keyword_method: textrank
  weights:
    keyword: 0.5
cache:
  type: redis
  ttl: 1h
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, 50, cfg.Analysis.SummaryLength)
	assert.Equal(t, "textrank", cfg.Analysis.KeywordMethod)
	assert.InDelta(t, 0.5, cfg.Analysis.Weights.Keyword, 1e-9)
	// 未覆盖的权重保持默认
	assert.InDelta(t, 0.2, cfg.Analysis.Weights.Length, 1e-9)
	assert.Equal(t, "redis", cfg.Cache.Type)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LECTURE_SERVER_PORT", "7070")
	t.Setenv("LECTURE_ANALYSIS_MAX_WORDS", "50")

	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 50, cfg.Analysis.MaxWords)
}

func TestLoadExpandsSecrets(t *testing.T) {
	t.Setenv("TEST_DEEPSEEK_KEY", "sk-test")

	cfg, err := Load(writeConfig(t, `
polish:
  enable: true
  api_key: ${TEST_DEEPSEEK_KEY}
storage:
  access_key: ${TEST_UNSET_ACCESS_KEY}
`))
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.Polish.APIKey)
	assert.Equal(t, "${TEST_UNSET_ACCESS_KEY}", cfg.Storage.AccessKey)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad keyword method", "analysis:\n  keyword_method: lda\n"},
		{"bad storage type", "storage:\n  type: ftp\n"},
		{"minio without endpoint", "storage:\n  type: minio\n"},
		{"polish without key", "polish:\n  enable: true\n"},
		{"bad port", "server:\n  port: 70000\n"},
		{"bad log level", "log:\n  level: verbose\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TEST_DOTENV_VALUE=from-dotenv\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("TEST_DOTENV_VALUE") })

	require.NoError(t, LoadDotEnv(envFile, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-dotenv", os.Getenv("TEST_DOTENV_VALUE"))
}

func TestExpandEnvRef(t *testing.T) {
	t.Setenv("TEST_REF", "value")
	assert.Equal(t, "value", expandEnvRef("${TEST_REF}"))
	assert.Equal(t, "plain", expandEnvRef("plain"))
	assert.Equal(t, "prefix-${TEST_REF}", expandEnvRef("prefix-${TEST_REF}"))
}
