package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoad_NoFileReturnsZeroValue(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoad_ReadsYML(t *testing.T) {
	dir := t.TempDir()
	yml := `
llm:
  provider: gemini
  model: gemini-2.5-pro
server:
  port: 9000
corpus:
  dir: docs
  includes: ["**/*.md"]
retrieval:
  chunk_size: 800
log_level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docqa.yml"), []byte(yml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "docs", cfg.Corpus.Dir)
	assert.Equal(t, []string{"**/*.md"}, cfg.Corpus.Includes)
	assert.Equal(t, 800, cfg.Retrieval.ChunkSize)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_YAMLExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docqa.yaml"), []byte("log_level: warn\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docqa.yml"), []byte("server: [unclosed"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.Model)
	assert.Equal(t, "127.0.0.1:8000", cfg.Server.Addr())
	assert.Equal(t, "http://127.0.0.1:8000", cfg.Gateway.URL)
	assert.Equal(t, 5*time.Second, cfg.Gateway.Timeout())
	assert.Equal(t, "knowledge_base", cfg.Corpus.Dir)
	assert.Equal(t, 400, cfg.Retrieval.ChunkSize)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestApplyDefaults_GeminiKeepsModelUnset(t *testing.T) {
	cfg := &Config{LLM: LLMConfig{Provider: "gemini"}}
	cfg.ApplyDefaults()
	assert.Empty(t, cfg.LLM.Model, "the provider picks its own default model")
}

func TestApplyEnv(t *testing.T) {
	cfg := &Config{LLM: LLMConfig{Model: "from-file"}}
	err := cfg.ApplyEnv(envMap(map[string]string{
		"LLM_MODEL":          "llama-3.1-8b-instant",
		"MCP_SERVER_HOST":    "0.0.0.0",
		"MCP_SERVER_PORT":    "8100",
		"MCP_SERVER_URL":     "http://gateway:8100",
		"KNOWLEDGE_BASE_DIR": "/srv/kb",
		"LOG_LEVEL":          "DEBUG",
		"TOP_K":              "3",
		"LLM_PROVIDER":       "  ",
	}))
	require.NoError(t, err)

	assert.Equal(t, "llama-3.1-8b-instant", cfg.LLM.Model)
	assert.Empty(t, cfg.LLM.Provider, "blank values do not override")
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8100, cfg.Server.Port)
	assert.Equal(t, "http://gateway:8100", cfg.Gateway.URL)
	assert.Equal(t, "/srv/kb", cfg.Corpus.Dir)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
}

func TestApplyEnv_BadNumber(t *testing.T) {
	cfg := &Config{}
	err := cfg.ApplyEnv(envMap(map[string]string{"MCP_SERVER_PORT": "eighty"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MCP_SERVER_PORT")
}

func TestValidate(t *testing.T) {
	assert.Error(t, (&Config{Server: ServerConfig{Port: 70000}}).Validate())
	assert.Error(t, (&Config{Retrieval: RetrievalConfig{TopK: -1}}).Validate())
	assert.NoError(t, (&Config{}).Validate())
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docqa.yml"), []byte("server:\n  port: 9001\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DOCQA_TEST_DOTENV=loaded\n"), 0o644))
	t.Setenv("LOG_LEVEL", "warn")
	t.Cleanup(func() { os.Unsetenv("DOCQA_TEST_DOTENV") })

	cfg, err := Resolve(dir, "")
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, "http://127.0.0.1:9001", cfg.Gateway.URL)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "loaded", os.Getenv("DOCQA_TEST_DOTENV"))
}

func TestResolve_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("corpus:\n  dir: notes\n"), 0o644))

	cfg, err := Resolve(dir, path)
	require.NoError(t, err)
	assert.Equal(t, "notes", cfg.Corpus.Dir)
}
