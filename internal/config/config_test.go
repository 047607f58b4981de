package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validTestConfig() *Config {
	cfg := &Config{
		DBMaxConns: 25,
		DBMinConns: 5,
	}
	cfg.DocumentCfg = DocumentConfig{Path: "data/source.pdf", IndexDir: "data/index", MaxFileSize: 10 << 20}
	cfg.SplitterCfg = SplitterConfig{SentencesPerChunk: 5, OverlapSentences: 1}
	cfg.RetrieverCfg = RetrieverConfig{TopK: 4, FetchK: 20, MMRLambda: 0.5}
	return cfg
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, validateConfig(validTestConfig()))
}

func TestValidateConfig_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero top k", func(c *Config) { c.RetrieverCfg.TopK = 0 }},
		{"fetch k below top k", func(c *Config) { c.RetrieverCfg.FetchK = 2 }},
		{"lambda out of range", func(c *Config) { c.RetrieverCfg.MMRLambda = 1.5 }},
		{"zero sentences per chunk", func(c *Config) { c.SplitterCfg.SentencesPerChunk = 0 }},
		{"overlap not below chunk size", func(c *Config) { c.SplitterCfg.OverlapSentences = 5 }},
		{"negative overlap", func(c *Config) { c.SplitterCfg.OverlapSentences = -1 }},
		{"zero max file size", func(c *Config) { c.DocumentCfg.MaxFileSize = 0 }},
		{"min conns above max conns", func(c *Config) { c.DBMinConns = 50 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)
			assert.Error(t, validateConfig(cfg))
		})
	}
}

func TestGetEnvFile(t *testing.T) {
	assert.Equal(t, ".env.local", getEnvFile("local"))
	assert.Equal(t, ".env.local", getEnvFile("dev"))
	assert.Equal(t, ".env.prod", getEnvFile("prod"))
	assert.Equal(t, ".env.staging", getEnvFile("staging"))
}
