package config

import (
	"strings"
	"testing"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("http:\n  port: 8000\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.LLM.Backend != LLMLocal || cfg.LLM.TimeoutSec != 60 {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.Answer.TopK != 5 || *cfg.Answer.Temperature != 0.7 {
		t.Errorf("answer = %+v", cfg.Answer)
	}
	if cfg.Index.Backend != IndexFlat || cfg.Index.Metric != "l2" {
		t.Errorf("index = %+v", cfg.Index)
	}
	if cfg.History.Backend != HistoryFile || cfg.History.Path != "chat_history.json" {
		t.Errorf("history = %+v", cfg.History)
	}
	if cfg.Ingest.MinLineLen != 30 || cfg.Embedding.Dimensions != 384 {
		t.Errorf("ingest/embedding defaults = %+v / %+v", cfg.Ingest, cfg.Embedding)
	}
	if cfg.HTTP.WriteTimeoutSec <= cfg.LLM.TimeoutSec {
		t.Errorf("write timeout %d must exceed llm timeout %d", cfg.HTTP.WriteTimeoutSec, cfg.LLM.TimeoutSec)
	}
}

func TestParse_ZeroTemperatureIsKept(t *testing.T) {
	cfg, err := Parse([]byte("answer:\n  temperature: 0\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if *cfg.Answer.Temperature != 0 {
		t.Errorf("temperature = %v, want 0", *cfg.Answer.Temperature)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("NURSEALLY_TEST_MODEL", "gpt-4o-mini")
	data := []byte(`
llm:
  backend: hosted
  model: ${NURSEALLY_TEST_MODEL}
  base_url: ${NURSEALLY_TEST_UNSET:-https://api.openai.com/v1}
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("base_url = %q", cfg.LLM.BaseURL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad port", "http:\n  port: 70000\n", "http.port"},
		{"bad llm backend", "llm:\n  backend: remote\n", "llm.backend"},
		{"hosted without model", "llm:\n  backend: hosted\n", "llm.model"},
		{"bad temperature", "answer:\n  temperature: 3\n", "answer.temperature"},
		{"bad metric", "index:\n  metric: dot\n", "index.metric"},
		{"redis index without db", "index:\n  backend: redis\n", "database.enabled"},
		{"redis history without db", "history:\n  backend: redis\n", "database.enabled"},
		{"bad history", "history:\n  backend: s3\n", "history.backend"},
		{"db without addrs", "database:\n  enabled: true\n", "database.addrs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidate_RedisEverywhere(t *testing.T) {
	data := []byte(`
database:
  enabled: true
  addrs: ["localhost:6379"]
index:
  backend: redis
  metric: cosine
history:
  backend: redis
`)
	if _, err := Parse(data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load(local): %v", err)
	}
	if cfg.LLM.Backend != LLMLocal {
		t.Errorf("local config should use the local backend, got %q", cfg.LLM.Backend)
	}
}
