package llm

import (
	"math"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default without key", func(c *Config) {}, true},
		{"anthropic with key", func(c *Config) { c.Anthropic.APIKey = "k" }, false},
		{"openrouter with key", func(c *Config) { c.Provider = ProviderOpenRouter; c.OpenRouter.APIKey = "k" }, false},
		{"mock needs nothing", func(c *Config) { c.Provider = ProviderMock }, false},
		{"unknown provider", func(c *Config) { c.Provider = "llama" }, true},
		{"negative rate", func(c *Config) { c.Anthropic.APIKey = "k"; c.RateLimit.PerMinute = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDiscoverConfig(t *testing.T) {
	for _, k := range keyEnv {
		t.Setenv(k.env, "")
	}
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected no provider without keys")
	}

	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("OPENAI_API_KEY", "oa-key")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != ProviderOpenAI || cfg.OpenAI.APIKey != "oa-key" {
		t.Fatalf("DiscoverConfig() = %+v, %v; want openai first", cfg, ok)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("discovered config invalid: %v", err)
	}
}

func TestConfig_ModelName(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.ModelName(); got != "claude-haiku" {
		t.Errorf("ModelName() = %q, want claude-haiku", got)
	}
	cfg.Provider = ProviderOpenRouter
	if got := cfg.ModelName(); got != "google/gemini-2.0-flash-exp" {
		t.Errorf("ModelName() = %q", got)
	}
}

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model string
		in    int
		out   int
		want  float64
	}{
		{"claude-haiku-4-5-20251001", 1_000_000, 0, 1},
		{"gpt-4o-mini", 1_000_000, 1_000_000, 0.75},
		{"gpt-4o-2024-08-06", 0, 1_000_000, 10},
		{"google/gemini-2.0-flash-exp", 1_000_000, 0, 0.1},
	}
	for _, tt := range tests {
		c := LookupCost(tt.model)
		if c == nil {
			t.Errorf("LookupCost(%q) = nil", tt.model)
			continue
		}
		if got := c.Cost(tt.in, tt.out); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s cost = %v, want %v", tt.model, got, tt.want)
		}
	}
	if LookupCost("mock") != nil {
		t.Error("LookupCost(mock) should be nil")
	}
}

func TestCheckOutput(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		invalid bool
	}{
		{"plain", `{"summary":"ok"}`, `{"summary":"ok"}`, false},
		{"fenced", "```json\n{\"summary\":\"ok\"}\n```", `{"summary":"ok"}`, false},
		{"bare fence", "```\n{\"summary\":\"ok\"}```", `{"summary":"ok"}`, false},
		{"prose", "Sure! Here it is.", "", true},
		{"missing field", `{"strengths":["calm"]}`, "", true},
		{"wrong type", `{"summary":3}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checkOutput("test", guidanceSchema, tt.text)
			if tt.invalid {
				if !IsKind(err, KindInvalidOutput) {
					t.Fatalf("err = %v, want invalid output", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.want {
				t.Errorf("content = %s, want %s", got, tt.want)
			}
		})
	}

	raw, err := checkOutput("test", nil, "free text")
	if err != nil || string(raw) != "free text" {
		t.Errorf("no schema = %s, %v", raw, err)
	}
}
