package llm

import (
	"strings"
	"testing"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider != nil {
		t.Error("expected nil provider when disabled")
	}
}

func TestNewProvider_OpenAI(t *testing.T) {
	provider, err := NewProvider(Config{Provider: "openai", APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider == nil || provider.Name() != "openai" {
		t.Errorf("expected openai provider, got %v", provider)
	}
}

func TestNewProvider_OpenAI_NoKey(t *testing.T) {
	_, err := NewProvider(Config{Provider: "openai"})
	if err == nil {
		t.Fatal("expected error without API key or base URL")
	}
}

func TestNewProvider_OpenAI_BaseURLOnly(t *testing.T) {
	// Compatible endpoints may need no key at all
	provider, err := NewProvider(Config{Provider: "openai", BaseURL: "http://localhost:8080/v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider == nil {
		t.Error("expected provider for base-URL-only config")
	}
}

func TestNewProvider_Ollama(t *testing.T) {
	// Ollama rides the OpenAI-compatible client with local defaults
	provider, err := NewProvider(Config{Provider: "ollama"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider == nil {
		t.Fatal("expected provider")
	}
}

func TestNewProvider_CaseInsensitive(t *testing.T) {
	provider, err := NewProvider(Config{Provider: "OpenAI", APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider == nil {
		t.Error("expected provider for mixed-case name")
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	_, err := NewProvider(Config{Provider: "anthropic"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "anthropic") {
		t.Errorf("expected error to name the provider, got %v", err)
	}
}
