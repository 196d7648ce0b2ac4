package factory

import (
	"fmt"

	"braincells-be/pkg/llm"
	"braincells-be/pkg/llm/ollama"
	"braincells-be/pkg/llm/openai"
)

type Params struct {
	Provider  string
	ModelName string
	BaseURL   string
	APIKey    string
}

func NewLLMProvider(p Params) (llm.LLMProvider, error) {
	switch p.Provider {
	case "openai", "":
		if p.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return openai.NewOpenAIProvider(p.APIKey, p.BaseURL, p.ModelName), nil
	case "ollama":
		baseURL := p.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, p.ModelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", p.Provider)
	}
}
