package embedding

import "fmt"

func NewProvider(providerType, model, apiKey, ollamaBaseURL string) (EmbeddingProvider, error) {
	switch providerType {
	case "gemini":
		return NewGeminiProvider(apiKey, model), nil
	case "ollama":
		return NewOllamaProvider(ollamaBaseURL, model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", providerType)
	}
}
