package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/laporwarga/backend/internal/config"
	"github.com/laporwarga/backend/internal/models"
	"github.com/laporwarga/backend/pkg/logger"
	"github.com/ollama/ollama/api"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
	"gorm.io/gorm"
)

var ErrNoLLM = errors.New("no LLM configuration available")

// ChatModel answers one user message under a system prompt.
type ChatModel interface {
	Chat(ctx context.Context, systemPrompt, message string) (string, error)
}

type AIService struct {
	db     *gorm.DB
	config *config.OpenAIConfig
}

func NewAIService(db *gorm.DB, cfg *config.OpenAIConfig) *AIService {
	return &AIService{db: db, config: cfg}
}

// Chat tries the default config, then every other active one, then the file
// configuration. The first non-empty answer wins.
func (s *AIService) Chat(ctx context.Context, systemPrompt, message string) (string, error) {
	configs := s.orderedConfigs()
	if len(configs) == 0 {
		return "", ErrNoLLM
	}

	var lastErr error
	for i := range configs {
		cfg := &configs[i]
		prompt := systemPrompt
		if cfg.SystemPrompt != "" {
			prompt = cfg.SystemPrompt
		}

		content, err := s.callLLM(ctx, cfg, prompt, message)
		if err == nil && strings.TrimSpace(content) != "" {
			logger.Debug().Str("llm", cfg.Name).Int("chars", len(content)).Msg("[AI] Answer received")
			return content, nil
		}
		if err == nil {
			err = fmt.Errorf("%s returned an empty answer", cfg.Name)
		}
		lastErr = err
		logger.Warnf("[AI] LLM %s failed: %v, trying next...", cfg.Name, err)
	}
	return "", fmt.Errorf("all LLMs failed, last error: %w", lastErr)
}

func (s *AIService) orderedConfigs() []models.LLMConfig {
	var configs []models.LLMConfig
	if s.db != nil {
		s.db.Where("is_active = ?", true).Order("is_default DESC, id ASC").Find(&configs)
	}
	if len(configs) == 0 && s.config != nil && s.config.APIKey != "" {
		configs = append(configs, models.LLMConfig{
			Name:     "config",
			Provider: "openai",
			BaseURL:  s.config.BaseURL,
			APIKey:   s.config.APIKey,
			Model:    s.config.Model,
		})
	}
	return configs
}

// callLLM dispatches on the Provider field.
func (s *AIService) callLLM(ctx context.Context, cfg *models.LLMConfig, system, message string) (string, error) {
	switch cfg.Provider {
	case "anthropic":
		return s.callAnthropic(ctx, cfg, system, message)
	case "ollama":
		return s.callOllama(ctx, cfg, system, message)
	case "gemini":
		return s.callGemini(ctx, cfg, system, message)
	case "azure":
		return s.callOpenAICompatible(ctx, openai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL), cfg, system, message)
	default:
		clientConfig := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}
		return s.callOpenAICompatible(ctx, clientConfig, cfg, system, message)
	}
}

func temperatureOf(cfg *models.LLMConfig) float32 {
	if cfg.Temperature > 0 {
		return float32(cfg.Temperature)
	}
	return 0.3
}

func (s *AIService) callOpenAICompatible(ctx context.Context, clientConfig openai.ClientConfig, cfg *models.LLMConfig, system, message string) (string, error) {
	client := openai.NewClientWithConfig(clientConfig)

	var messages []openai.ChatCompletionMessage
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})

	req := openai.ChatCompletionRequest{
		Model:       cfg.Model,
		Messages:    messages,
		Temperature: temperatureOf(cfg),
	}
	if cfg.MaxTokens > 0 {
		req.MaxTokens = cfg.MaxTokens
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in OpenAI response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *AIService) callAnthropic(ctx context.Context, cfg *models.LLMConfig, system, message string) (string, error) {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	maxTokens := int64(cfg.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 1024
	}
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(message)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	return content.String(), nil
}

func (s *AIService) callOllama(ctx context.Context, cfg *models.LLMConfig, system, message string) (string, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid Ollama base URL: %w", err)
	}
	client := api.NewClient(u, http.DefaultClient)

	model := cfg.Model
	if model == "" {
		model = "llama3"
	}

	var messages []api.Message
	if system != "" {
		messages = append(messages, api.Message{Role: "system", Content: system})
	}
	messages = append(messages, api.Message{Role: "user", Content: message})

	var content strings.Builder
	err = client.Chat(ctx, &api.ChatRequest{
		Model:    model,
		Messages: messages,
		Options: map[string]interface{}{
			"temperature": temperatureOf(cfg),
		},
	}, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("Ollama API error: %w", err)
	}
	return content.String(), nil
}

func (s *AIService) callGemini(ctx context.Context, cfg *models.LLMConfig, system, message string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("Gemini client error: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperatureOf(cfg)),
	}
	if system != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(message), genCfg)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	return resp.Text(), nil
}
