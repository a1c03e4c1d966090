package services

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/prompthive/prompthive/internal/config"
	"github.com/prompthive/prompthive/internal/models"
	"github.com/prompthive/prompthive/pkg/logger"
	"github.com/prompthive/prompthive/pkg/response"
	"github.com/sashabaranov/go-openai"
	"gorm.io/gorm"
)

// AIService calls the external completion API for the improve endpoint.
// Provider configs come from the llm_configs table (default first, then
// active backups) with the config file as last resort. No automatic retry
// of a failed call: a failing provider is skipped, a fully failed chain
// surfaces to the caller immediately.
type AIService struct {
	db        *gorm.DB
	config    *config.OpenAIConfig
	configSvc *LLMConfigService
}

func NewAIService(db *gorm.DB, cfg *config.OpenAIConfig) *AIService {
	return &AIService{
		db:        db,
		config:    cfg,
		configSvc: NewLLMConfigService(db),
	}
}

// CompletionResult is the successful output of a completion call.
type CompletionResult struct {
	Content  string
	Provider string
	Model    string
}

// Complete sends system+user messages through the provider chain and
// returns the first successful response. Every attempt is recorded in
// ai_usage_logs.
func (s *AIService) Complete(ctx context.Context, userID *uint, action, systemPrompt, input string) (*CompletionResult, error) {
	configs := s.orderedConfigs()
	if len(configs) == 0 {
		return nil, response.NewUpstreamError("no completion API configured")
	}

	var lastErr error
	for i, llmConfig := range configs {
		logger.Infof("[AI] attempt %d/%d provider=%s model=%s", i+1, len(configs), llmConfig.Provider, llmConfig.Model)

		start := time.Now()
		result, usage, err := s.callProvider(ctx, &llmConfig, systemPrompt, input)
		s.recordUsage(userID, &llmConfig, action, usage, time.Since(start), err)

		if err == nil {
			return result, nil
		}
		lastErr = err
		logger.Warnf("[AI] provider %s failed: %v", llmConfig.Provider, err)
	}

	logger.Errorf("[AI] all providers failed, last error: %v", lastErr)
	return nil, response.NewUpstreamError("completion API unavailable")
}

// orderedConfigs returns the provider chain: DB configs first, config-file
// fallback appended when it carries an API key.
func (s *AIService) orderedConfigs() []models.LLMConfig {
	configs, err := s.configSvc.OrderedActive()
	if err != nil {
		logger.Warnf("[AI] failed to load LLM configs: %v", err)
	}

	if s.config != nil && s.config.APIKey != "" {
		configs = append(configs, models.LLMConfig{
			Name:     "fallback",
			Provider: "openai",
			BaseURL:  s.config.BaseURL,
			APIKey:   s.config.APIKey,
			Model:    s.config.Model,
		})
	}
	return configs
}

type tokenUsage struct {
	prompt     int
	completion int
}

func (s *AIService) callProvider(ctx context.Context, llmConfig *models.LLMConfig, systemPrompt, input string) (*CompletionResult, tokenUsage, error) {
	switch llmConfig.Provider {
	case "anthropic":
		return s.callAnthropic(ctx, llmConfig, systemPrompt, input)
	default:
		// openai and OpenAI-compatible endpoints
		return s.callOpenAI(ctx, llmConfig, systemPrompt, input)
	}
}

func (s *AIService) callOpenAI(ctx context.Context, llmConfig *models.LLMConfig, systemPrompt, input string) (*CompletionResult, tokenUsage, error) {
	clientConfig := openai.DefaultConfig(llmConfig.APIKey)
	if llmConfig.BaseURL != "" {
		clientConfig.BaseURL = llmConfig.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	temperature := float32(0.7)
	if llmConfig.Temperature > 0 {
		temperature = float32(llmConfig.Temperature)
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: llmConfig.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
		Temperature: temperature,
	})
	if err != nil {
		return nil, tokenUsage{}, fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, tokenUsage{}, fmt.Errorf("empty response from openai")
	}

	usage := tokenUsage{prompt: resp.Usage.PromptTokens, completion: resp.Usage.CompletionTokens}
	return &CompletionResult{
		Content:  resp.Choices[0].Message.Content,
		Provider: llmConfig.Provider,
		Model:    llmConfig.Model,
	}, usage, nil
}

func (s *AIService) callAnthropic(ctx context.Context, llmConfig *models.LLMConfig, systemPrompt, input string) (*CompletionResult, tokenUsage, error) {
	opts := []option.RequestOption{option.WithAPIKey(llmConfig.APIKey)}
	if llmConfig.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(llmConfig.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	maxTokens := int64(llmConfig.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 4096
	}

	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(llmConfig.Model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(input)),
		},
	})
	if err != nil {
		return nil, tokenUsage{}, fmt.Errorf("anthropic API error: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	usage := tokenUsage{prompt: int(resp.Usage.InputTokens), completion: int(resp.Usage.OutputTokens)}
	return &CompletionResult{
		Content:  content,
		Provider: llmConfig.Provider,
		Model:    llmConfig.Model,
	}, usage, nil
}

func (s *AIService) recordUsage(userID *uint, llmConfig *models.LLMConfig, action string, usage tokenUsage, latency time.Duration, callErr error) {
	entry := models.AIUsageLog{
		UserID:           userID,
		Action:           action,
		Provider:         llmConfig.Provider,
		Model:            llmConfig.Model,
		PromptTokens:     usage.prompt,
		CompletionTokens: usage.completion,
		TotalTokens:      usage.prompt + usage.completion,
		LatencyMs:        latency.Milliseconds(),
		Success:          callErr == nil,
	}
	if llmConfig.ID != 0 {
		id := llmConfig.ID
		entry.LLMConfigID = &id
	}
	if callErr != nil {
		msg := callErr.Error()
		if len(msg) > 500 {
			msg = msg[:500]
		}
		entry.ErrorMessage = msg
	}

	if err := s.db.Create(&entry).Error; err != nil {
		logger.Warnf("[AI] failed to record usage log: %v", err)
	}
}
