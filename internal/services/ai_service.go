package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"

	"github.com/vladimiradmaev/health-helper/internal/config"
	"github.com/vladimiradmaev/health-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/health-helper/internal/errors"
	"github.com/vladimiradmaev/health-helper/internal/health"
	"github.com/vladimiradmaev/health-helper/internal/logger"
	"github.com/vladimiradmaev/health-helper/internal/recommend"
)

var errEmptyResponse = errors.New("empty response from provider")

// generator sends one prompt to a provider and returns the reply text.
type generator interface {
	Generate(ctx context.Context, apiKey string, model domain.ModelID, prompt string) (string, error)
}

// AIService fetches recommendations from a text-generation provider. A client
// is created per call because every user brings their own key.
type AIService struct {
	generators   map[domain.Provider]generator
	timeout      time.Duration
	operatorKeys map[domain.Provider]string
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		generators: map[domain.Provider]generator{
			domain.ProviderGemini: geminiGenerator{},
			domain.ProviderOpenAI: openaiGenerator{baseURL: cfg.OpenAIBaseURL},
		},
		timeout: cfg.Timeout,
		operatorKeys: map[domain.Provider]string{
			domain.ProviderGemini: cfg.GeminiAPIKey,
			domain.ProviderOpenAI: cfg.OpenAIAPIKey,
		},
	}
}

// FetchRecommendations makes a single attempt against the provider serving
// model. Transport failures become a ProviderError; a ParseError from the
// reply is returned unchanged.
func (s *AIService) FetchRecommendations(ctx context.Context, record domain.HealthRecord, apiKey string, model domain.ModelID) ([]domain.Recommendation, error) {
	m, ok := domain.LookupModel(model)
	if !ok {
		return nil, apperrors.NewValidationError("unknown model: " + string(model))
	}
	gen, ok := s.generators[m.Provider]
	if !ok {
		return nil, apperrors.NewValidationError("no client for provider: " + string(m.Provider))
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := gen.Generate(ctx, s.resolveKey(apiKey, m.Provider), m.ID, BuildRecommendationPrompt(record))
	if err != nil {
		logger.Warn("AI provider call failed",
			"provider", m.Provider, "model", m.ID, "duration", time.Since(start), "error", err)
		return nil, apperrors.NewProviderError(err, string(m.Provider)).WithContext("model", string(m.ID))
	}
	logger.Debug("AI provider replied",
		"provider", m.Provider, "model", m.ID, "duration", time.Since(start), "length", len(text))

	return recommend.Parse(text)
}

// resolveKey swaps an operator key for the one of the target provider so a
// user seeded with the operator key can switch models freely.
func (s *AIService) resolveKey(apiKey string, provider domain.Provider) string {
	for _, k := range s.operatorKeys {
		if k != "" && k == apiKey {
			if own := s.operatorKeys[provider]; own != "" {
				return own
			}
		}
	}
	return apiKey
}

// BuildRecommendationPrompt renders the health record into a prompt that asks
// for a strict JSON array.
func BuildRecommendationPrompt(r domain.HealthRecord) string {
	var b strings.Builder
	b.WriteString(`You are a preventive-health assistant. Give personalised, practical lifestyle recommendations based on the user's health data. You do not diagnose.

HEALTH DATA:
`)
	fmt.Fprintf(&b, "- Age: %s\n", orNotProvided(r.Age > 0, fmt.Sprintf("%d", r.Age)))
	fmt.Fprintf(&b, "- Gender: %s\n", orNotProvided(r.Gender != "", string(r.Gender)))
	fmt.Fprintf(&b, "- Height: %s\n", orNotProvided(r.Height > 0, fmt.Sprintf("%.0f cm", r.Height)))
	fmt.Fprintf(&b, "- Weight: %s\n", orNotProvided(r.Weight > 0, fmt.Sprintf("%.1f kg", r.Weight)))
	if r.BMI != nil {
		fmt.Fprintf(&b, "- BMI: %.1f (%s)\n", *r.BMI, r.BMICategory)
	} else {
		b.WriteString("- BMI: not provided\n")
	}
	if r.BloodGlucose != nil {
		fmt.Fprintf(&b, "- Fasting blood glucose: %.0f mg/dL (%s)\n", *r.BloodGlucose, health.GlucoseStatus(*r.BloodGlucose))
	} else {
		b.WriteString("- Fasting blood glucose: not provided\n")
	}

	b.WriteString(`
REQUIREMENTS:
- Give 3 to 6 recommendations, most important first
- Write title and description in Russian
- Keep each description to one or two sentences

CRITICAL JSON FORMAT REQUIREMENTS:
- Your response MUST be a valid JSON array
- Do not include any markdown formatting
- Do not include any explanatory text before or after the JSON
- Every element must have these exact fields:
  {
    "id": "short-unique-id",
    "title": "Short title",
    "description": "Actionable advice",
    "type": "diet|exercise|lifestyle|medical",
    "priority": "high|medium|low",
    "icon": "heart-pulse|apple|dumbbell|moon|droplet|stethoscope|salad|footprints|scale|activity"
  }`)
	return b.String()
}

func orNotProvided(ok bool, value string) string {
	if !ok {
		return "not provided"
	}
	return value
}

type geminiGenerator struct{}

func (geminiGenerator) Generate(ctx context.Context, apiKey string, model domain.ModelID, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	m := client.GenerativeModel(string(model))
	m.SetTemperature(0.3)

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", errEmptyResponse
	}
	return b.String(), nil
}

type openaiGenerator struct {
	baseURL string
}

func (g openaiGenerator) Generate(ctx context.Context, apiKey string, model domain.ModelID, prompt string) (string, error) {
	cfg := openai.DefaultConfig(apiKey)
	if g.baseURL != "" {
		cfg.BaseURL = g.baseURL
	}
	client := openai.NewClientWithConfig(cfg)

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       string(model),
		Temperature: 0.3,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
