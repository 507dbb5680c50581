package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/health-helper/internal/config"
	"github.com/vladimiradmaev/health-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/health-helper/internal/errors"
)

func sampleRecord() domain.HealthRecord {
	return domain.HealthRecord{
		Age:              42,
		Gender:           domain.GenderMale,
		Height:           180,
		Weight:           95,
		BMI:              domain.Float(29.3),
		BMICategory:      "Overweight",
		CompletedProfile: true,
	}
}

// chatServer fakes an OpenAI-compatible chat completion endpoint.
func chatServer(t *testing.T, status int, content string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer user-key", r.Header.Get("Authorization"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(baseURL string) *AIService {
	return NewAIService(config.AIConfig{OpenAIBaseURL: baseURL, Timeout: 5 * time.Second})
}

func TestFetchRecommendationsOpenAI(t *testing.T) {
	var body map[string]any
	srv := chatServer(t, http.StatusOK, "```json\n[{\"id\":\"walk\",\"title\":\"Гуляйте\",\"type\":\"exercise\",\"priority\":\"high\"}]\n```", &body)

	recs, err := newTestService(srv.URL+"/v1").FetchRecommendations(context.Background(), sampleRecord(), "user-key", domain.ModelGPT4oMini)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "walk", recs[0].ID)
	assert.Equal(t, domain.TypeExercise, recs[0].Type)

	assert.Equal(t, "gpt-4o-mini", body["model"])
}

func TestFetchRecommendationsProviderError(t *testing.T) {
	srv := chatServer(t, http.StatusTooManyRequests, "", nil)

	_, err := newTestService(srv.URL+"/v1").FetchRecommendations(context.Background(), sampleRecord(), "user-key", domain.ModelGPT4oMini)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrProviderFailed))
	assert.Equal(t, "AI fetch failed", err.(*apperrors.AppError).Message)
}

func TestFetchRecommendationsParseError(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "I cannot help with that.", nil)

	_, err := newTestService(srv.URL+"/v1").FetchRecommendations(context.Background(), sampleRecord(), "user-key", domain.ModelGPT4oMini)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrParseFailed))
	assert.False(t, errors.Is(err, apperrors.ErrProviderFailed))
}

func TestFetchRecommendationsUnknownModel(t *testing.T) {
	_, err := newTestService("").FetchRecommendations(context.Background(), sampleRecord(), "k", "gpt-2")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

type stubGenerator struct {
	apiKey string
	prompt string
	reply  string
	err    error
}

func (g *stubGenerator) Generate(_ context.Context, apiKey string, _ domain.ModelID, prompt string) (string, error) {
	g.apiKey = apiKey
	g.prompt = prompt
	return g.reply, g.err
}

func TestFetchRecommendationsGeminiRouting(t *testing.T) {
	gemini := &stubGenerator{reply: `{"recommendations":[{"id":"g1"}]}`}
	s := &AIService{generators: map[domain.Provider]generator{domain.ProviderGemini: gemini}}

	recs, err := s.FetchRecommendations(context.Background(), sampleRecord(), "k", domain.ModelGeminiFlash)
	require.NoError(t, err)
	assert.Equal(t, "g1", recs[0].ID)
	assert.Equal(t, "k", gemini.apiKey)
	assert.Contains(t, gemini.prompt, "BMI: 29.3 (Overweight)")
}

func TestResolveKeySwapsOperatorKeys(t *testing.T) {
	s := NewAIService(config.AIConfig{GeminiAPIKey: "op-gemini", OpenAIAPIKey: "op-openai"})

	assert.Equal(t, "op-openai", s.resolveKey("op-gemini", domain.ProviderOpenAI))
	assert.Equal(t, "op-gemini", s.resolveKey("op-gemini", domain.ProviderGemini))
	assert.Equal(t, "mine", s.resolveKey("mine", domain.ProviderOpenAI))
}

func TestBuildRecommendationPrompt(t *testing.T) {
	p := BuildRecommendationPrompt(sampleRecord())
	assert.Contains(t, p, "Age: 42")
	assert.Contains(t, p, "Height: 180 cm")
	assert.Contains(t, p, "Fasting blood glucose: not provided")
	assert.Contains(t, p, "diet|exercise|lifestyle|medical")

	r := sampleRecord()
	r.BloodGlucose = domain.Float(0)
	assert.Contains(t, BuildRecommendationPrompt(r), "Fasting blood glucose: 0 mg/dL")
}
