package menus

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vladimiradmaev/health-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/health-helper/internal/errors"
	"github.com/vladimiradmaev/health-helper/internal/history"
)

func TestFormatProfile(t *testing.T) {
	empty := FormatProfile(domain.HealthRecord{})
	assert.Contains(t, empty, "Возраст: не указан")
	assert.Contains(t, empty, "Глюкоза: не указана")
	assert.Contains(t, empty, "Профиль не завершён")

	full := FormatProfile(domain.HealthRecord{
		Age:              30,
		Gender:           domain.GenderFemale,
		Height:           170,
		Weight:           70,
		BMI:              domain.Float(24.2),
		BMICategory:      "Normal weight",
		BloodGlucose:     domain.Float(0),
		CompletedProfile: true,
	})
	assert.Contains(t, full, "Пол: женский")
	assert.Contains(t, full, "ИМТ: 24.2 (нормальный вес)")
	assert.Contains(t, full, "Глюкоза: 0 мг/дл (ниже нормы)")
	assert.Contains(t, full, "Профиль заполнен")
}

func TestFormatAnalysis(t *testing.T) {
	text := FormatAnalysis(domain.Analysis{
		Score:  85,
		Source: domain.SourceAI,
		Model:  domain.ModelGPT4oMini,
		Recommendations: []domain.Recommendation{
			{Title: "Walk_more", Description: "Every *day*", Type: domain.TypeExercise, Priority: domain.PriorityHigh, Icon: "unicorn"},
		},
	})
	assert.Contains(t, text, "ИИ: GPT-4o mini")
	assert.Contains(t, text, "*85/100*, отлично")
	assert.Contains(t, text, `Walk\_more`)
	assert.Contains(t, text, `Every \*day\*`)
	assert.Contains(t, text, "❤️")
	assert.Contains(t, text, "активность")

	rules := FormatAnalysis(domain.Analysis{Score: 40, Source: domain.SourceRules})
	assert.Contains(t, rules, "по правилам")
	assert.Contains(t, rules, "требует внимания")
	assert.Contains(t, rules, "Рекомендаций нет")
}

func TestFormatHistory(t *testing.T) {
	assert.Contains(t, FormatHistory(nil, nil), "История пуста")

	entries := make([]domain.HistoryEntry, 12)
	for i := range entries {
		entries[i] = domain.HistoryEntry{
			Date:       time.Date(2024, 1, 1+i, 10, 0, 0, 0, time.UTC),
			HealthData: domain.HealthRecord{BMI: domain.Float(25)},
			Analysis:   &domain.Analysis{Score: 70},
		}
	}
	delta := -0.5
	text := FormatHistory(entries, &history.Trend{BMIDelta: &delta, ScoreDelta: 3})

	assert.Contains(t, text, "*История* (12)")
	assert.Equal(t, maxHistoryLines, strings.Count(text, "📅"))
	assert.Contains(t, text, "и ещё 2")
	assert.Contains(t, text, "ИМТ -0.5")
	assert.Contains(t, text, "индекс +3")
}

func TestFormatSettings(t *testing.T) {
	text := FormatSettings(domain.Settings{Tier: domain.TierFree, Model: domain.ModelGeminiFlash})
	assert.Contains(t, text, "Тариф: free")
	assert.Contains(t, text, "Gemini 1.5 Flash")
	assert.Contains(t, text, "API-ключ: не указан")
	assert.Contains(t, text, "только рекомендации по правилам")

	text = FormatSettings(domain.Settings{Tier: domain.TierPro, APIKey: "sk-1234567890", AIEnabled: true})
	assert.Contains(t, text, "sk-1...7890")
	assert.NotContains(t, text, "1234567890")
	assert.Contains(t, text, "включены")
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "не указан", MaskKey(""))
	assert.Equal(t, "***", MaskKey("short"))
	assert.Equal(t, "abcd...wxyz", MaskKey("abcdefghijklmnopqrstuvwxyz"))
}

func TestErrorText(t *testing.T) {
	free := domain.Settings{Tier: domain.TierFree}
	lite := domain.Settings{Tier: domain.TierLite}

	tests := []struct {
		name     string
		err      error
		settings domain.Settings
		want     string
	}{
		{"incomplete with fields", apperrors.NewProfileIncompleteError([]string{"age", "weight"}), free, "не хватает возраст, вес"},
		{"incomplete", apperrors.NewProfileIncompleteError(nil), free, "нажмите «Готово»"},
		{"entitlement on free", apperrors.NewEntitlementError("x"), free, "/tier lite"},
		{"entitlement without key", apperrors.NewEntitlementError("x"), lite, "/apikey"},
		{"premium model", apperrors.NewEntitlementError("x").WithContext("model", "gpt-4o"), lite, "только на тарифе pro"},
		{"provider", apperrors.NewProviderError(errors.New("503"), "openai"), lite, "Не удалось получить рекомендации от ИИ"},
		{"parse", apperrors.NewParseError(nil, "no json"), lite, "Не удалось получить рекомендации от ИИ"},
		{"validation", apperrors.NewValidationError("bad"), lite, "Некорректное значение"},
		{"generic", errors.New("boom"), lite, "Произошла ошибка"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, ErrorText(tt.err, tt.settings), tt.want)
		})
	}
}
