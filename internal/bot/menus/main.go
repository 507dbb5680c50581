// Package menus renders bot screens as Markdown text.
package menus

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/health-helper/internal/bot/state"
	"github.com/vladimiradmaev/health-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/health-helper/internal/errors"
	"github.com/vladimiradmaev/health-helper/internal/health"
	"github.com/vladimiradmaev/health-helper/internal/history"
)

// maxHistoryLines limits the history screen to the newest entries.
const maxHistoryLines = 10

func esc(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// MainMenuText is the greeting shown by /start.
func MainMenuText() string {
	return `🩺 *Помощник здоровья*

Заполните профиль, и я:
• Рассчитаю ИМТ и индекс здоровья
• Подберу рекомендации по питанию, активности и образу жизни
• Сохраню результаты в историю

🤖 На тарифах lite и pro рекомендации может готовить ИИ (Gemini или OpenAI).

⚠️ *Важно:* Это справочная информация, а не медицинский диагноз. Всегда консультируйтесь с врачом!

Выберите действие:`
}

// HelpText lists the commands.
func HelpText() string {
	return `Доступные команды:
/start - Главное меню
/profile - Профиль здоровья
/recommend - Получить рекомендации
/save - Сохранить результат в историю
/history - История измерений
/clear_history - Очистить историю
/settings - Настройки ИИ
/tier free|lite|pro - Сменить тариф
/apikey <ключ> - Указать API-ключ
/model <модель> - Выбрать модель ИИ
/ai on|off - Включить или выключить ИИ
/reset - Начать заново
/help - Это сообщение`
}

var genderNames = map[domain.Gender]string{
	domain.GenderMale:   "мужской",
	domain.GenderFemale: "женский",
	domain.GenderOther:  "другой",
}

var categoryNames = map[string]string{
	health.CategoryUnderweight: "недостаточный вес",
	health.CategoryNormal:      "нормальный вес",
	health.CategoryOverweight:  "избыточный вес",
	health.CategoryObese:       "ожирение",
}

var glucoseNames = map[string]string{
	health.GlucoseLow:         "ниже нормы",
	health.GlucoseNormal:      "норма",
	health.GlucosePrediabetes: "преддиабет",
	health.GlucoseDiabetes:    "диапазон диабета",
}

var scoreNames = map[string]string{
	"Excellent":       "отлично",
	"Good":            "хорошо",
	"Fair":            "удовлетворительно",
	"Needs attention": "требует внимания",
}

var fieldNames = map[string]string{
	"age":    "возраст",
	"gender": "пол",
	"height": "рост",
	"weight": "вес",
}

var typeNames = map[domain.RecommendationType]string{
	domain.TypeDiet:      "питание",
	domain.TypeExercise:  "активность",
	domain.TypeLifestyle: "образ жизни",
	domain.TypeMedical:   "медицина",
}

var priorityMarks = map[domain.Priority]string{
	domain.PriorityHigh:   "❗️",
	domain.PriorityMedium: "▫️",
	domain.PriorityLow:    "▪️",
}

const notSet = "не указан"

// FormatProfile renders the health record.
func FormatProfile(r domain.HealthRecord) string {
	var b strings.Builder
	b.WriteString("📝 *Ваш профиль*\n\n")

	if r.Age > 0 {
		fmt.Fprintf(&b, "🎂 Возраст: %d\n", r.Age)
	} else {
		fmt.Fprintf(&b, "🎂 Возраст: %s\n", notSet)
	}
	if name, ok := genderNames[r.Gender]; ok {
		fmt.Fprintf(&b, "⚧ Пол: %s\n", name)
	} else {
		fmt.Fprintf(&b, "⚧ Пол: %s\n", notSet)
	}
	if r.Height > 0 {
		fmt.Fprintf(&b, "📏 Рост: %.0f см\n", r.Height)
	} else {
		fmt.Fprintf(&b, "📏 Рост: %s\n", notSet)
	}
	if r.Weight > 0 {
		fmt.Fprintf(&b, "⚖️ Вес: %.1f кг\n", r.Weight)
	} else {
		fmt.Fprintf(&b, "⚖️ Вес: %s\n", notSet)
	}
	if r.BMI != nil {
		fmt.Fprintf(&b, "📊 ИМТ: %.1f (%s)\n", *r.BMI, categoryNames[r.BMICategory])
	}
	if r.BloodGlucose != nil {
		fmt.Fprintf(&b, "🩸 Глюкоза: %.0f мг/дл (%s)\n", *r.BloodGlucose, glucoseNames[health.GlucoseStatus(*r.BloodGlucose)])
	} else {
		b.WriteString("🩸 Глюкоза: не указана\n")
	}

	b.WriteString("\n")
	if r.CompletedProfile {
		b.WriteString("✅ Профиль заполнен")
	} else {
		b.WriteString("⏳ Профиль не завершён. Заполните возраст, пол, рост и вес и нажмите «Готово».")
	}
	return b.String()
}

// FormatAnalysis renders a recommendation result.
func FormatAnalysis(a domain.Analysis) string {
	var b strings.Builder
	b.WriteString("💡 *Рекомендации*")
	if a.Source == domain.SourceAI {
		name := string(a.Model)
		if m, ok := domain.LookupModel(a.Model); ok {
			name = m.Name
		}
		fmt.Fprintf(&b, " (ИИ: %s)", esc(name))
	} else {
		b.WriteString(" (по правилам)")
	}
	fmt.Fprintf(&b, "\n\n❤️ Индекс здоровья: *%d/100*, %s\n", a.Score, scoreNames[health.ScoreLabel(a.Score)])

	if len(a.Recommendations) == 0 {
		b.WriteString("\nРекомендаций нет.")
		return b.String()
	}
	for i, r := range a.Recommendations {
		fmt.Fprintf(&b, "\n%d. %s %s *%s*\n", i+1, priorityMarks[r.Priority], domain.IconEmoji(r.Icon), esc(r.Title))
		fmt.Fprintf(&b, "_%s_\n", typeNames[r.Type])
		b.WriteString(esc(r.Description))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatHistory renders the newest entries and the trend between the last two.
func FormatHistory(entries []domain.HistoryEntry, trend *history.Trend) string {
	if len(entries) == 0 {
		return "📚 История пуста. Сохраните результат командой /save."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📚 *История* (%d)\n\n", len(entries))
	for i, e := range entries {
		if i == maxHistoryLines {
			fmt.Fprintf(&b, "… и ещё %d\n", len(entries)-maxHistoryLines)
			break
		}
		b.WriteString("📅 ")
		b.WriteString(e.Date.Local().Format("02.01.2006 15:04"))
		if e.HealthData.BMI != nil {
			fmt.Fprintf(&b, " · ИМТ %.1f", *e.HealthData.BMI)
		}
		if e.HealthData.BloodGlucose != nil {
			fmt.Fprintf(&b, " · глюкоза %.0f", *e.HealthData.BloodGlucose)
		}
		if e.Analysis != nil {
			fmt.Fprintf(&b, " · индекс %d", e.Analysis.Score)
		}
		b.WriteString("\n")
	}

	if trend != nil {
		b.WriteString("\n📈 С прошлого раза:")
		if trend.BMIDelta != nil {
			fmt.Fprintf(&b, " ИМТ %+.1f", *trend.BMIDelta)
		}
		fmt.Fprintf(&b, " · индекс %+d", trend.ScoreDelta)
	}
	return b.String()
}

// MaskKey hides all but the edges of an API key.
func MaskKey(key string) string {
	if key == "" {
		return notSet
	}
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// FormatSettings renders the AI settings.
func FormatSettings(s domain.Settings) string {
	model := string(s.Model)
	if m, ok := domain.LookupModel(s.Model); ok {
		model = m.Name
	}
	status := "выключены"
	if s.AIEnabled {
		status = "включены"
	}

	var b strings.Builder
	b.WriteString("⚙️ *Настройки ИИ*\n\n")
	fmt.Fprintf(&b, "💳 Тариф: %s\n", s.Tier)
	fmt.Fprintf(&b, "🧠 Модель: %s\n", esc(model))
	fmt.Fprintf(&b, "🔑 API-ключ: %s\n", esc(MaskKey(s.APIKey)))
	fmt.Fprintf(&b, "🤖 ИИ-рекомендации: %s", status)
	if s.Tier == domain.TierFree {
		b.WriteString("\n\nНа тарифе free доступны только рекомендации по правилам.")
	}
	return b.String()
}

// FieldPrompt asks for the value a dialog state expects.
func FieldPrompt(st string) string {
	switch st {
	case state.WaitingForAge:
		return "Введите ваш возраст (полных лет, например: 35):"
	case state.WaitingForHeight:
		return "Введите рост в сантиметрах (например: 172):"
	case state.WaitingForWeight:
		return "Введите вес в килограммах (например: 68.5):"
	case state.WaitingForGlucose:
		return "Введите уровень глюкозы натощак в мг/дл (например: 92):"
	case state.WaitingForAPIKey:
		return "Отправьте API-ключ провайдера. Сообщение с ключом будет удалено."
	default:
		return "Пожалуйста, используйте меню для выбора действия."
	}
}

// NoticeText explains an entitlement denial in terms of the current settings.
func NoticeText(s domain.Settings) string {
	switch {
	case s.Tier == domain.TierFree:
		return "🔒 ИИ-рекомендации доступны на тарифах lite и pro. Сменить тариф: /tier lite"
	case s.APIKey == "":
		return "🔑 Сначала укажите API-ключ: /apikey <ключ>"
	default:
		return "🔒 Эта модель доступна только на тарифе pro."
	}
}

// ErrorText is the user-facing message for err.
func ErrorText(err error, s domain.Settings) string {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, apperrors.ErrProfileIncomplete):
		if errors.As(err, &appErr) {
			if missing, ok := appErr.Context["missing"].([]string); ok && len(missing) > 0 {
				names := make([]string, 0, len(missing))
				for _, f := range missing {
					names = append(names, fieldNames[f])
				}
				return "📝 Сначала заполните профиль: не хватает " + strings.Join(names, ", ") + ". /profile"
			}
		}
		return "📝 Сначала заполните профиль и нажмите «Готово». /profile"
	case errors.Is(err, apperrors.ErrEntitlementDenied):
		if errors.As(err, &appErr) {
			if _, ok := appErr.Context["model"]; ok {
				return "🔒 Эта модель доступна только на тарифе pro."
			}
		}
		return NoticeText(s)
	case errors.Is(err, apperrors.ErrProviderFailed), errors.Is(err, apperrors.ErrParseFailed):
		return "⚠️ Не удалось получить рекомендации от ИИ. Попробуйте позже или выключите ИИ: /ai off"
	case errors.Is(err, apperrors.ErrValidation):
		return "Некорректное значение. Проверьте ввод и попробуйте ещё раз."
	case errors.Is(err, apperrors.ErrTimeout):
		return "⌛ Превышено время ожидания. Попробуйте ещё раз."
	default:
		return "Произошла ошибка. Пожалуйста, попробуйте ещё раз."
	}
}
