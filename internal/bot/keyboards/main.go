package keyboards

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/health-helper/internal/domain"
)

// Callback data understood by the callback handler.
const (
	MainMenuData        = "main_menu"
	ProfileData         = "profile"
	EditAgeData         = "edit_age"
	EditGenderData      = "edit_gender"
	EditHeightData      = "edit_height"
	EditWeightData      = "edit_weight"
	EditGlucoseData     = "edit_glucose"
	ClearGlucoseData    = "clear_glucose"
	CompleteProfileData = "complete_profile"
	RecommendData       = "recommend"
	RefreshData         = "refresh"
	SaveData            = "save"
	HistoryData         = "history"
	ClearHistoryData    = "clear_history"
	SettingsData        = "settings"
	SetAPIKeyData       = "set_apikey"
	AIOnData            = "ai_on"
	AIOffData           = "ai_off"
	ChooseTierData      = "choose_tier"
	ChooseModelData     = "choose_model"
	HelpData            = "help"

	GenderPrefix = "gender_"
	TierPrefix   = "tier_"
	ModelPrefix  = "model_"
)

func backRow() []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Главное меню", MainMenuData),
	)
}

// MainMenu creates the main menu keyboard
func MainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Профиль", ProfileData),
			tgbotapi.NewInlineKeyboardButtonData("💡 Рекомендации", RecommendData),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📚 История", HistoryData),
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Настройки ИИ", SettingsData),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❓ Помощь", HelpData),
		),
	)
}

// ProfileMenu creates the profile editor keyboard
func ProfileMenu(r domain.HealthRecord) tgbotapi.InlineKeyboardMarkup {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎂 Возраст", EditAgeData),
			tgbotapi.NewInlineKeyboardButtonData("⚧ Пол", EditGenderData),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📏 Рост", EditHeightData),
			tgbotapi.NewInlineKeyboardButtonData("⚖️ Вес", EditWeightData),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🩸 Глюкоза", EditGlucoseData),
		),
	)

	if r.BloodGlucose != nil {
		keyboard.InlineKeyboard[2] = append(keyboard.InlineKeyboard[2],
			tgbotapi.NewInlineKeyboardButtonData("🧹 Сбросить глюкозу", ClearGlucoseData))
	}
	if !r.CompletedProfile {
		keyboard.InlineKeyboard = append(keyboard.InlineKeyboard,
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Готово", CompleteProfileData),
			),
		)
	}

	keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, backRow())
	return keyboard
}

// GenderMenu creates the gender picker keyboard
func GenderMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Мужской", GenderPrefix+string(domain.GenderMale)),
			tgbotapi.NewInlineKeyboardButtonData("Женский", GenderPrefix+string(domain.GenderFemale)),
			tgbotapi.NewInlineKeyboardButtonData("Другой", GenderPrefix+string(domain.GenderOther)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Назад", ProfileData),
		),
	)
}

// RecommendationsMenu is shown under a recommendation result
func RecommendationsMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💾 Сохранить в историю", SaveData),
			tgbotapi.NewInlineKeyboardButtonData("🔄 Обновить", RefreshData),
		),
		backRow(),
	)
}

// HistoryMenu creates the history keyboard
func HistoryMenu(hasEntries bool) tgbotapi.InlineKeyboardMarkup {
	keyboard := tgbotapi.NewInlineKeyboardMarkup()
	if hasEntries {
		keyboard.InlineKeyboard = append(keyboard.InlineKeyboard,
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🗑️ Очистить историю", ClearHistoryData),
			),
		)
	}
	keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, backRow())
	return keyboard
}

// SettingsMenu creates the AI settings keyboard
func SettingsMenu(s domain.Settings) tgbotapi.InlineKeyboardMarkup {
	toggle := tgbotapi.NewInlineKeyboardButtonData("🤖 Включить ИИ", AIOnData)
	if s.AIEnabled {
		toggle = tgbotapi.NewInlineKeyboardButtonData("⏸ Выключить ИИ", AIOffData)
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(toggle),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Тариф", ChooseTierData),
			tgbotapi.NewInlineKeyboardButtonData("🧠 Модель", ChooseModelData),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔑 API-ключ", SetAPIKeyData),
		),
		backRow(),
	)
}

// TierMenu creates the tier picker keyboard, marking the current tier
func TierMenu(current domain.Tier) tgbotapi.InlineKeyboardMarkup {
	row := tgbotapi.NewInlineKeyboardRow()
	for _, t := range []domain.Tier{domain.TierFree, domain.TierLite, domain.TierPro} {
		label := string(t)
		if t == current {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, TierPrefix+string(t)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		row,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Назад", SettingsData),
		),
	)
}

// ModelMenu lists the catalog; models the tier cannot use are locked.
func ModelMenu(s domain.Settings) tgbotapi.InlineKeyboardMarkup {
	keyboard := tgbotapi.NewInlineKeyboardMarkup()
	for _, m := range domain.Models() {
		label := m.Name
		switch {
		case m.ID == s.Model:
			label = "✅ " + label
		case !s.Tier.Allows(m):
			label = "🔒 " + label
		}
		keyboard.InlineKeyboard = append(keyboard.InlineKeyboard,
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(label, ModelPrefix+string(m.ID)),
			),
		)
	}
	keyboard.InlineKeyboard = append(keyboard.InlineKeyboard,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Назад", SettingsData),
		),
	)
	return keyboard
}

// Cancel returns to the given menu while waiting for input
func Cancel(data string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Отмена", data),
		),
	)
}
