package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/health-helper/internal/bot/keyboards"
	"github.com/vladimiradmaev/health-helper/internal/bot/state"
	"github.com/vladimiradmaev/health-helper/internal/database"
	"github.com/vladimiradmaev/health-helper/internal/domain"
	"github.com/vladimiradmaev/health-helper/internal/health"
	"github.com/vladimiradmaev/health-helper/internal/logger"
)

// CallbackHandler handles callback query messages
type CallbackHandler struct {
	*responder
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(r *responder) *CallbackHandler {
	return &CallbackHandler{responder: r}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery, user *database.User) error {
	// Answer the callback query first
	if _, err := h.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		return err
	}
	if query.Message == nil || query.Message.Chat == nil {
		return nil
	}
	chatID := query.Message.Chat.ID

	switch query.Data {
	case keyboards.MainMenuData:
		return h.sendMainMenu(chatID, user.TelegramID)
	case keyboards.HelpData:
		return h.sendHelp(chatID)
	}

	sess, err := h.session(ctx, user.TelegramID)
	if err != nil {
		return err
	}

	switch data := query.Data; {
	case data == keyboards.ProfileData:
		return h.sendProfile(chatID, sess)
	case data == keyboards.EditAgeData:
		return h.askField(chatID, user.TelegramID, state.WaitingForAge, keyboards.ProfileData)
	case data == keyboards.EditHeightData:
		return h.askField(chatID, user.TelegramID, state.WaitingForHeight, keyboards.ProfileData)
	case data == keyboards.EditWeightData:
		return h.askField(chatID, user.TelegramID, state.WaitingForWeight, keyboards.ProfileData)
	case data == keyboards.EditGlucoseData:
		return h.askField(chatID, user.TelegramID, state.WaitingForGlucose, keyboards.ProfileData)
	case data == keyboards.EditGenderData:
		return h.send(chatID, "Выберите пол:", keyboards.GenderMenu())
	case strings.HasPrefix(data, keyboards.GenderPrefix):
		g := domain.Gender(strings.TrimPrefix(data, keyboards.GenderPrefix))
		sess.Record.Update(health.Partial{Gender: &g})
		return h.sendProfile(chatID, sess)
	case data == keyboards.ClearGlucoseData:
		sess.Record.Update(health.Partial{ClearBloodGlucose: true})
		return h.sendProfile(chatID, sess)
	case data == keyboards.CompleteProfileData:
		return h.completeProfile(ctx, chatID, sess)
	case data == keyboards.RecommendData:
		return h.sendRecommendations(ctx, chatID, sess, false)
	case data == keyboards.RefreshData:
		return h.sendRecommendations(ctx, chatID, sess, true)
	case data == keyboards.SaveData:
		return h.saveHistory(ctx, chatID, sess)
	case data == keyboards.HistoryData:
		return h.sendHistory(ctx, chatID, sess)
	case data == keyboards.ClearHistoryData:
		return h.clearHistory(ctx, chatID, sess)
	case data == keyboards.SettingsData:
		return h.sendSettings(chatID, sess)
	case data == keyboards.SetAPIKeyData:
		return h.askField(chatID, user.TelegramID, state.WaitingForAPIKey, keyboards.SettingsData)
	case data == keyboards.AIOnData:
		return h.setAIEnabled(ctx, chatID, sess, true)
	case data == keyboards.AIOffData:
		return h.setAIEnabled(ctx, chatID, sess, false)
	case data == keyboards.ChooseTierData:
		return h.send(chatID, "Выберите тариф:", keyboards.TierMenu(sess.Recommender.Settings().Tier))
	case strings.HasPrefix(data, keyboards.TierPrefix):
		return h.setTier(ctx, chatID, sess, strings.TrimPrefix(data, keyboards.TierPrefix))
	case data == keyboards.ChooseModelData:
		return h.send(chatID, "Выберите модель:", keyboards.ModelMenu(sess.Recommender.Settings()))
	case strings.HasPrefix(data, keyboards.ModelPrefix):
		return h.setModel(ctx, chatID, sess, strings.TrimPrefix(data, keyboards.ModelPrefix))
	default:
		logger.Warn("Unknown callback data", "data", data, "telegram_id", user.TelegramID)
		return h.sendPlain(chatID, "Неизвестное действие. Используйте /start.")
	}
}
