package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/health-helper/internal/bot/keyboards"
	"github.com/vladimiradmaev/health-helper/internal/bot/state"
	"github.com/vladimiradmaev/health-helper/internal/database"
	"github.com/vladimiradmaev/health-helper/internal/logger"
)

// CommandHandler handles bot commands
type CommandHandler struct {
	*responder
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(r *responder) *CommandHandler {
	return &CommandHandler{responder: r}
}

// Handle processes a command message
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *database.User) error {
	chatID := message.Chat.ID
	args := strings.TrimSpace(message.CommandArguments())
	logger.Info("Handling command", "command", message.Command(), "telegram_id", user.TelegramID)

	switch message.Command() {
	case "start":
		return h.sendMainMenu(chatID, user.TelegramID)
	case "help":
		return h.sendHelp(chatID)
	}

	sess, err := h.session(ctx, user.TelegramID)
	if err != nil {
		return err
	}

	switch message.Command() {
	case "profile":
		return h.sendProfile(chatID, sess)
	case "recommend":
		return h.sendRecommendations(ctx, chatID, sess, false)
	case "save":
		return h.saveHistory(ctx, chatID, sess)
	case "history":
		return h.sendHistory(ctx, chatID, sess)
	case "clear_history":
		return h.clearHistory(ctx, chatID, sess)
	case "settings":
		return h.sendSettings(chatID, sess)
	case "tier":
		if args == "" {
			return h.send(chatID, "Выберите тариф:", keyboards.TierMenu(sess.Recommender.Settings().Tier))
		}
		return h.setTier(ctx, chatID, sess, strings.ToLower(args))
	case "model":
		if args == "" {
			return h.send(chatID, "Выберите модель:", keyboards.ModelMenu(sess.Recommender.Settings()))
		}
		return h.setModel(ctx, chatID, sess, args)
	case "apikey":
		if args == "" {
			return h.askField(chatID, user.TelegramID, state.WaitingForAPIKey, keyboards.SettingsData)
		}
		return h.setAPIKey(ctx, chatID, message.MessageID, sess, args)
	case "ai":
		switch strings.ToLower(args) {
		case "on":
			return h.setAIEnabled(ctx, chatID, sess, true)
		case "off":
			return h.setAIEnabled(ctx, chatID, sess, false)
		default:
			return h.sendPlain(chatID, "Используйте /ai on или /ai off")
		}
	case "reset":
		return h.reset(chatID, sess)
	default:
		return h.handleUnknownCommand(chatID)
	}
}

// handleUnknownCommand handles unknown commands
func (h *CommandHandler) handleUnknownCommand(chatID int64) error {
	return h.sendPlain(chatID, "Неизвестная команда. Используйте /help для просмотра доступных команд.")
}
