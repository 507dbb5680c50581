package handlers

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/health-helper/internal/bot/keyboards"
	"github.com/vladimiradmaev/health-helper/internal/bot/menus"
	"github.com/vladimiradmaev/health-helper/internal/bot/state"
	"github.com/vladimiradmaev/health-helper/internal/database"
	"github.com/vladimiradmaev/health-helper/internal/health"
)

// TextHandler handles text messages
type TextHandler struct {
	*responder
}

// NewTextHandler creates a new text handler
func NewTextHandler(r *responder) *TextHandler {
	return &TextHandler{responder: r}
}

// Handle processes a text message
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *database.User) error {
	chatID := message.Chat.ID
	userState := h.stateManager.GetUserState(user.TelegramID)

	switch userState {
	case state.WaitingForAge, state.WaitingForHeight, state.WaitingForWeight, state.WaitingForGlucose:
	case state.WaitingForAPIKey:
		sess, err := h.session(ctx, user.TelegramID)
		if err != nil {
			return err
		}
		h.stateManager.ClearUserState(user.TelegramID)
		return h.setAPIKey(ctx, chatID, message.MessageID, sess, message.Text)
	default:
		return h.sendPlain(chatID, menus.FieldPrompt(state.None))
	}

	partial, ok := parseField(userState, message.Text)
	if !ok {
		return h.send(chatID, "Пожалуйста, введите число. "+menus.FieldPrompt(userState), keyboards.Cancel(keyboards.ProfileData))
	}

	sess, err := h.session(ctx, user.TelegramID)
	if err != nil {
		return err
	}
	sess.Record.Update(partial)
	return h.sendProfile(chatID, sess)
}

// parseField turns the text typed in a dialog state into a record update.
// Range checks are left to the record store.
func parseField(st, text string) (health.Partial, bool) {
	text = strings.TrimSpace(text)
	if st == state.WaitingForAge {
		age, err := strconv.Atoi(text)
		if err != nil {
			return health.Partial{}, false
		}
		return health.Partial{Age: &age}, true
	}

	value, err := strconv.ParseFloat(strings.Replace(text, ",", ".", 1), 64)
	if err != nil {
		return health.Partial{}, false
	}
	switch st {
	case state.WaitingForHeight:
		return health.Partial{Height: &value}, true
	case state.WaitingForWeight:
		return health.Partial{Weight: &value}, true
	case state.WaitingForGlucose:
		return health.Partial{BloodGlucose: &value}, true
	}
	return health.Partial{}, false
}
