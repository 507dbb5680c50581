package handlers

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/health-helper/internal/bot/keyboards"
	"github.com/vladimiradmaev/health-helper/internal/bot/menus"
	"github.com/vladimiradmaev/health-helper/internal/bot/state"
	"github.com/vladimiradmaev/health-helper/internal/domain"
	apperrors "github.com/vladimiradmaev/health-helper/internal/errors"
	"github.com/vladimiradmaev/health-helper/internal/logger"
	"github.com/vladimiradmaev/health-helper/internal/recommend"
	"github.com/vladimiradmaev/health-helper/internal/services"
)

// responder renders the screens shared by commands, callbacks and text input.
type responder struct {
	api          Sender
	deps         Dependencies
	stateManager state.StateManager
}

func (r *responder) send(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := r.api.Send(msg); err != nil {
		// Retry without markup parsing in case a value broke the entities
		logger.Warn("Markdown send failed, retrying as plain text", "chat_id", chatID, "error", err)
		msg.ParseMode = ""
		_, err = r.api.Send(msg)
		return err
	}
	return nil
}

func (r *responder) sendPlain(chatID int64, text string) error {
	_, err := r.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (r *responder) deleteMessage(chatID int64, messageID int) {
	if _, err := r.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		logger.Warn("Failed to delete message", "chat_id", chatID, "message_id", messageID, "error", err)
	}
}

func (r *responder) session(ctx context.Context, telegramID int64) (*services.Session, error) {
	sess, err := r.deps.SessionService.Get(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return sess, nil
}

// fail logs err and shows the matching user-facing text.
func (r *responder) fail(ctx context.Context, chatID int64, err error, settings domain.Settings) error {
	if r.deps.Errors != nil {
		r.deps.Errors.Handle(ctx, err)
	}
	return r.sendPlain(chatID, menus.ErrorText(err, settings))
}

func (r *responder) sendMainMenu(chatID, telegramID int64) error {
	r.stateManager.ClearUserState(telegramID)
	return r.send(chatID, menus.MainMenuText(), keyboards.MainMenu())
}

func (r *responder) sendHelp(chatID int64) error {
	return r.sendPlain(chatID, menus.HelpText())
}

func (r *responder) sendProfile(chatID int64, sess *services.Session) error {
	r.stateManager.ClearUserState(sess.TelegramID)
	record := sess.Record.Snapshot()
	return r.send(chatID, menus.FormatProfile(record), keyboards.ProfileMenu(record))
}

// askField switches the user into a dialog state and prompts for its value.
func (r *responder) askField(chatID, telegramID int64, st, cancelData string) error {
	r.stateManager.SetUserState(telegramID, st)
	return r.send(chatID, menus.FieldPrompt(st), keyboards.Cancel(cancelData))
}

func (r *responder) completeProfile(ctx context.Context, chatID int64, sess *services.Session) error {
	if _, err := sess.Record.Complete(); err != nil {
		return r.fail(ctx, chatID, err, sess.Recommender.Settings())
	}
	return r.sendRecommendations(ctx, chatID, sess, false)
}

// sendRecommendations shows the current analysis, computing one when there
// is no ready result or force is set.
func (r *responder) sendRecommendations(ctx context.Context, chatID int64, sess *services.Session, force bool) error {
	settings := sess.Recommender.Settings()
	snap := sess.Recommender.State()

	if force || snap.Status != recommend.StatusReady || snap.Analysis == nil {
		var loadingID int
		if settings.UseAI() {
			if sent, err := r.api.Send(tgbotapi.NewMessage(chatID, "⏳ Готовлю рекомендации...")); err == nil {
				loadingID = sent.MessageID
			}
		}

		var err error
		snap, err = sess.Recommender.Refresh(ctx)
		if errors.Is(err, recommend.ErrSuperseded) {
			// A newer request owns the result; show that one instead
			snap, err = sess.Recommender.Wait(ctx)
		}
		if loadingID != 0 {
			r.deleteMessage(chatID, loadingID)
		}
		if err != nil {
			return r.fail(ctx, chatID, err, settings)
		}
	}

	if snap.Analysis == nil {
		return r.sendPlain(chatID, "Рекомендаций пока нет.")
	}
	return r.send(chatID, menus.FormatAnalysis(*snap.Analysis), keyboards.RecommendationsMenu())
}

func (r *responder) saveHistory(ctx context.Context, chatID int64, sess *services.Session) error {
	record := sess.Record.Snapshot()
	if !record.CompletedProfile {
		return r.fail(ctx, chatID, apperrors.NewProfileIncompleteError(record.MissingFields()), sess.Recommender.Settings())
	}

	var analysis *domain.Analysis
	if snap := sess.Recommender.State(); snap.Status == recommend.StatusReady {
		analysis = snap.Analysis
	}
	if _, err := sess.History.Save(ctx, record, analysis); err != nil {
		return r.fail(ctx, chatID, err, sess.Recommender.Settings())
	}
	return r.send(chatID, "✅ Результат сохранён в историю.", keyboards.HistoryMenu(true))
}

func (r *responder) sendHistory(ctx context.Context, chatID int64, sess *services.Session) error {
	entries, err := sess.History.List(ctx)
	if err != nil {
		return r.fail(ctx, chatID, err, sess.Recommender.Settings())
	}

	t, ok, err := sess.History.Trend(ctx)
	if err != nil {
		return r.fail(ctx, chatID, err, sess.Recommender.Settings())
	}
	text := menus.FormatHistory(entries, nil)
	if ok {
		text = menus.FormatHistory(entries, &t)
	}
	return r.send(chatID, text, keyboards.HistoryMenu(len(entries) > 0))
}

func (r *responder) clearHistory(ctx context.Context, chatID int64, sess *services.Session) error {
	if err := sess.History.Clear(ctx); err != nil {
		return r.fail(ctx, chatID, err, sess.Recommender.Settings())
	}
	return r.send(chatID, "🗑️ История очищена.", keyboards.HistoryMenu(false))
}

func (r *responder) sendSettings(chatID int64, sess *services.Session) error {
	r.stateManager.ClearUserState(sess.TelegramID)
	settings := sess.Recommender.Settings()
	return r.send(chatID, menus.FormatSettings(settings), keyboards.SettingsMenu(settings))
}

// applySetting runs a settings change and shows the settings screen. An
// entitlement denial is shown as a notice above it.
func (r *responder) applySetting(ctx context.Context, chatID int64, sess *services.Session, change func() error) error {
	if err := change(); err != nil {
		if sendErr := r.fail(ctx, chatID, err, sess.Recommender.Settings()); sendErr != nil {
			return sendErr
		}
	}
	return r.sendSettings(chatID, sess)
}

func (r *responder) setTier(ctx context.Context, chatID int64, sess *services.Session, value string) error {
	return r.applySetting(ctx, chatID, sess, func() error {
		return sess.Recommender.SetTier(domain.Tier(value))
	})
}

func (r *responder) setModel(ctx context.Context, chatID int64, sess *services.Session, value string) error {
	return r.applySetting(ctx, chatID, sess, func() error {
		return sess.Recommender.SetModel(domain.ModelID(value))
	})
}

func (r *responder) setAIEnabled(ctx context.Context, chatID int64, sess *services.Session, enabled bool) error {
	return r.applySetting(ctx, chatID, sess, func() error {
		return sess.Recommender.SetAIEnabled(enabled)
	})
}

// setAPIKey stores key and removes the message that carried it.
func (r *responder) setAPIKey(ctx context.Context, chatID int64, messageID int, sess *services.Session, key string) error {
	r.deleteMessage(chatID, messageID)
	return r.applySetting(ctx, chatID, sess, func() error {
		return sess.Recommender.SetAPIKey(key)
	})
}

func (r *responder) reset(chatID int64, sess *services.Session) error {
	r.stateManager.ClearUserState(sess.TelegramID)
	sess.Record.Reset()
	return r.sendProfile(chatID, sess)
}
