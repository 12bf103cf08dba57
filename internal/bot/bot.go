// Package bot is the Telegram front-end: it renders menus and prompts,
// parses commands, and routes user events through the access gate into the
// verification, forms, and FAQ components.
package bot

import (
	"context"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/staffdesk/hrbot/internal/catalog"
	"github.com/staffdesk/hrbot/internal/config"
	"github.com/staffdesk/hrbot/internal/forms"
	"github.com/staffdesk/hrbot/internal/sheets"
	"github.com/staffdesk/hrbot/internal/store"
	"github.com/staffdesk/hrbot/internal/verify"
)

// Service runs the long-poll update loop and owns the chat-facing state.
type Service struct {
	cfg      config.TelegramConfig
	api      *tgbotapi.BotAPI
	logger   *slog.Logger
	users    *store.Users
	profiles *store.Profiles
	catalog  *catalog.Catalog
	verify   *verify.Service
	forms    *forms.Service
	syncer   *sheets.Service
	cb       *cbTokens
}

func NewService(
	log *slog.Logger,
	cfg config.TelegramConfig,
	users *store.Users,
	profiles *store.Profiles,
	cat *catalog.Catalog,
	verifier *verify.Service,
	filler *forms.Service,
	syncer *sheets.Service,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		cfg:      cfg,
		logger:   log.With(slog.String("service", "bot")),
		users:    users,
		profiles: profiles,
		catalog:  cat,
		verify:   verifier,
		forms:    filler,
		syncer:   syncer,
		cb:       newCBTokens(),
	}
}

// Run connects to the Telegram API and processes updates until ctx ends.
// Each update is handled in its own goroutine; per-user ordering is
// preserved by the per-user session locks underneath.
func (s *Service) Run(ctx context.Context) error {
	api, err := tgbotapi.NewBotAPI(s.cfg.BotToken)
	if err != nil {
		return err
	}
	s.api = api
	s.logger.Info("connected", slog.String("username", api.Self.UserName))

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			s.logger.Info("stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				s.logger.Info("updates channel closed")
				return nil
			}
			go func(update tgbotapi.Update) {
				if err := s.handleUpdate(ctx, update); err != nil {
					s.logger.Error("handle update failed", slog.Any("error", err))
				}
			}(update)
		}
	}
}

func (s *Service) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.CallbackQuery != nil:
		return s.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		return s.handleCommand(ctx, update.Message)
	case update.Message != nil:
		return s.handleFreeText(ctx, update.Message)
	default:
		return nil
	}
}

// track upserts the user identity record with the given counter bumps.
func (s *Service) track(ctx context.Context, from *tgbotapi.User, incMsg, incClick int64) {
	if from == nil {
		return
	}
	err := s.users.Track(ctx, store.TrackRequest{
		ID:           from.ID,
		Username:     from.UserName,
		FirstName:    from.FirstName,
		LastName:     from.LastName,
		LanguageCode: from.LanguageCode,
		IsBot:        from.IsBot,
		IncMsg:       incMsg,
		IncClick:     incClick,
	})
	if err != nil {
		s.logger.Error("track user failed", slog.Int64("user_id", from.ID), slog.Any("error", err))
	}
}

func (s *Service) locale(ctx context.Context, userID int64) catalog.Locale {
	lang, err := s.users.PrefLang(ctx, userID)
	if err != nil {
		s.logger.Error("pref lang lookup failed", slog.Int64("user_id", userID), slog.Any("error", err))
	}
	if loc := catalog.ParseLocale(lang); loc != "" {
		return loc
	}
	return catalog.LocaleES
}

func (s *Service) isAdmin(userID int64) bool {
	return s.cfg.IsAdmin(userID)
}

func (s *Service) isVerified(ctx context.Context, userID int64) bool {
	verified, err := s.users.Verified(ctx, userID)
	if err != nil {
		s.logger.Error("verified lookup failed", slog.Int64("user_id", userID), slog.Any("error", err))
		return false
	}
	return verified
}

// reply sends an HTML message, optionally with an inline keyboard.
func (s *Service) reply(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := s.api.Send(msg); err != nil {
		s.logger.Error("send failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
	}
}

// edit replaces a menu message in place after a button press.
func (s *Service) edit(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := s.api.Send(msg); err != nil {
		s.logger.Error("edit failed", slog.Int64("chat_id", chatID), slog.Any("error", err))
	}
}

// mainMenu renders the main menu message plus keyboard for the user.
func (s *Service) mainMenu(ctx context.Context, userID int64) (string, tgbotapi.InlineKeyboardMarkup) {
	loc := s.locale(ctx, userID)
	login, err := s.users.Login(ctx, userID)
	if err != nil {
		s.logger.Error("login lookup failed", slog.Int64("user_id", userID), slog.Any("error", err))
	}
	kb := s.kbMain(loc, login != "", s.isVerified(ctx, userID), s.isAdmin(userID))
	return T("menu_main", loc), kb
}
