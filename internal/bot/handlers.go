package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/staffdesk/hrbot/internal/catalog"
	"github.com/staffdesk/hrbot/internal/gate"
	"github.com/staffdesk/hrbot/internal/sheets"
	"github.com/staffdesk/hrbot/internal/store"
	"github.com/staffdesk/hrbot/internal/verify"
)

func (s *Service) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	s.track(ctx, msg.From, 1, 0)
	userID := msg.From.ID
	chatID := msg.Chat.ID
	loc := s.locale(ctx, userID)

	switch msg.Command() {
	case "start":
		return s.cmdStart(ctx, userID, chatID, loc)
	case "help":
		kb := s.kbMainFor(ctx, userID)
		s.reply(chatID, T("help", loc), &kb)
	case "cancel":
		s.verify.Cancel(userID)
		s.forms.Cancel(userID)
		text, kb := s.mainMenu(ctx, userID)
		s.reply(chatID, T("cancelled", loc)+"\n\n"+text, &kb)
	case "myid":
		kb := s.kbMainFor(ctx, userID)
		s.reply(chatID, myIDText(loc, userID), &kb)
	case "whoami":
		return s.showProfile(ctx, userID, chatID, loc)
	case "logout":
		if err := s.users.ClearLogin(ctx, userID); err != nil {
			return err
		}
		s.verify.Cancel(userID)
		s.reply(chatID, T("ask_login", loc), nil)
	case "verify":
		return s.startVerification(ctx, userID, chatID, loc)
	case "resend":
		outcome, err := s.verify.Resend(ctx, userID)
		if err != nil {
			return err
		}
		switch outcome {
		case verify.OutcomeResent:
			s.reply(chatID, T("resent", loc), nil)
		case verify.OutcomeSendFailed:
			s.reply(chatID, T("resend_failed", loc), nil)
		case verify.OutcomeResendLimit:
			s.reply(chatID, T("resend_limit", loc), nil)
		default:
			s.reply(chatID, T("no_active_code", loc), nil)
		}
	case "stats", "users", "export_users", "setprofile", "dump_profile", "refresh":
		return s.handleAdminCommand(ctx, msg, loc)
	default:
		kb := s.kbMainFor(ctx, userID)
		s.reply(chatID, T("start_banner", loc), &kb)
	}
	return nil
}

func (s *Service) kbMainFor(ctx context.Context, userID int64) tgbotapi.InlineKeyboardMarkup {
	_, kb := s.mainMenu(ctx, userID)
	return kb
}

func (s *Service) cmdStart(ctx context.Context, userID, chatID int64, loc catalog.Locale) error {
	login, err := s.users.Login(ctx, userID)
	if err != nil {
		return err
	}
	if login == "" {
		s.reply(chatID, T("ask_login", loc), nil)
		return nil
	}
	if !s.isVerified(ctx, userID) && !s.isAdmin(userID) {
		return s.startVerification(ctx, userID, chatID, loc)
	}
	kb := s.kbMainFor(ctx, userID)
	s.reply(chatID, T("start_banner", loc), &kb)
	return nil
}

func (s *Service) startVerification(ctx context.Context, userID, chatID int64, loc catalog.Locale) error {
	outcome, err := s.verify.Start(ctx, userID, string(loc))
	if err != nil {
		return err
	}
	switch outcome {
	case verify.OutcomePromptLogin:
		s.reply(chatID, T("ask_login", loc), nil)
	case verify.OutcomeProfileMissing:
		s.reply(chatID, T("profile_not_found", loc), nil)
	case verify.OutcomePromptPhone:
		s.reply(chatID, T("ask_phone", loc), nil)
	}
	return nil
}

func (s *Service) showProfile(ctx context.Context, userID, chatID int64, loc catalog.Locale) error {
	login, err := s.users.Login(ctx, userID)
	if err != nil {
		return err
	}
	if login == "" {
		s.reply(chatID, T("ask_login", loc), nil)
		return nil
	}
	profile, err := s.profiles.ByLogin(ctx, login)
	if errors.Is(err, store.ErrProfileNotFound) {
		kb := s.kbMainFor(ctx, userID)
		s.reply(chatID, T("profile_not_found", loc), &kb)
		return nil
	}
	if err != nil {
		return err
	}
	kb := kbBackTo(loc, "main")
	s.reply(chatID, profileCard(loc, profile), &kb)
	return nil
}

// handleFreeText routes plain messages: active verification first, then an
// active form fill, then login collection, then the gate, then FAQ lookup.
func (s *Service) handleFreeText(ctx context.Context, msg *tgbotapi.Message) error {
	s.track(ctx, msg.From, 1, 0)
	userID := msg.From.ID
	chatID := msg.Chat.ID
	loc := s.locale(ctx, userID)
	text := strings.TrimSpace(msg.Text)

	if s.verify.Active(userID) {
		outcome, err := s.verify.Submit(ctx, userID, text)
		if err != nil {
			return err
		}
		s.replyVerifyOutcome(ctx, userID, chatID, loc, outcome)
		return nil
	}

	if s.forms.Active(userID) {
		next, done, err := s.forms.Answer(ctx, userID, msg.From.UserName, text)
		if err != nil {
			return err
		}
		if done {
			kb := s.kbMainFor(ctx, userID)
			s.reply(chatID, T("saved", loc), &kb)
		} else if next != "" {
			s.reply(chatID, askFieldText(loc, next), nil)
		}
		return nil
	}

	login, err := s.users.Login(ctx, userID)
	if err != nil {
		return err
	}
	if login == "" {
		outcome, err := s.verify.SubmitLogin(ctx, userID, string(loc), text)
		if err != nil {
			return err
		}
		switch outcome {
		case verify.OutcomeLoginNotFound:
			s.reply(chatID, T("login_not_found", loc), nil)
		case verify.OutcomeProfileMissing:
			s.reply(chatID, T("profile_not_found", loc), nil)
		case verify.OutcomePromptPhone:
			s.reply(chatID, T("ask_phone", loc), nil)
		}
		return nil
	}

	if !gate.Allowed(s.isAdmin(userID), s.isVerified(ctx, userID), gate.ActionFreeText) {
		kb := s.kbMainFor(ctx, userID)
		s.reply(chatID, T("need_verification", loc), &kb)
		return nil
	}

	if entry, ok := s.catalog.Current().FindFAQ(loc, text); ok {
		kb := kbBackTo(loc, "main")
		s.reply(chatID, toHTML(sheets.CleanText(entry.Response)), &kb)
		return nil
	}
	kb := s.kbMainFor(ctx, userID)
	s.reply(chatID, T("start_banner", loc), &kb)
	return nil
}

func (s *Service) replyVerifyOutcome(ctx context.Context, userID, chatID int64, loc catalog.Locale, outcome verify.Outcome) {
	switch outcome {
	case verify.OutcomePhoneMismatch:
		s.reply(chatID, T("phone_mismatch", loc), nil)
	case verify.OutcomePromptEmail:
		s.reply(chatID, T("ask_email", loc), nil)
	case verify.OutcomeInvalidEmail:
		s.reply(chatID, T("invalid_email", loc), nil)
	case verify.OutcomeCodeSent:
		s.reply(chatID, T("code_sent", loc), nil)
	case verify.OutcomeSendFailed:
		s.reply(chatID, T("send_failed", loc), nil)
	case verify.OutcomeVerified:
		kb := s.kbMainFor(ctx, userID)
		s.reply(chatID, T("verified", loc), &kb)
	case verify.OutcomeCodeExpired:
		s.reply(chatID, T("code_expired", loc), nil)
	case verify.OutcomeCodeMismatch:
		s.reply(chatID, T("code_mismatch", loc), nil)
	case verify.OutcomeAborted:
		s.reply(chatID, T("too_many_attempts", loc), nil)
	}
}

func (s *Service) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	s.track(ctx, query.From, 0, 1)
	if query.Message == nil {
		return nil
	}
	userID := query.From.ID
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	loc := s.locale(ctx, userID)
	data := query.Data

	if _, err := s.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		s.logger.Error("callback ack failed", slog.Any("error", err))
	}

	verified := s.isVerified(ctx, userID)
	admin := s.isAdmin(userID)

	switch {
	case data == "lang_es" || data == "lang_uk":
		lang := "es"
		if data == "lang_uk" {
			lang = "uk"
		}
		if err := s.users.SetPrefLang(ctx, userID, lang); err != nil {
			return err
		}
		// The preference always sticks. Unverified users then resume
		// verification in the language they just picked.
		if !admin && !verified {
			return s.startVerification(ctx, userID, chatID, catalog.Locale(lang))
		}
		text, kb := s.mainMenu(ctx, userID)
		s.edit(chatID, messageID, text, &kb)

	case strings.HasPrefix(data, "back_to:"):
		target := strings.TrimPrefix(data, "back_to:")
		switch target {
		case "menu_quick":
			kb := s.kbQuick(loc)
			s.edit(chatID, messageID, T("menu_quick_title", loc), &kb)
		case "menu_forms":
			kb := s.kbForms(loc)
			s.edit(chatID, messageID, T("menu_forms_title", loc), &kb)
		default:
			text, kb := s.mainMenu(ctx, userID)
			s.edit(chatID, messageID, text, &kb)
		}

	case data == "start_verify":
		return s.startVerification(ctx, userID, chatID, loc)

	case data == "menu_quick":
		if !gate.Allowed(admin, verified, gate.ActionQuickTopics) {
			kb := s.kbMainFor(ctx, userID)
			s.edit(chatID, messageID, T("need_verification", loc), &kb)
			return nil
		}
		kb := s.kbQuick(loc)
		s.edit(chatID, messageID, T("menu_quick_title", loc), &kb)

	case data == "menu_forms":
		if !gate.Allowed(admin, verified, gate.ActionFormsBrowse) {
			kb := s.kbMainFor(ctx, userID)
			s.edit(chatID, messageID, T("need_verification", loc), &kb)
			return nil
		}
		kb := s.kbForms(loc)
		s.edit(chatID, messageID, T("menu_forms_title", loc), &kb)

	case data == "menu_profile":
		return s.showProfile(ctx, userID, chatID, loc)

	case strings.HasPrefix(data, "formchoice_"):
		if !gate.Allowed(admin, verified, gate.ActionFormsBrowse) {
			kb := s.kbMainFor(ctx, userID)
			s.edit(chatID, messageID, T("need_verification", loc), &kb)
			return nil
		}
		key := strings.TrimPrefix(data, "formchoice_")
		form, ok := s.catalog.Current().FormByKey(loc, key)
		if !ok {
			return nil
		}
		kb := kbFormChoice(loc, form)
		s.edit(chatID, messageID, formChoiceText(loc, form), &kb)

	case strings.HasPrefix(data, "formfill_"):
		if !gate.Allowed(admin, verified, gate.ActionFormFill) {
			kb := s.kbMainFor(ctx, userID)
			s.edit(chatID, messageID, T("need_verification", loc), &kb)
			return nil
		}
		key := strings.TrimPrefix(data, "formfill_")
		form, ok := s.catalog.Current().FormByKey(loc, key)
		if !ok {
			return nil
		}
		if first, started := s.forms.Begin(userID, form); started {
			s.reply(chatID, askFieldText(loc, first), nil)
		} else {
			kb := kbBackTo(loc, "menu_forms")
			s.edit(chatID, messageID, formInfoText(loc, form), &kb)
		}

	case strings.HasPrefix(data, "faq_"):
		if !gate.Allowed(admin, verified, gate.ActionFAQLookup) {
			kb := s.kbMainFor(ctx, userID)
			s.edit(chatID, messageID, T("need_verification", loc), &kb)
			return nil
		}
		token := strings.TrimPrefix(data, "faq_")
		text := "—"
		if key, ok := s.cb.keyFor(loc, token); ok {
			if entry, found := s.catalog.Current().FAQByKey(loc, key); found {
				text = toHTML(sheets.CleanText(entry.Response))
			}
		}
		kb := kbBackTo(loc, "menu_quick")
		s.edit(chatID, messageID, text, &kb)
	}
	return nil
}
