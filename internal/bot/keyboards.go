package bot

import (
	"crypto/md5"
	"encoding/hex"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/staffdesk/hrbot/internal/catalog"
)

// cbTokens maps short callback tokens back to FAQ keys. Telegram callback
// data is capped at 64 bytes, so keys travel as md5 prefixes.
type cbTokens struct {
	mu     sync.Mutex
	tokens map[catalog.Locale]map[string]string
}

func newCBTokens() *cbTokens {
	return &cbTokens{tokens: map[catalog.Locale]map[string]string{}}
}

func (c *cbTokens) tokenFor(loc catalog.Locale, key string) string {
	sum := md5.Sum([]byte(key))
	token := hex.EncodeToString(sum[:])[:10]
	c.mu.Lock()
	if c.tokens[loc] == nil {
		c.tokens[loc] = map[string]string{}
	}
	c.tokens[loc][token] = key
	c.mu.Unlock()
	return token
}

func (c *cbTokens) keyFor(loc catalog.Locale, token string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, ok := c.tokens[loc][token]
	return key, ok
}

func langToggleRow(loc catalog.Locale) []tgbotapi.InlineKeyboardButton {
	if loc == catalog.LocaleES {
		return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🇺🇦 UA", "lang_uk"))
	}
	return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🇪🇸 ES", "lang_es"))
}

func backRow(loc catalog.Locale, target string) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(T("back", loc), "back_to:"+target))
}

// kbBackTo is a back button plus the language toggle.
func kbBackTo(loc catalog.Locale, target string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(backRow(loc, target), langToggleRow(loc))
}

// kbMain renders the main menu for the user's current state.
func (s *Service) kbMain(loc catalog.Locale, hasLogin, verified, isAdmin bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if hasLogin {
		label := "👤 Mi perfil"
		if loc == catalog.LocaleUK {
			label = "👤 Мій профіль"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, "menu_profile")))
	}
	quick, formsLabel := "⚡ Tópicos rápidos", "📝 Formularios y documentos"
	if loc == catalog.LocaleUK {
		quick, formsLabel = "⚡ Швидкі теми", "📝 Форми та документи"
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(quick, "menu_quick")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(formsLabel, "menu_forms")),
	)
	if !verified && !isAdmin {
		label := "🔒 Verificación"
		if loc == catalog.LocaleUK {
			label = "🔒 Верифікація"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, "start_verify")))
	}
	rows = append(rows, langToggleRow(loc))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// kbQuick lists FAQ topics two per row, name-sorted.
func (s *Service) kbQuick(loc catalog.Locale) tgbotapi.InlineKeyboardMarkup {
	entries := s.catalog.Current().FAQList(loc)
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, e := range entries {
		if e.Title == "" || e.Response == "" {
			continue
		}
		token := s.cb.tokenFor(loc, e.Key)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(e.Title, "faq_"+token))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, backRow(loc, "main"), langToggleRow(loc))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// kbForms lists forms one per row, name-sorted.
func (s *Service) kbForms(loc catalog.Locale) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, f := range s.catalog.Current().FormList(loc) {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(f.Icon+" "+f.Name, "formchoice_"+f.Key),
		))
	}
	rows = append(rows, backRow(loc, "main"), langToggleRow(loc))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// kbFormChoice offers in-bot fill and, when present, the external URL.
func kbFormChoice(loc catalog.Locale, f catalog.Form) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if len(f.Fields) > 0 {
		label := "✍️ Rellenar en el bot"
		if loc == catalog.LocaleUK {
			label = "✍️ Заповнити в боті"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, "formfill_"+f.Key)))
	}
	if f.URL != "" {
		label := "🌐 Abrir Google Form"
		if loc == catalog.LocaleUK {
			label = "🌐 Відкрити Google Form"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL(label, f.URL)))
	}
	rows = append(rows, backRow(loc, "menu_forms"), langToggleRow(loc))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
