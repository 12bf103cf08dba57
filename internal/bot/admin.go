package bot

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/staffdesk/hrbot/internal/catalog"
	"github.com/staffdesk/hrbot/internal/store"
)

// handleAdminCommand serves the operator commands. Non-admins get a
// refusal regardless of which command they tried.
func (s *Service) handleAdminCommand(ctx context.Context, msg *tgbotapi.Message, loc catalog.Locale) error {
	chatID := msg.Chat.ID
	if !s.isAdmin(msg.From.ID) {
		s.reply(chatID, T("no_permission", loc), nil)
		return nil
	}

	switch msg.Command() {
	case "stats":
		st, err := s.users.Stats(ctx)
		if err != nil {
			return err
		}
		s.reply(chatID, statsText(loc, st.TotalUsers, st.ActiveWeek, st.MsgTotal, st.ClickTotal), nil)

	case "users":
		offset, limit := parseListArgs(msg.CommandArguments())
		users, err := s.users.List(ctx, offset, limit)
		if err != nil {
			return err
		}
		s.reply(chatID, usersListText(users, offset), nil)

	case "export_users":
		users, err := s.users.ExportAll(ctx)
		if err != nil {
			return err
		}
		data, err := usersCSV(users)
		if err != nil {
			return err
		}
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: "users.csv", Bytes: data})
		if _, err := s.api.Send(doc); err != nil {
			s.logger.Error("send export failed", slog.Any("error", err))
		}

	case "setprofile":
		return s.cmdSetProfile(ctx, chatID, loc, msg.CommandArguments())

	case "dump_profile":
		return s.cmdDumpProfile(ctx, chatID, loc, msg.CommandArguments())

	case "refresh":
		if err := s.syncer.Sync(ctx); err != nil {
			s.reply(chatID, T("reload_failed", loc)+html.EscapeString(err.Error()), nil)
			return nil
		}
		faqES, faqUK, formsES, formsUK := s.catalog.Current().Counts()
		s.reply(chatID, fmt.Sprintf("%s FAQ: %d/%d, forms: %d/%d", T("reloaded", loc), faqES, faqUK, formsES, formsUK), nil)
	}
	return nil
}

// parseListArgs reads "/users [offset] [limit]" arguments.
func parseListArgs(args string) (offset, limit int) {
	limit = 20
	fields := strings.Fields(args)
	if len(fields) > 0 {
		if v, err := strconv.Atoi(fields[0]); err == nil && v >= 0 {
			offset = v
		}
	}
	if len(fields) > 1 {
		if v, err := strconv.Atoi(fields[1]); err == nil && v > 0 {
			limit = v
		}
	}
	return offset, limit
}

func usersListText(users []store.User, offset int) string {
	if len(users) == 0 {
		return "No users."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "👥 <b>Users</b> (offset %d)\n", offset)
	for i, u := range users {
		mark := ""
		if u.Verified {
			mark = " ✅"
		}
		name := strings.TrimSpace(u.FirstName + " " + u.LastName)
		fmt.Fprintf(&b, "%d. <code>%d</code> @%s %s%s\n    login=%s lang=%s seen=%s msg=%d click=%d\n",
			offset+i+1, u.ID, html.EscapeString(u.Username), html.EscapeString(name), mark,
			html.EscapeString(dash(u.Login)), u.PrefLang, lastSeenShort(u.LastSeen), u.MsgCount, u.ClickCount)
	}
	return b.String()
}

// usersCSV renders the full user table as a CSV document.
func usersCSV(users []store.User) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"id", "username", "first_name", "last_name", "language_code", "pref_lang",
		"login", "verified", "is_bot", "first_seen", "last_seen", "msg_count", "click_count"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, u := range users {
		row := []string{
			strconv.FormatInt(u.ID, 10), u.Username, u.FirstName, u.LastName,
			u.LanguageCode, u.PrefLang, u.Login,
			strconv.FormatBool(u.Verified), strconv.FormatBool(u.IsBot),
			lastSeenShort(u.FirstSeen), lastSeenShort(u.LastSeen),
			strconv.FormatInt(u.MsgCount, 10), strconv.FormatInt(u.ClickCount, 10),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// cmdSetProfile parses "/setprofile <login> <json>" and writes the full
// row from the supplied keys; absent fields become zero values. Known
// fields map onto profile columns, anything else lands verbatim in the
// extra JSON column.
func (s *Service) cmdSetProfile(ctx context.Context, chatID int64, loc catalog.Locale, args string) error {
	login, rawJSON, ok := strings.Cut(strings.TrimSpace(args), " ")
	if !ok || login == "" {
		s.reply(chatID, "Usage: /setprofile &lt;login&gt; &lt;json&gt;", nil)
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(rawJSON), &fields); err != nil {
		s.reply(chatID, "Invalid JSON: "+html.EscapeString(err.Error()), nil)
		return nil
	}

	p := catalog.Profile{Login: strings.ToLower(strings.TrimSpace(login))}
	extra := map[string]json.RawMessage{}
	for key, raw := range fields {
		switch key {
		case "full_name":
			_ = json.Unmarshal(raw, &p.FullName)
		case "position":
			_ = json.Unmarshal(raw, &p.Position)
		case "team", "department":
			_ = json.Unmarshal(raw, &p.Team)
		case "email":
			_ = json.Unmarshal(raw, &p.Email)
		case "phone":
			_ = json.Unmarshal(raw, &p.Phone)
		case "manager":
			_ = json.Unmarshal(raw, &p.Manager)
		case "vacation_left":
			_ = json.Unmarshal(raw, &p.VacationLeft)
		case "salary_usd":
			_ = json.Unmarshal(raw, &p.SalaryUSD)
		default:
			extra[key] = raw
		}
	}
	if len(extra) > 0 {
		encoded, err := json.Marshal(extra)
		if err != nil {
			return err
		}
		p.ExtraJSON = string(encoded)
	}

	if err := s.profiles.Upsert(ctx, p); err != nil {
		return err
	}
	s.reply(chatID, "✅ Profile saved: <b>"+html.EscapeString(p.Login)+"</b>", nil)
	return nil
}

// cmdDumpProfile shows a stored profile row with the phone masked down to
// its tail so screenshots do not leak full numbers.
func (s *Service) cmdDumpProfile(ctx context.Context, chatID int64, loc catalog.Locale, args string) error {
	login := strings.ToLower(strings.TrimSpace(args))
	if login == "" {
		s.reply(chatID, "Usage: /dump_profile &lt;login&gt;", nil)
		return nil
	}
	p, err := s.profiles.ByLogin(ctx, login)
	if errors.Is(err, store.ErrProfileNotFound) {
		s.reply(chatID, T("profile_not_found", loc), nil)
		return nil
	}
	if err != nil {
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🗂 <b>%s</b>\n", html.EscapeString(p.Login))
	fmt.Fprintf(&b, "full_name: %s\n", html.EscapeString(dash(p.FullName)))
	fmt.Fprintf(&b, "position: %s\n", html.EscapeString(dash(p.Position)))
	fmt.Fprintf(&b, "team: %s\n", html.EscapeString(dash(p.Team)))
	fmt.Fprintf(&b, "email: %s\n", html.EscapeString(dash(p.Email)))
	fmt.Fprintf(&b, "phone: %s\n", html.EscapeString(maskPhone(p.Phone)))
	fmt.Fprintf(&b, "manager: %s\n", html.EscapeString(dash(p.Manager)))
	fmt.Fprintf(&b, "vacation_left: %d\nsalary_usd: %d\n", p.VacationLeft, p.SalaryUSD)
	if p.ExtraJSON != "" {
		fmt.Fprintf(&b, "extra: <code>%s</code>\n", html.EscapeString(p.ExtraJSON))
	}
	s.reply(chatID, b.String(), nil)
	return nil
}

func maskPhone(phone string) string {
	trimmed := strings.TrimSpace(phone)
	if trimmed == "" {
		return "—"
	}
	if len(trimmed) <= 6 {
		return trimmed
	}
	return "..." + trimmed[len(trimmed)-6:]
}
