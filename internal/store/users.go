package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/staffdesk/hrbot/internal/db"
)

// Users provides user identity record access.
type Users struct {
	pool *pgxpool.Pool
}

func NewUsers(pool *pgxpool.Pool) *Users {
	return &Users{pool: pool}
}

// Track upserts the identity record, refreshing profile fields and
// last_seen and adding the counter increments. The stored pref_lang is
// preserved across updates.
func (s *Users) Track(ctx context.Context, req TrackRequest) error {
	if s.pool == nil {
		return fmt.Errorf("users store not configured")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, username, first_name, last_name, language_code, is_bot, msg_count, click_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
		  username = excluded.username,
		  first_name = excluded.first_name,
		  last_name = excluded.last_name,
		  language_code = excluded.language_code,
		  is_bot = excluded.is_bot,
		  last_seen = now(),
		  msg_count = users.msg_count + $7,
		  click_count = users.click_count + $8`,
		req.ID, req.Username, req.FirstName, req.LastName, req.LanguageCode, req.IsBot, req.IncMsg, req.IncClick,
	)
	if err != nil {
		return fmt.Errorf("track user: %w", err)
	}
	return nil
}

// PrefLang returns the stored language preference, defaulting to "es".
func (s *Users) PrefLang(ctx context.Context, userID int64) (string, error) {
	var lang string
	err := s.pool.QueryRow(ctx, `SELECT pref_lang FROM users WHERE id = $1`, userID).Scan(&lang)
	if errors.Is(err, pgx.ErrNoRows) {
		return "es", nil
	}
	if err != nil {
		return "es", fmt.Errorf("pref lang: %w", err)
	}
	if lang != "es" && lang != "uk" {
		return "es", nil
	}
	return lang, nil
}

func (s *Users) SetPrefLang(ctx context.Context, userID int64, lang string) error {
	if lang != "es" && lang != "uk" {
		return nil
	}
	_, err := s.pool.Exec(ctx, `UPDATE users SET pref_lang = $1 WHERE id = $2`, lang, userID)
	if err != nil {
		return fmt.Errorf("set pref lang: %w", err)
	}
	return nil
}

// Login returns the linked employee login, or "" when none is bound.
func (s *Users) Login(ctx context.Context, userID int64) (string, error) {
	var login pgtype.Text
	err := s.pool.QueryRow(ctx, `SELECT login FROM users WHERE id = $1`, userID).Scan(&login)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get login: %w", err)
	}
	return db.TextToString(login), nil
}

// SetLogin binds an employee login and clears the verified flag; rebinding
// always restarts trust from zero. An empty login is stored as NULL.
func (s *Users) SetLogin(ctx context.Context, userID int64, login string) error {
	_, err := s.pool.Exec(ctx, `UPDATE users SET login = $1, verified = FALSE WHERE id = $2`, db.Text(login), userID)
	if err != nil {
		return fmt.Errorf("set login: %w", err)
	}
	return nil
}

// ClearLogin unbinds the login and clears the verified flag.
func (s *Users) ClearLogin(ctx context.Context, userID int64) error {
	_, err := s.pool.Exec(ctx, `UPDATE users SET login = NULL, verified = FALSE WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clear login: %w", err)
	}
	return nil
}

// Verified returns the persisted verification flag.
func (s *Users) Verified(ctx context.Context, userID int64) (bool, error) {
	var verified bool
	err := s.pool.QueryRow(ctx, `SELECT verified FROM users WHERE id = $1`, userID).Scan(&verified)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get verified: %w", err)
	}
	return verified, nil
}

func (s *Users) SetVerified(ctx context.Context, userID int64, verified bool) error {
	_, err := s.pool.Exec(ctx, `UPDATE users SET verified = $1 WHERE id = $2`, verified, userID)
	if err != nil {
		return fmt.Errorf("set verified: %w", err)
	}
	return nil
}

// Stats aggregates totals for the admin report.
func (s *Users) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE last_seen >= now() - interval '7 days'),
		       COALESCE(SUM(msg_count), 0),
		       COALESCE(SUM(click_count), 0)
		FROM users`).Scan(&st.TotalUsers, &st.ActiveWeek, &st.MsgTotal, &st.ClickTotal)
	if err != nil {
		return Stats{}, fmt.Errorf("user stats: %w", err)
	}
	return st, nil
}

// List returns users ordered by recency for the admin listing.
func (s *Users) List(ctx context.Context, offset, limit int) ([]User, error) {
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, username, first_name, last_name, language_code, pref_lang,
		       login, verified, is_bot, first_seen, last_seen, msg_count, click_count
		FROM users ORDER BY last_seen DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

// ExportAll returns every user ordered by recency for the CSV export.
func (s *Users) ExportAll(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, username, first_name, last_name, language_code, pref_lang,
		       login, verified, is_bot, first_seen, last_seen, msg_count, click_count
		FROM users ORDER BY last_seen DESC`)
	if err != nil {
		return nil, fmt.Errorf("export users: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

func scanUsers(rows pgx.Rows) ([]User, error) {
	var users []User
	for rows.Next() {
		var (
			u         User
			login     pgtype.Text
			firstSeen pgtype.Timestamptz
			lastSeen  pgtype.Timestamptz
		)
		if err := rows.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.LanguageCode,
			&u.PrefLang, &login, &u.Verified, &u.IsBot, &firstSeen, &lastSeen,
			&u.MsgCount, &u.ClickCount); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Login = db.TextToString(login)
		u.FirstSeen = db.TimeFromPg(firstSeen)
		u.LastSeen = db.TimeFromPg(lastSeen)
		users = append(users, u)
	}
	return users, rows.Err()
}
