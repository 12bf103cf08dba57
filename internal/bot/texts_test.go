package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffdesk/hrbot/internal/catalog"
	"github.com/staffdesk/hrbot/internal/store"
)

func TestT(t *testing.T) {
	assert.Equal(t, tx["ask_login"][catalog.LocaleUK], T("ask_login", catalog.LocaleUK))
	assert.Equal(t, tx["ask_login"][catalog.LocaleES], T("ask_login", catalog.Locale("fr")), "unknown locale falls back to Spanish")
	assert.Equal(t, "no_such_id", T("no_such_id", catalog.LocaleES), "unknown ids pass through")
}

func TestToHTML(t *testing.T) {
	assert.Equal(t, "a &lt;b&gt; &amp; c", toHTML("a <b> & c"))
	assert.Equal(t, "<b>Vacaciones</b>: 24", toHTML("**Vacaciones**: 24"))
	assert.Equal(t, "<b>uno</b> y <b>dos</b>", toHTML("**uno** y **dos**"))
}

func TestProfileCardEscapesValues(t *testing.T) {
	card := profileCard(catalog.LocaleES, catalog.Profile{
		Login:    "jdoe",
		FullName: "John <script> Doe",
	})
	assert.Contains(t, card, "John &lt;script&gt; Doe")
	assert.Contains(t, card, "<b>jdoe</b>")
	assert.Contains(t, card, "—", "empty fields render a dash")
}

func TestCBTokensRoundtrip(t *testing.T) {
	cb := newCBTokens()
	token := cb.tokenFor(catalog.LocaleES, "vacaciones no disfrutadas y otros temas largos")
	assert.Len(t, token, 10, "token must fit Telegram's 64-byte callback budget")

	key, ok := cb.keyFor(catalog.LocaleES, token)
	require.True(t, ok)
	assert.Equal(t, "vacaciones no disfrutadas y otros temas largos", key)

	_, ok = cb.keyFor(catalog.LocaleUK, token)
	assert.False(t, ok, "tokens are scoped per locale")
}

func TestParseListArgs(t *testing.T) {
	offset, limit := parseListArgs("")
	assert.Equal(t, 0, offset)
	assert.Equal(t, 20, limit)

	offset, limit = parseListArgs("40 50")
	assert.Equal(t, 40, offset)
	assert.Equal(t, 50, limit)

	offset, limit = parseListArgs("junk -5")
	assert.Equal(t, 0, offset)
	assert.Equal(t, 20, limit)
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "...234567", maskPhone("+380931234567"))
	assert.Equal(t, "123456", maskPhone("123456"))
	assert.Equal(t, "—", maskPhone("  "))
}

func TestUsersCSV(t *testing.T) {
	data, err := usersCSV([]store.User{{
		ID:       42,
		Username: "jdoe",
		Login:    "jdoe",
		Verified: true,
		LastSeen: time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC),
		MsgCount: 7,
	}})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,username"))
	assert.Contains(t, lines[1], "42,jdoe")
	assert.Contains(t, lines[1], "true")
	assert.Contains(t, lines[1], "2026-08-28 10:30")
}
