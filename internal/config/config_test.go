package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPGHost, cfg.Postgres.Host)
	assert.Equal(t, DefaultOTPTTLMin, cfg.OTP.TTLMin)
	assert.Equal(t, DefaultOTPAttemptsMax, cfg.OTP.AttemptsMax)
	assert.Equal(t, DefaultOTPResendMax, cfg.OTP.ResendMax)
	assert.Equal(t, DefaultOTPLength, cfg.OTP.Length)
	assert.Equal(t, DefaultSMTPPortSSL, cfg.SMTP.Port, "implicit TLS port derived when unset")
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"
format = "json"

[telegram]
bot_token = "123:abc"
admin_ids = [11, 22]

[postgres]
host = "db.internal"
database = "hr"

[smtp]
host = "smtp.example.com"
user = "bot@example.com"
use_ssl = false

[otp]
ttl_min = 5
attempts_max = 3

[sheet]
edit_url = "https://docs.google.com/spreadsheets/d/abc/edit"
faq_gid = "101"
sync_interval_min = 15
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, DefaultPGPort, cfg.Postgres.Port, "unset fields keep defaults")
	assert.Equal(t, 5, cfg.OTP.TTLMin)
	assert.Equal(t, 3, cfg.OTP.AttemptsMax)
	assert.Equal(t, DefaultOTPResendMax, cfg.OTP.ResendMax)
	assert.Equal(t, "101", cfg.Sheet.FAQGID)
	assert.Equal(t, 15, cfg.Sheet.SyncIntervalMin)

	assert.Equal(t, DefaultSMTPPortStart, cfg.SMTP.Port, "STARTTLS port derived when SSL disabled")
	assert.Equal(t, "HR Assistant <bot@example.com>", cfg.SMTP.From, "sender derived from the SMTP user")
}

func TestLoadKeepsExplicitSMTPValues(t *testing.T) {
	path := writeConfig(t, `
[smtp]
host = "smtp.example.com"
port = 2525
from = "HR <hr@example.com>"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "HR <hr@example.com>", cfg.SMTP.From)
}

func TestIsAdmin(t *testing.T) {
	cfg := TelegramConfig{AdminIDs: []int64{11, 22}}
	assert.True(t, cfg.IsAdmin(11))
	assert.True(t, cfg.IsAdmin(22))
	assert.False(t, cfg.IsAdmin(33))
	assert.False(t, TelegramConfig{}.IsAdmin(11))
}
