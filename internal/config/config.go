// Package config loads and exposes application configuration (TOML).
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath     = "config.toml"
	DefaultPGHost         = "127.0.0.1"
	DefaultPGPort         = 5432
	DefaultPGUser         = "postgres"
	DefaultPGDatabase     = "hrbot"
	DefaultPGSSLMode      = "disable"
	DefaultSMTPPortSSL    = 465
	DefaultSMTPPortStart  = 587
	DefaultOTPTTLMin      = 10
	DefaultOTPAttemptsMax = 5
	DefaultOTPResendMax   = 3
	DefaultOTPLength      = 6
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Telegram TelegramConfig `toml:"telegram"`
	Postgres PostgresConfig `toml:"postgres"`
	SMTP     SMTPConfig     `toml:"smtp"`
	OTP      OTPConfig      `toml:"otp"`
	Sheet    SheetConfig    `toml:"sheet"`
	AdminAPI AdminAPIConfig `toml:"admin_api"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// TelegramConfig holds the bot token and the administrator user ids.
type TelegramConfig struct {
	BotToken string  `toml:"bot_token"`
	AdminIDs []int64 `toml:"admin_ids"`
}

// IsAdmin reports whether the Telegram user id is an administrator.
func (c TelegramConfig) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// SMTPConfig holds the mail submission endpoint used for OTP delivery.
// UseSSL selects implicit TLS (465); otherwise STARTTLS on the given port.
type SMTPConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	From     string `toml:"from"`
	UseSSL   bool   `toml:"use_ssl"`
}

// OTPConfig holds one-time code limits. Pepper is reserved key material for
// future code derivation; codes themselves are pure CSPRNG output.
type OTPConfig struct {
	TTLMin      int    `toml:"ttl_min"`
	AttemptsMax int    `toml:"attempts_max"`
	ResendMax   int    `toml:"resend_max"`
	Length      int    `toml:"length"`
	Pepper      string `toml:"pepper"`
}

// SheetConfig holds the spreadsheet source and sync cadence. GIDs identify
// the FAQ, forms, and profiles tabs; any subset may be empty.
type SheetConfig struct {
	EditURL         string `toml:"edit_url"`
	FAQGID          string `toml:"faq_gid"`
	FormsGID        string `toml:"forms_gid"`
	ProfilesGID     string `toml:"profiles_gid"`
	SyncIntervalMin int    `toml:"sync_interval_min"`
}

// AdminAPIConfig holds the optional admin HTTP listener. Empty Addr
// disables the server.
type AdminAPIConfig struct {
	Addr  string `toml:"addr"`
	Token string `toml:"token"`
}

// Load reads and parses the TOML config file at path and applies default
// values for missing fields.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		SMTP: SMTPConfig{
			UseSSL: true,
		},
		OTP: OTPConfig{
			TTLMin:      DefaultOTPTTLMin,
			AttemptsMax: DefaultOTPAttemptsMax,
			ResendMax:   DefaultOTPResendMax,
			Length:      DefaultOTPLength,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return applyDerived(cfg), nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return applyDerived(cfg), nil
}

func applyDerived(cfg Config) Config {
	if cfg.SMTP.Port == 0 {
		if cfg.SMTP.UseSSL {
			cfg.SMTP.Port = DefaultSMTPPortSSL
		} else {
			cfg.SMTP.Port = DefaultSMTPPortStart
		}
	}
	if cfg.SMTP.From == "" && cfg.SMTP.User != "" {
		cfg.SMTP.From = "HR Assistant <" + cfg.SMTP.User + ">"
	}
	if cfg.OTP.Length <= 0 {
		cfg.OTP.Length = DefaultOTPLength
	}
	return cfg
}
