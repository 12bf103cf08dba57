package otp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/staffdesk/hrbot/internal/config"
)

const sendTimeout = 20 * time.Second

// Mailer delivers one-time codes over SMTP, either implicit TLS or
// STARTTLS depending on configuration.
type Mailer struct {
	cfg    config.SMTPConfig
	logger *slog.Logger
}

func NewMailer(log *slog.Logger, cfg config.SMTPConfig) *Mailer {
	if log == nil {
		log = slog.Default()
	}
	return &Mailer{cfg: cfg, logger: log.With(slog.String("service", "mailer"))}
}

// Deliver formats a locale-specific message and submits it. Transport
// failures are returned as errors and never panic past this boundary.
func (m *Mailer) Deliver(ctx context.Context, to, locale, code string, ttl time.Duration) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(Subject(locale))
	msg.SetBodyString(mail.TypeTextPlain, Body(locale, code, ttl))

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(sendTimeout),
	}
	if m.cfg.UseSSL {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if m.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
			mail.WithUsername(m.cfg.User),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		m.logger.Error("send failed", slog.String("to", to), slog.Any("error", err))
		return fmt.Errorf("mail send: %w", err)
	}
	return nil
}

// Subject returns the localized subject line for a verification mail.
func Subject(locale string) string {
	if locale == "uk" {
		return "Код підтвердження HR Assistant"
	}
	return "HR Assistant verification code"
}

// Body returns the localized plain-text body carrying the code and TTL.
func Body(locale, code string, ttl time.Duration) string {
	minutes := int(ttl.Minutes())
	if locale == "uk" {
		return fmt.Sprintf("Ваш одноразовий код: %s\nДіє %d хвилин.\nЯкщо ви не запитували код, просто ігноруйте цей лист.", code, minutes)
	}
	return fmt.Sprintf("Your one-time code: %s\nValid for %d minutes.\nIf you didn't request it, you can ignore this email.", code, minutes)
}
