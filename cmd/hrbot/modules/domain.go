package modules

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/staffdesk/hrbot/internal/catalog"
	"github.com/staffdesk/hrbot/internal/config"
	"github.com/staffdesk/hrbot/internal/forms"
	"github.com/staffdesk/hrbot/internal/otp"
	"github.com/staffdesk/hrbot/internal/sheets"
	"github.com/staffdesk/hrbot/internal/store"
	"github.com/staffdesk/hrbot/internal/verify"
)

var DomainModule = fx.Module(
	"domain",
	fx.Provide(
		store.NewUsers,
		store.NewProfiles,
		store.NewSubmissions,
		catalog.New,
		sheets.NewFetcher,
		provideMailer,
		provideSheetsService,
		provideVerifyService,
		provideFormsService,
	),
)

// ---------------------------------------------------------------------------
// domain service providers (interface adapters)
// ---------------------------------------------------------------------------

func provideMailer(log *slog.Logger, cfg config.Config) *otp.Mailer {
	return otp.NewMailer(log, cfg.SMTP)
}

func provideSheetsService(log *slog.Logger, cfg config.Config, fetcher *sheets.Fetcher, cat *catalog.Catalog, profiles *store.Profiles) *sheets.Service {
	return sheets.NewService(log, cfg.Sheet, fetcher, cat, profiles)
}

func provideVerifyService(log *slog.Logger, cfg config.Config, users *store.Users, profiles *store.Profiles, mailer *otp.Mailer) *verify.Service {
	return verify.NewService(log, cfg.OTP, users, profiles, mailer)
}

func provideFormsService(log *slog.Logger, submissions *store.Submissions) *forms.Service {
	return forms.NewService(log, submissions)
}
