package modules

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"go.uber.org/fx"

	"github.com/staffdesk/hrbot/internal/adminapi"
	"github.com/staffdesk/hrbot/internal/bot"
	"github.com/staffdesk/hrbot/internal/catalog"
	"github.com/staffdesk/hrbot/internal/config"
	"github.com/staffdesk/hrbot/internal/forms"
	"github.com/staffdesk/hrbot/internal/sheets"
	"github.com/staffdesk/hrbot/internal/store"
	"github.com/staffdesk/hrbot/internal/verify"
)

var FrontendModule = fx.Module(
	"frontend",
	fx.Provide(
		provideBot,
		provideAdminServer,
	),
	fx.Invoke(
		startSync,
		startBot,
		startAdminServer,
	),
)

// ---------------------------------------------------------------------------
// front-end providers and lifecycle
// ---------------------------------------------------------------------------

func provideBot(
	log *slog.Logger,
	cfg config.Config,
	users *store.Users,
	profiles *store.Profiles,
	cat *catalog.Catalog,
	verifier *verify.Service,
	filler *forms.Service,
	syncer *sheets.Service,
) *bot.Service {
	return bot.NewService(log, cfg.Telegram, users, profiles, cat, verifier, filler, syncer)
}

func provideAdminServer(log *slog.Logger, cfg config.Config, users *store.Users, cat *catalog.Catalog, syncer *sheets.Service) *adminapi.Server {
	return adminapi.NewServer(log, cfg.AdminAPI, users, cat, syncer)
}

// startSync runs the initial content load and starts the recurring
// schedule. A failed initial load is not fatal; the default catalogs stay
// in place until the next successful sync.
func startSync(lc fx.Lifecycle, logger *slog.Logger, syncer *sheets.Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := syncer.Sync(ctx); err != nil {
				logger.Warn("initial sync failed", slog.Any("error", err))
			}
			syncer.StartSchedule()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			syncer.StopSchedule()
			return nil
		},
	})
}

func startBot(lc fx.Lifecycle, logger *slog.Logger, svc *bot.Service, shutdowner fx.Shutdowner) {
	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := svc.Run(runCtx); err != nil {
					logger.Error("bot stopped", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})
}

func startAdminServer(lc fx.Lifecycle, logger *slog.Logger, srv *adminapi.Server, shutdowner fx.Shutdowner) {
	if !srv.Enabled() {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("admin api failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	})
}
