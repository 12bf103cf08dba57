// Package adminapi exposes a small operator HTTP surface: health, manual
// sheet sync, and usage stats. It is disabled unless an address is set.
package adminapi

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/staffdesk/hrbot/internal/catalog"
	"github.com/staffdesk/hrbot/internal/config"
	"github.com/staffdesk/hrbot/internal/sheets"
	"github.com/staffdesk/hrbot/internal/store"
)

// Server is the admin HTTP server (Echo) with bearer-token auth.
type Server struct {
	echo   *echo.Echo
	addr   string
	logger *slog.Logger

	users   *store.Users
	catalog *catalog.Catalog
	syncer  *sheets.Service
}

// NewServer builds the Echo server with recovery, request logging, and a
// static bearer token guard on the /admin routes.
func NewServer(log *slog.Logger, cfg config.AdminAPIConfig, users *store.Users, cat *catalog.Catalog, syncer *sheets.Service) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", c.RealIP()),
			)
			return nil
		},
	}))

	s := &Server{
		echo:    e,
		addr:    cfg.Addr,
		logger:  log.With(slog.String("component", "adminapi")),
		users:   users,
		catalog: cat,
		syncer:  syncer,
	}

	e.GET("/healthz", s.health)

	admin := e.Group("/admin", middleware.KeyAuth(func(key string, c echo.Context) (bool, error) {
		if cfg.Token == "" {
			return false, nil
		}
		return subtle.ConstantTimeCompare([]byte(key), []byte(cfg.Token)) == 1, nil
	}))
	admin.POST("/sync", s.sync)
	admin.GET("/stats", s.stats)

	return s
}

// Enabled reports whether a listen address was configured.
func (s *Server) Enabled() bool {
	return s.addr != ""
}

// Start starts the HTTP server (blocks until shutdown).
func (s *Server) Start() error {
	return s.echo.Start(s.addr)
}

// Stop gracefully shuts down the server using the given context.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	faqES, faqUK, formsES, formsUK := s.catalog.Current().Counts()
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"faq":    map[string]int{"es": faqES, "uk": faqUK},
		"forms":  map[string]int{"es": formsES, "uk": formsUK},
	})
}

func (s *Server) sync(c echo.Context) error {
	if err := s.syncer.Sync(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	faqES, faqUK, formsES, formsUK := s.catalog.Current().Counts()
	return c.JSON(http.StatusOK, map[string]any{
		"status": "synced",
		"faq":    map[string]int{"es": faqES, "uk": faqUK},
		"forms":  map[string]int{"es": formsES, "uk": formsUK},
	})
}

func (s *Server) stats(c echo.Context) error {
	st, err := s.users.Stats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"total_users": st.TotalUsers,
		"active_week": st.ActiveWeek,
		"msg_total":   st.MsgTotal,
		"click_total": st.ClickTotal,
	})
}
