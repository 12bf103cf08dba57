package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/staffdesk/hrbot/internal/catalog"
	"github.com/staffdesk/hrbot/internal/config"
)

// minSyncInterval is the floor for the recurring sync cadence, bounding
// load on the remote spreadsheet host regardless of configuration.
const minSyncInterval = 60 * time.Second

// RowSource fetches one spreadsheet tab as header-mapped rows.
type RowSource interface {
	Rows(ctx context.Context, editURL, gid string) ([]map[string]string, error)
}

// ProfileSink persists a batch of employee profiles by login.
type ProfileSink interface {
	UpsertBatch(ctx context.Context, profiles []catalog.Profile) error
}

// Service synchronizes the in-memory catalogs and the profile store with
// the remote spreadsheet. At most one sync runs at a time.
type Service struct {
	cfg      config.SheetConfig
	source   RowSource
	catalog  *catalog.Catalog
	profiles ProfileSink
	logger   *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

func NewService(log *slog.Logger, cfg config.SheetConfig, source RowSource, cat *catalog.Catalog, profiles ProfileSink) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		cfg:      cfg,
		source:   source,
		catalog:  cat,
		profiles: profiles,
		logger:   log.With(slog.String("service", "sync")),
	}
}

// Sync fetches all configured feeds, builds a new catalog generation, and
// publishes it atomically. Profiles are upserted individually by login.
// When every feed fails the previous generation stays authoritative and an
// error is returned.
func (s *Service) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	type feed struct {
		name string
		gid  string
	}
	var feeds []feed
	if s.cfg.FAQGID != "" {
		feeds = append(feeds, feed{"faq", s.cfg.FAQGID})
	}
	if s.cfg.FormsGID != "" {
		feeds = append(feeds, feed{"forms", s.cfg.FormsGID})
	}
	if s.cfg.ProfilesGID != "" {
		feeds = append(feeds, feed{"profiles", s.cfg.ProfilesGID})
	}
	if len(feeds) == 0 {
		// No tab ids configured: read the sheet's default tab.
		feeds = append(feeds, feed{"default", ""})
	}

	var (
		allRows [][]map[string]string
		failed  int
		lastErr error
	)
	for _, f := range feeds {
		rows, err := s.source.Rows(ctx, s.cfg.EditURL, f.gid)
		if err != nil {
			failed++
			lastErr = err
			s.logger.Error("feed fetch failed", slog.String("feed", f.name), slog.Any("error", err))
			continue
		}
		allRows = append(allRows, rows)
	}
	if failed == len(feeds) {
		return fmt.Errorf("sync: all feeds failed: %w", lastErr)
	}

	// Configured feeds can fetch successfully yet carry no rows; the
	// sheet's default tab is then the content of record.
	total := 0
	for _, rows := range allRows {
		total += len(rows)
	}
	if total == 0 && feeds[0].name != "default" {
		rows, err := s.source.Rows(ctx, s.cfg.EditURL, "")
		if err != nil {
			s.logger.Error("default tab fetch failed", slog.Any("error", err))
		} else {
			allRows = append(allRows, rows)
		}
	}

	builder := catalog.NewBuilder()
	profiles := map[string]catalog.Profile{}
	var profileOrder []string
	for _, rows := range allRows {
		for _, row := range rows {
			ingestRow(builder, profiles, &profileOrder, row)
		}
	}

	if builder.FAQEmpty() {
		installDefaultFAQ(builder)
	}
	if builder.FormsEmpty() {
		installDefaultForms(builder)
	}

	if len(profiles) > 0 && s.profiles != nil {
		batch := make([]catalog.Profile, 0, len(profiles))
		for _, login := range profileOrder {
			batch = append(batch, profiles[login])
		}
		if err := s.profiles.UpsertBatch(ctx, batch); err != nil {
			return fmt.Errorf("sync: upsert profiles: %w", err)
		}
	}

	snap := builder.Snapshot()
	s.catalog.Replace(snap)
	faqES, faqUK, formsES, formsUK := snap.Counts()
	s.logger.Info("catalog published",
		slog.Int("faq_es", faqES),
		slog.Int("faq_uk", faqUK),
		slog.Int("forms_es", formsES),
		slog.Int("forms_uk", formsUK),
		slog.Int("profiles", len(profiles)),
	)
	return nil
}

// StartSchedule begins the recurring background sync. An interval of zero
// or less disables it; anything configured faster than once per minute is
// clamped to the 60s floor.
func (s *Service) StartSchedule() {
	if s.cfg.SyncIntervalMin <= 0 {
		return
	}
	interval := time.Duration(s.cfg.SyncIntervalMin) * time.Minute
	if interval < minSyncInterval {
		interval = minSyncInterval
	}
	logger := &cronLogger{logger: s.logger}
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(logger)))
	s.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		if err := s.Sync(context.Background()); err != nil {
			s.logger.Error("scheduled sync failed", slog.Any("error", err))
		}
	})
	s.cron.Start()
}

// StopSchedule halts the recurring sync, waiting for a run in flight.
func (s *Service) StopSchedule() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

type cronLogger struct {
	logger *slog.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info(msg, slog.Any("details", keysAndValues))
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, slog.Any("error", err), slog.Any("details", keysAndValues))
}
