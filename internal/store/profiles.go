package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/staffdesk/hrbot/internal/catalog"
	"github.com/staffdesk/hrbot/internal/db"
)

// ErrProfileNotFound is returned when no profile exists for a login.
var ErrProfileNotFound = errors.New("profile not found")

// Profiles provides employee profile record access.
type Profiles struct {
	pool *pgxpool.Pool
}

func NewProfiles(pool *pgxpool.Pool) *Profiles {
	return &Profiles{pool: pool}
}

// ByLogin returns the profile stored under login.
func (s *Profiles) ByLogin(ctx context.Context, login string) (catalog.Profile, error) {
	if s.pool == nil {
		return catalog.Profile{}, fmt.Errorf("profiles store not configured")
	}
	var (
		p     catalog.Profile
		extra pgtype.Text
	)
	err := s.pool.QueryRow(ctx, `
		SELECT login, full_name, position, team, email, phone, manager,
		       vacation_left, salary_usd, COALESCE(extra_json::text, '')
		FROM profiles WHERE login = $1`, login).
		Scan(&p.Login, &p.FullName, &p.Position, &p.Team, &p.Email, &p.Phone,
			&p.Manager, &p.VacationLeft, &p.SalaryUSD, &extra)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return catalog.Profile{}, fmt.Errorf("profile by login: %w", err)
	}
	p.ExtraJSON = db.TextToString(extra)
	return p, nil
}

// Upsert writes the full profile row; absent numeric fields arrive as
// zero. Administrative overrides and feed ingestion share this path.
func (s *Profiles) Upsert(ctx context.Context, p catalog.Profile) error {
	if s.pool == nil {
		return fmt.Errorf("profiles store not configured")
	}
	var extra any
	if p.ExtraJSON != "" {
		extra = p.ExtraJSON
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO profiles (login, full_name, position, team, email, phone, manager, vacation_left, salary_usd, extra_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (login) DO UPDATE SET
		  full_name = excluded.full_name,
		  position = excluded.position,
		  team = excluded.team,
		  email = excluded.email,
		  phone = excluded.phone,
		  manager = excluded.manager,
		  vacation_left = excluded.vacation_left,
		  salary_usd = excluded.salary_usd,
		  extra_json = excluded.extra_json`,
		p.Login, p.FullName, p.Position, p.Team, p.Email, p.Phone, p.Manager,
		p.VacationLeft, p.SalaryUSD, extra,
	)
	if err != nil {
		return fmt.Errorf("upsert profile %q: %w", p.Login, err)
	}
	return nil
}

// UpsertBatch persists a feed batch login by login. Reads during a batch
// may see a mix of old and new rows; profile reads are always by exact
// login key, so this is accepted.
func (s *Profiles) UpsertBatch(ctx context.Context, profiles []catalog.Profile) error {
	for _, p := range profiles {
		if p.Login == "" {
			continue
		}
		if err := s.Upsert(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
