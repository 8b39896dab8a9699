package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/tarun-khatri/competitor-metrics/internal/model"

	_ "github.com/lib/pq"
)

// ErrNotFound is returned when a company lookup matches nothing.
var ErrNotFound = errors.New("company not found")

// Registry persists tracked companies and their daily follower snapshots.
// The metrics core treats it as a collaborator: it only reads identifiers
// and history from here.
type Registry struct {
	db *sql.DB
}

func Open(dsn, migrationsDir string) (*Registry, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the DB: %w", err)
	}

	if err := goose.Up(db, migrationsDir); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Registry{db: db}, nil
}

func New(db *sql.DB) *Registry {
	return &Registry{db: db}
}

// Ping exposes connection health for the health endpoint.
func (r *Registry) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Registry) CreateCompany(ctx context.Context, name, logo string, ids model.Identifiers) (model.Company, error) {
	company := model.Company{
		ID:          uuid.New(),
		Name:        name,
		Logo:        logo,
		Identifiers: ids,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO companies (id, name, logo, twitter, linkedin, medium, defillama, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		company.ID, company.Name, company.Logo,
		ids.Twitter, ids.LinkedIn, ids.Medium, ids.DefiLlama,
		company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		return model.Company{}, fmt.Errorf("failed to create company %s: %w", name, err)
	}

	return company, nil
}

func (r *Registry) UpdateCompany(ctx context.Context, id uuid.UUID, name, logo string, ids model.Identifiers) (model.Company, error) {
	now := time.Now()

	res, err := r.db.ExecContext(ctx, `
		UPDATE companies
		SET name = $2, logo = $3, twitter = $4, linkedin = $5, medium = $6, defillama = $7, updated_at = $8
		WHERE id = $1`,
		id, name, logo, ids.Twitter, ids.LinkedIn, ids.Medium, ids.DefiLlama, now,
	)
	if err != nil {
		return model.Company{}, fmt.Errorf("failed to update company %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Company{}, ErrNotFound
	}

	return r.GetCompany(ctx, id)
}

func (r *Registry) GetCompany(ctx context.Context, id uuid.UUID) (model.Company, error) {
	return r.scanCompany(r.db.QueryRowContext(ctx, selectCompany+` WHERE id = $1`, id))
}

func (r *Registry) GetCompanyByName(ctx context.Context, name string) (model.Company, error) {
	return r.scanCompany(r.db.QueryRowContext(ctx, selectCompany+` WHERE lower(name) = lower($1)`, name))
}

func (r *Registry) ListCompanies(ctx context.Context) ([]model.Company, error) {
	rows, err := r.db.QueryContext(ctx, selectCompany+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	companies := []model.Company{}
	for rows.Next() {
		company, err := r.scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}

	return companies, rows.Err()
}

const selectCompany = `
	SELECT id, name, logo, twitter, linkedin, medium, defillama, created_at, updated_at
	FROM companies`

type scanner interface {
	Scan(dest ...any) error
}

func (r *Registry) scanCompany(row scanner) (model.Company, error) {
	var (
		company model.Company
		logo    sql.NullString
		ids     [4]sql.NullString
	)

	err := row.Scan(&company.ID, &company.Name, &logo,
		&ids[0], &ids[1], &ids[2], &ids[3],
		&company.CreatedAt, &company.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Company{}, ErrNotFound
	}
	if err != nil {
		return model.Company{}, fmt.Errorf("failed to scan company: %w", err)
	}

	company.Logo = logo.String
	company.Identifiers = model.Identifiers{
		Twitter:   ids[0].String,
		LinkedIn:  ids[1].String,
		Medium:    ids[2].String,
		DefiLlama: ids[3].String,
	}

	return company, nil
}

// RecordFollowerSnapshot upserts one (company, platform, day) follower
// observation. Re-running the same day overwrites the count, so the history
// stays one point per day.
func (r *Registry) RecordFollowerSnapshot(ctx context.Context, companyID uuid.UUID, platform string, followers int) error {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO follower_history (id, company_id, platform, date, followers_count)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (company_id, platform, date)
		DO UPDATE SET followers_count = EXCLUDED.followers_count`,
		uuid.New(), companyID, platform, today, followers,
	)
	if err != nil {
		return fmt.Errorf("failed to record follower snapshot: %w", err)
	}
	return nil
}

// FollowerHistory returns chronological daily snapshots for one platform,
// capped to the most recent days entries.
func (r *Registry) FollowerHistory(ctx context.Context, companyID uuid.UUID, platform string, days int) ([]model.HistoryPoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, followers_count
		FROM follower_history
		WHERE company_id = $1 AND platform = $2
		ORDER BY date DESC
		LIMIT $3`,
		companyID, platform, days,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load follower history: %w", err)
	}
	defer rows.Close()

	var reversed []model.HistoryPoint
	for rows.Next() {
		var (
			date  time.Time
			count int
		)
		if err := rows.Scan(&date, &count); err != nil {
			return nil, fmt.Errorf("failed to scan follower history: %w", err)
		}
		reversed = append(reversed, model.HistoryPoint{Date: date.UTC().Format("2006-01-02"), Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query is newest-first for the LIMIT; callers want chronological.
	history := make([]model.HistoryPoint, len(reversed))
	for i, p := range reversed {
		history[len(reversed)-1-i] = p
	}

	return history, nil
}
