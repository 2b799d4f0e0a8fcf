package db

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"subvention/internal/models"
	"subvention/migrations"
)

// Defaults for the apply/revoke unit of work.
const (
	DefaultTxTimeout    = 30 * time.Second
	DefaultTxMaxRetries = 5
)

// DB wraps a pgxpool connection pool.
type DB struct {
	Pool *pgxpool.Pool

	txTimeout    time.Duration
	txMaxRetries int
}

// Option configures a DB.
type Option func(*DB)

// WithTxTimeout bounds each apply/revoke transaction.
func WithTxTimeout(d time.Duration) Option {
	return func(db *DB) {
		if d > 0 {
			db.txTimeout = d
		}
	}
}

// WithTxMaxRetries sets how many times a transaction is re-run after a
// serialization failure or deadlock.
func WithTxMaxRetries(n int) Option {
	return func(db *DB) {
		if n >= 0 {
			db.txMaxRetries = n
		}
	}
}

// New creates a new database connection pool.
func New(ctx context.Context, connString string, opts ...Option) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := &DB{
		Pool:         pool,
		txTimeout:    DefaultTxTimeout,
		txMaxRetries: DefaultTxMaxRetries,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// RunMigrations runs all embedded SQL migrations.
func (d *DB) RunMigrations(connString string) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connString)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Ping checks that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

// Close closes the connection pool.
func (d *DB) Close() {
	d.Pool.Close()
}

// SeedDevAnnouncements inserts sample announcements for development.
// Skips seeding when any announcement already exists.
func (d *DB) SeedDevAnnouncements(ctx context.Context) error {
	var exists bool
	if err := d.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM announcements)`).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check announcements: %w", err)
	}
	if exists {
		return nil
	}

	samples := []struct {
		title      string
		siteType   string
		url        string
		subvention string
	}{
		{"Seoul Youth Grant 2024", "seoul", "https://example.org/seoul/youth-grant", "Seoul Youth Grant"},
		{"Busan Youth Fund", "busan", "https://example.org/busan/youth-fund", ""},
		{"AI기업 바우처 지원사업", "msit", "https://example.org/msit/ai-voucher", "AI Voucher"},
		{"Small Business Export Support", "kosme", "https://example.org/kosme/export", ""},
	}

	for _, s := range samples {
		a := &models.Announcement{
			SiteType:  s.siteType,
			Title:     s.title,
			OriginURL: s.url,
			Status:    models.StatusPending,
		}
		if s.subvention != "" {
			sub := &models.Subvention{Name: s.subvention}
			if err := d.CreateSubvention(ctx, sub); err != nil {
				return fmt.Errorf("failed to seed subvention %s: %w", s.subvention, err)
			}
			a.SubventionID = &sub.ID
			a.Status = models.StatusApproved
		}
		if err := d.CreateAnnouncement(ctx, a); err != nil {
			return fmt.Errorf("failed to seed announcement %s: %w", s.title, err)
		}
	}

	return nil
}
