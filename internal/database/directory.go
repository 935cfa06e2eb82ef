package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/construfacil/internal/store"
)

// Directory is a store.Directory backed by the professionals table.
type Directory struct {
	db     *sqlx.DB
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

var _ store.Directory = (*Directory)(nil)

// NewDirectory creates a Directory on db. A non-positive ttl falls back to
// 30 days and a nil now uses time.Now.
func NewDirectory(db *sqlx.DB, ttl time.Duration, now func() time.Time, logger *slog.Logger) *Directory {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Directory{
		db:     db,
		ttl:    ttl,
		now:    now,
		logger: logger.With("component", "directory_store"),
	}
}

// Ping checks the database connection.
func (d *Directory) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// List implements store.Directory.
func (d *Directory) List(ctx context.Context) ([]store.Professional, error) {
	var rows []professionalRow
	query := `
        SELECT seq, id, owner_id, name, trade, contact, description, lat, lng, created_at
        FROM professionals
        ORDER BY seq ASC;
    `
	if err := d.db.SelectContext(ctx, &rows, query); err != nil {
		d.logger.ErrorContext(ctx, "Error listing professionals", "error", err)
		return nil, fmt.Errorf("failed to list professionals: %w", err)
	}

	out := make([]store.Professional, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.professional())
	}
	return out, nil
}

// Register implements store.Directory. The delete of the owner's previous
// listing and the insert of the new one share a transaction.
func (d *Directory) Register(ctx context.Context, reg store.Registration) (*store.Professional, error) {
	if err := reg.Normalize(); err != nil {
		return nil, err
	}

	p := store.NewProfessional(reg, d.now())
	row := rowFromProfessional(p)

	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		d.logger.ErrorContext(ctx, "Failed to begin transaction for registration", "owner_id", p.OwnerID, "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			d.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM professionals WHERE owner_id = ?;`, p.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove previous listing of owner %s: %w", p.OwnerID, err)
	}
	replaced, _ := res.RowsAffected()

	insert := `
        INSERT INTO professionals (id, owner_id, name, trade, contact, description, lat, lng, created_at)
        VALUES (:id, :owner_id, :name, :trade, :contact, :description, :lat, :lng, :created_at);
    `
	if _, err := tx.NamedExecContext(ctx, insert, row); err != nil {
		d.logger.ErrorContext(ctx, "Error inserting professional", "owner_id", p.OwnerID, "error", err)
		return nil, fmt.Errorf("failed to insert listing of owner %s: %w", p.OwnerID, err)
	}

	if err := tx.Commit(); err != nil {
		d.logger.ErrorContext(ctx, "Failed to commit registration", "owner_id", p.OwnerID, "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	d.logger.DebugContext(ctx, "Professional registered", "owner_id", p.OwnerID, "id", p.ID, "replaced", replaced)
	return &p, nil
}

// DeleteByOwner implements store.Directory.
func (d *Directory) DeleteByOwner(ctx context.Context, ownerID string) (int, error) {
	ownerID = strings.TrimSpace(ownerID)

	res, err := d.db.ExecContext(ctx, `DELETE FROM professionals WHERE owner_id = ?;`, ownerID)
	if err != nil {
		d.logger.ErrorContext(ctx, "Error deleting professional", "owner_id", ownerID, "error", err)
		return 0, fmt.Errorf("failed to delete listings of owner %s: %w", ownerID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted listings: %w", err)
	}
	return int(n), nil
}

// EvictExpired implements store.Directory.
func (d *Directory) EvictExpired(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-d.ttl).UnixNano()

	res, err := d.db.ExecContext(ctx, `DELETE FROM professionals WHERE created_at < ?;`, cutoff)
	if err != nil {
		d.logger.ErrorContext(ctx, "Error evicting expired professionals", "error", err)
		return 0, fmt.Errorf("failed to evict expired listings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count evicted listings: %w", err)
	}
	return int(n), nil
}

// RunSQLMaintenance executes a VACUUM on the database. VACUUM cannot run
// inside a transaction.
func (d *Directory) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	d.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)")

	_, err := d.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		d.logger.WarnContext(ctx, "VACUUM timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		d.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	d.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed")
	return nil
}
