// Package sqlstore keeps notes as discrete rows of a relational "notes" table,
// on SQLite or PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"

	"github.com/aretw0/dailynotes/pkg/core"
)

// TimeLayout stores instants as fixed-width UTC text so lexical order is time order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

const table = "notes"

var columns = []string{"id", "content", "created_at", "updated_at", "is_quick_capture"}

// Config holds the configuration for the SQL repository.
type Config struct {
	Dialect Dialect
	// DSN is a file path for SQLite or a connection URL for PostgreSQL.
	DSN string
	// Location defines day boundaries and the "[HH:MM]" rendering.
	Location *time.Location
	Logger   *slog.Logger
}

// Repository implements core.EntryBackend over database/sql.
type Repository struct {
	db      *sql.DB
	dialect Dialect
	sb      sq.StatementBuilderType
	loc     *time.Location
	logger  *slog.Logger
	version atomic.Int64
}

// Open connects to cfg.DSN with the dialect's driver. Call Initialize to
// apply migrations.
func Open(cfg Config) (*Repository, error) {
	if cfg.Dialect == "" {
		cfg.Dialect = SQLite
	}
	dsn := cfg.DSN
	if cfg.Dialect == SQLite {
		dsn = sqliteDSN(dsn)
	}
	db, err := sql.Open(cfg.Dialect.driverName(), dsn)
	if err != nil {
		return nil, storageErr("open database", err)
	}

	return New(db, cfg), nil
}

// sqlitePragmas are applied to every pooled connection.
var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
}

// sqliteDSN appends the pragmas to a plain file path.
// A DSN that already has query parameters is used as is.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	params := make([]string, len(sqlitePragmas))
	for i, p := range sqlitePragmas {
		params[i] = "_pragma=" + p
	}
	return path + "?" + strings.Join(params, "&")
}

// New wraps an existing handle.
func New(db *sql.DB, cfg Config) *Repository {
	if cfg.Dialect == "" {
		cfg.Dialect = SQLite
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Repository{
		db:      db,
		dialect: cfg.Dialect,
		sb:      sq.StatementBuilder.PlaceholderFormat(cfg.Dialect.placeholder()),
		loc:     cfg.Location,
		logger:  cfg.Logger,
	}
}

// DB exposes the underlying handle.
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Initialize checks the connection and applies pending migrations.
func (r *Repository) Initialize(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return storageErr("ping database", err)
	}
	_, err := r.Migrate(ctx)
	return err
}

// Migrate applies every pending migration and returns the resulting schema version.
// Re-running it on an up-to-date schema is a no-op.
func (r *Repository) Migrate(ctx context.Context) (int64, error) {
	provider, err := r.provider()
	if err != nil {
		return 0, err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, storageErr("goose up", err)
	}
	for _, res := range results {
		r.logger.Info("migration applied", "version", res.Source.Version, "file", res.Source.Path, "duration", res.Duration)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, storageErr("read schema version", err)
	}
	r.version.Store(version)
	return version, nil
}

// SchemaVersion reports the applied migration version.
func (r *Repository) SchemaVersion(ctx context.Context) (int64, error) {
	provider, err := r.provider()
	if err != nil {
		return 0, err
	}
	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, storageErr("read schema version", err)
	}
	return version, nil
}

func (r *Repository) provider() (*goose.Provider, error) {
	fsys, err := r.dialect.Migrations()
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	provider, err := goose.NewProvider(r.dialect.gooseDialect(), r.db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose new provider: %w", err)
	}
	return provider, nil
}

// Close closes the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Read returns the Aggregate of the rows created during day.
func (r *Repository) Read(ctx context.Context, day core.Day) (string, error) {
	start, end := day.Bounds(r.loc)
	entries, err := r.QueryRange(ctx, start, end)
	if err != nil {
		return "", err
	}
	return core.EntriesToText(entries, r.loc), nil
}

// QueryRange returns rows with start <= created_at < end, ascending.
func (r *Repository) QueryRange(ctx context.Context, start, end time.Time) ([]core.NoteEntry, error) {
	q := r.sb.Select(columns...).From(table).
		Where(sq.GtOrEq{"created_at": formatTime(start)}).
		OrderBy("created_at ASC", "id ASC")
	if !end.IsZero() {
		q = q.Where(sq.Lt{"created_at": formatTime(end)})
	}
	return r.queryEntries(ctx, q)
}

// Write deletes the rows of day and inserts each content line of text as a
// new row created at at, in one transaction. Bracket prefixes are stripped
// and not parsed back into instants.
func (r *Repository) Write(ctx context.Context, day core.Day, text string, at time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.deleteDay(ctx, tx, day); err != nil {
		return err
	}

	stamp := formatTime(at)
	for _, content := range core.TextToContents(text) {
		query, args, err := r.sb.Insert(table).
			Columns("content", "created_at", "updated_at", "is_quick_capture").
			Values(content, stamp, stamp, false).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return storageErr("insert note", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit", err)
	}
	return nil
}

// Append inserts one row and returns it with its assigned id.
func (r *Repository) Append(ctx context.Context, day core.Day, entry core.NoteEntry) (core.NoteEntry, error) {
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = entry.CreatedAt
	}
	query, args, err := r.sb.Insert(table).
		Columns("content", "created_at", "updated_at", "is_quick_capture").
		Values(entry.Content, formatTime(entry.CreatedAt), formatTime(entry.UpdatedAt), entry.IsQuickCapture).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return core.NoteEntry{}, fmt.Errorf("build insert: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&entry.ID); err != nil {
		return core.NoteEntry{}, storageErr("insert note", err)
	}
	return entry, nil
}

// DeleteDay removes every row created during day.
func (r *Repository) DeleteDay(ctx context.Context, day core.Day) error {
	return r.deleteDay(ctx, r.db, day)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *Repository) deleteDay(ctx context.Context, db execer, day core.Day) error {
	start, end := day.Bounds(r.loc)
	query, args, err := r.sb.Delete(table).
		Where(sq.GtOrEq{"created_at": formatTime(start)}).
		Where(sq.Lt{"created_at": formatTime(end)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return storageErr("delete day "+day.String(), err)
	}
	return nil
}

// Get retrieves one row by id.
func (r *Repository) Get(ctx context.Context, id int64) (core.NoteEntry, error) {
	q := r.sb.Select(columns...).From(table).Where(sq.Eq{"id": id})
	entries, err := r.queryEntries(ctx, q)
	if err != nil {
		return core.NoteEntry{}, err
	}
	if len(entries) == 0 {
		return core.NoteEntry{}, core.ErrNotFound
	}
	return entries[0], nil
}

// Update rewrites the content and updated_at of one row.
func (r *Repository) Update(ctx context.Context, id int64, content string, at time.Time) (core.NoteEntry, error) {
	query, args, err := r.sb.Update(table).
		Set("content", content).
		Set("updated_at", formatTime(at)).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return core.NoteEntry{}, fmt.Errorf("build update: %w", err)
	}
	return r.queryOne(ctx, "update note", query, args)
}

// Delete removes one row and returns it.
func (r *Repository) Delete(ctx context.Context, id int64) (core.NoteEntry, error) {
	query, args, err := r.sb.Delete(table).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return core.NoteEntry{}, fmt.Errorf("build delete: %w", err)
	}
	return r.queryOne(ctx, "delete note", query, args)
}

// List returns one page of rows, newest first, and the total count matching q.
func (r *Repository) List(ctx context.Context, q core.ListQuery) ([]core.NoteEntry, int, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = core.DefaultListLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	countQ := r.sb.Select("COUNT(*)").From(table)
	pageQ := r.sb.Select(columns...).From(table).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))
	if q.QuickCapture != nil {
		countQ = countQ.Where(sq.Eq{"is_quick_capture": *q.QuickCapture})
		pageQ = pageQ.Where(sq.Eq{"is_quick_capture": *q.QuickCapture})
	}

	query, args, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, storageErr("count notes", err)
	}

	entries, err := r.queryEntries(ctx, pageQ)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *Repository) queryOne(ctx context.Context, op, query string, args []any) (core.NoteEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return core.NoteEntry{}, storageErr(op, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return core.NoteEntry{}, storageErr(op, err)
		}
		return core.NoteEntry{}, core.ErrNotFound
	}
	entry, err := r.scanEntry(rows)
	if err != nil {
		return core.NoteEntry{}, storageErr(op, err)
	}
	return entry, nil
}

func (r *Repository) queryEntries(ctx context.Context, q sq.SelectBuilder) ([]core.NoteEntry, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("query notes", err)
	}
	defer rows.Close()

	var out []core.NoteEntry
	for rows.Next() {
		entry, err := r.scanEntry(rows)
		if err != nil {
			return nil, storageErr("scan note", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate notes", err)
	}
	return out, nil
}

// scanEntry decodes one row. Timestamp and boolean columns are read
// leniently: an unparseable created_at becomes the zero instant, an
// unparseable updated_at falls back to created_at and an unparseable flag
// becomes false. The row is still returned by Get and List. Read and
// QueryRange filter on the stored created_at text in SQL, so a row whose
// text does not sort like a timestamp falls outside every day range and
// only surfaces through Get and List.
func (r *Repository) scanEntry(rows *sql.Rows) (core.NoteEntry, error) {
	var (
		entry            core.NoteEntry
		created, updated any
		quick            any
	)
	if err := rows.Scan(&entry.ID, &entry.Content, &created, &updated, &quick); err != nil {
		return core.NoteEntry{}, err
	}

	var ok bool
	if entry.CreatedAt, ok = parseTime(created); !ok {
		r.malformed(entry.ID, "created_at", created)
	}
	if entry.UpdatedAt, ok = parseTime(updated); !ok {
		r.malformed(entry.ID, "updated_at", updated)
		entry.UpdatedAt = entry.CreatedAt
	}
	if entry.IsQuickCapture, ok = parseBool(quick); !ok {
		r.malformed(entry.ID, "is_quick_capture", quick)
	}
	return entry, nil
}

func (r *Repository) malformed(id int64, field string, value any) {
	r.logger.Warn("malformed note row, using default", "id", id, "field", field, "value", fmt.Sprint(value))
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func parseTime(v any) (time.Time, bool) {
	var s string
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), true
	case string:
		s = x
	case []byte:
		s = string(x)
	default:
		return time.Time{}, false
	}
	for _, layout := range []string{TimeLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case int64:
		if x == 0 || x == 1 {
			return x == 1, true
		}
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return b, err == nil
	case []byte:
		b, err := strconv.ParseBool(strings.TrimSpace(string(x)))
		return b, err == nil
	}
	return false, false
}

func storageErr(op string, err error) error {
	if errors.Is(err, core.ErrStorageUnavailable) || errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, core.ErrStorageUnavailable, err)
}

var _ core.EntryBackend = (*Repository)(nil)
