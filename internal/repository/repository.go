package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/mkovalev/linkcut/internal/storage"
)

// InitDB opens the Postgres connection over the pgx stdlib driver and
// makes sure the urls table exists.
func InitDB(dsn string, logger *zap.Logger) *sql.DB {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		logger.Fatal("cannot open database", zap.Error(err))
	}

	if err := db.Ping(); err != nil {
		logger.Fatal("cannot reach database", zap.Error(err))
	}

	createTable := `
		CREATE TABLE IF NOT EXISTS urls (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		key TEXT UNIQUE NOT NULL,
		secret_key TEXT UNIQUE NOT NULL,
		target_url TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT true,
		clicks BIGINT NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS urls_target_url_idx ON urls (target_url);`

	if _, err := db.Exec(createTable); err != nil {
		logger.Fatal("cannot create urls table", zap.Error(err))
	}

	return db
}

// URLRepository implements storage.Store on Postgres.
type URLRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func CreateURLRepository(db *sql.DB, logger *zap.Logger) *URLRepository {
	return &URLRepository{
		db:     db,
		logger: logger,
	}
}

func (r *URLRepository) Create(ctx context.Context, key, secretKey, targetURL string) (*storage.URLRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO urls (key, secret_key, target_url)
		 VALUES ($1, $2, $3)
		 RETURNING id, key, secret_key, target_url, is_active, clicks;`,
		key, secretKey, targetURL,
	)

	rec, err := scanRecord(row)
	if err != nil {
		// The generator pre-checks candidates; a unique violation here
		// means two creates raced for the same key.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			r.logger.Warn("unique violation on insert", zap.String("key", key))
			return nil, storage.ErrConflict
		}
		return nil, err
	}

	return rec, nil
}

func (r *URLRepository) FindActiveByKey(ctx context.Context, key string) (*storage.URLRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, key, secret_key, target_url, is_active, clicks
		 FROM urls WHERE key = $1 AND is_active;`, key)

	return notFoundOnNoRows(scanRecord(row))
}

func (r *URLRepository) FindActiveBySecretKey(ctx context.Context, secretKey string) (*storage.URLRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, key, secret_key, target_url, is_active, clicks
		 FROM urls WHERE secret_key = $1 AND is_active;`, secretKey)

	return notFoundOnNoRows(scanRecord(row))
}

func (r *URLRepository) FindByKey(ctx context.Context, key string) (*storage.URLRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, key, secret_key, target_url, is_active, clicks
		 FROM urls WHERE key = $1;`, key)

	return notFoundOnNoRows(scanRecord(row))
}

// IncrementClicks charges one click in a single conditional update, so
// concurrent redirects of the same key never lose increments and an
// inactive record is never charged.
func (r *URLRepository) IncrementClicks(ctx context.Context, key string) (*storage.URLRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE urls SET clicks = clicks + 1
		 WHERE key = $1 AND is_active
		 RETURNING id, key, secret_key, target_url, is_active, clicks;`, key)

	return notFoundOnNoRows(scanRecord(row))
}

// Deactivate is one conditional update as well: the is_active filter in
// the WHERE clause makes the true -> false transition happen at most
// once, a second call matches no row.
func (r *URLRepository) Deactivate(ctx context.Context, secretKey string) (*storage.URLRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE urls SET is_active = false
		 WHERE secret_key = $1 AND is_active
		 RETURNING id, key, secret_key, target_url, is_active, clicks;`, secretKey)

	return notFoundOnNoRows(scanRecord(row))
}

func (r *URLRepository) PingContext(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*storage.URLRecord, error) {
	var rec storage.URLRecord
	err := row.Scan(&rec.ID, &rec.Key, &rec.SecretKey, &rec.TargetURL, &rec.IsActive, &rec.Clicks)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func notFoundOnNoRows(rec *storage.URLRecord, err error) (*storage.URLRecord, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}
