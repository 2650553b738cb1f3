package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"
	"wishTracker/internal/logger"
	"wishTracker/internal/migrations"
	"wishTracker/internal/models/wish"
	repo "wishTracker/internal/repository"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"

	slowQuery = 100 * time.Millisecond
)

type Options struct {
	MaxConns        int32
	MinConns        int32
	MaxConnIdleTime time.Duration
	// ConnectAttempts bounds the pings made before New gives up.
	ConnectAttempts uint64
}

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, connString string, opts Options) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: failed to parse database config", err)
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}
	if opts.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: failed to create pool", err)
		return nil, fmt.Errorf("create pool: %w", err)
	}

	attempts := opts.ConnectAttempts
	if attempts == 0 {
		attempts = 1
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), attempts-1), ctx)
	err = backoff.RetryNotify(func() error {
		return pool.Ping(ctx)
	}, policy, func(err error, wait time.Duration) {
		logger.Warn("Repository: ping failed, retrying", zap.Error(err), zap.Duration("wait", wait))
	})
	if err != nil {
		pool.Close()
		logger.Error("Repository: ping failed", err)
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.Info("Repository: connected to PostgreSQL")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: PostgreSQL connections closed")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, wishToCreate *wish.Wish) (err error) {
	start := time.Now()
	defer warnIfSlow("create", start)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	query := `INSERT INTO wishes (uuid, title, status, category, created_at)
				VALUES ($1, $2, $3, $4, $5)`

	_, err = tx.Exec(ctx, query,
		wishToCreate.UUID,
		wishToCreate.Title,
		wishToCreate.Status,
		wishToCreate.Category,
		wishToCreate.CreatedAt,
	)
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			return repo.ErrAlreadyExists
		}
		logger.Error("Repository: failed to insert wish", err)
		return fmt.Errorf("insert wish: %w", err)
	}

	for _, remark := range wishToCreate.Remarks {
		if err = insertRemark(ctx, tx, wishToCreate.UUID, remark); err != nil {
			logger.Error("Repository: failed to insert remark", err)
			return fmt.Errorf("insert remark: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*wish.Wish, error) {
	start := time.Now()
	defer warnIfSlow("get_by_id", start)

	query := `SELECT uuid, title, status, category, created_at
				FROM wishes
				WHERE uuid = $1`

	w := &wish.Wish{}
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&w.UUID,
		&w.Title,
		&w.Status,
		&w.Category,
		&w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to get wish", err)
		return nil, fmt.Errorf("get wish: %w", err)
	}

	remarks, err := s.remarksOf(ctx, `WHERE wish_uuid = $1`, id)
	if err != nil {
		return nil, err
	}
	w.Remarks = remarks[id]
	if w.Remarks == nil {
		w.Remarks = []wish.Remark{}
	}
	return w, nil
}

// List returns every wish in insertion order with its remarks.
func (s *Storage) List(ctx context.Context) ([]*wish.Wish, error) {
	start := time.Now()
	defer warnIfSlow("list", start)

	query := `SELECT uuid, title, status, category, created_at
				FROM wishes
				ORDER BY seq`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		logger.Error("Repository: failed to list wishes", err)
		return nil, fmt.Errorf("list wishes: %w", err)
	}
	defer rows.Close()

	wishes := []*wish.Wish{}
	for rows.Next() {
		w := &wish.Wish{}
		if err := rows.Scan(&w.UUID, &w.Title, &w.Status, &w.Category, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wish: %w", err)
		}
		wishes = append(wishes, w)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: row iteration failed", err)
		return nil, fmt.Errorf("iterate wishes: %w", err)
	}

	remarks, err := s.remarksOf(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, w := range wishes {
		w.Remarks = remarks[w.UUID]
		if w.Remarks == nil {
			w.Remarks = []wish.Remark{}
		}
	}
	return wishes, nil
}

func (s *Storage) UpdateStatus(ctx context.Context, id uuid.UUID, status wish.Status) error {
	start := time.Now()
	defer warnIfSlow("update_status", start)

	tag, err := s.pool.Exec(ctx, `UPDATE wishes SET status = $1 WHERE uuid = $2`, status, id)
	if err != nil {
		logger.Error("Repository: failed to update status", err)
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) AppendRemark(ctx context.Context, id uuid.UUID, remark wish.Remark) error {
	start := time.Now()
	defer warnIfSlow("append_remark", start)

	err := insertRemark(ctx, s.pool, id, remark)
	if errors.Is(err, repo.ErrNotFound) || pgCode(err) == codeForeignKeyViolation {
		return repo.ErrNotFound
	}
	if err != nil {
		logger.Error("Repository: failed to append remark", err)
		return fmt.Errorf("append remark: %w", err)
	}
	return nil
}

// Delete removes the wish; remarks go with it through ON DELETE CASCADE.
func (s *Storage) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer warnIfSlow("delete", start)

	tag, err := s.pool.Exec(ctx, `DELETE FROM wishes WHERE uuid = $1`, id)
	if err != nil {
		logger.Error("Repository: failed to delete wish", err)
		return fmt.Errorf("delete wish: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// Migrate applies the embedded migrations.
func (s *Storage) Migrate(ctx context.Context) (err error) {
	m, err := s.migrator()
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeMigrator(m)) }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Repository: migrations failed", err)
		return fmt.Errorf("migrate up: %w", err)
	}
	logger.Info("Repository: migrations applied")
	return nil
}

// Down rolls every migration back.
func (s *Storage) Down(ctx context.Context) (err error) {
	m, err := s.migrator()
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeMigrator(m)) }()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Repository: rollback failed", err)
		return fmt.Errorf("migrate down: %w", err)
	}
	logger.Info("Repository: migrations rolled back")
	return nil
}

// closeMigrator hands the connection the migrate driver holds back to the pool.
func closeMigrator(m *migrate.Migrate) error {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		srcErr = fmt.Errorf("close migrations source: %w", srcErr)
	}
	if dbErr != nil {
		dbErr = fmt.Errorf("close migrations driver: %w", dbErr)
	}
	err := multierr.Combine(srcErr, dbErr)
	if err != nil {
		logger.Error("Repository: failed to close migrator", err)
	}
	return err
}

func (s *Storage) migrator() (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("migrations source: %w", err)
	}
	driver, err := pgxmigrate.WithInstance(stdlib.OpenDBFromPool(s.pool), &pgxmigrate.Config{})
	if err != nil {
		return nil, fmt.Errorf("migrations driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("migrations init: %w", err)
	}
	return m, nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertRemark(ctx context.Context, db execer, wishID uuid.UUID, remark wish.Remark) error {
	query := `INSERT INTO remarks (uuid, wish_uuid, content, created_at)
				SELECT $1, $2, $3, $4
				WHERE EXISTS (SELECT 1 FROM wishes WHERE uuid = $2)`

	tag, err := db.Exec(ctx, query, remark.UUID, wishID, remark.Content, remark.CreatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// remarksOf loads remarks grouped by wish, oldest first.
func (s *Storage) remarksOf(ctx context.Context, where string, args ...any) (map[uuid.UUID][]wish.Remark, error) {
	query := `SELECT wish_uuid, uuid, content, created_at FROM remarks ` + where + ` ORDER BY seq`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: failed to load remarks", err)
		return nil, fmt.Errorf("load remarks: %w", err)
	}
	defer rows.Close()

	res := make(map[uuid.UUID][]wish.Remark)
	for rows.Next() {
		var (
			wishID uuid.UUID
			r      wish.Remark
		)
		if err := rows.Scan(&wishID, &r.UUID, &r.Content, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan remark: %w", err)
		}
		res[wishID] = append(res[wishID], r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate remarks: %w", err)
	}
	return res, nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func warnIfSlow(op string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: slow query", zap.String("operation", op), zap.Duration("ms", elapsed))
	}
}
