package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"quizfeed/internal/config"
	"quizfeed/internal/domain"
	"quizfeed/internal/ports"
)

const newsTable = "tbl_news"

// ErrNotConnected is returned when no usable connection could be (re)established.
var ErrNotConnected = errors.New("content store not connected")

// Opener establishes a fresh, verified connection.
type Opener func(ctx context.Context) (*sqlx.DB, error)

// Classification is the externally supplied category/status of inserted articles.
type Classification struct {
	CategoryID  int64
	Status      int
	ContentType string
}

// MySQLContentStore persists rendered articles into the news table.
type MySQLContentStore struct {
	mu             sync.Mutex
	db             *sqlx.DB
	open           Opener
	builder        sq.StatementBuilderType
	classification Classification
	now            func() time.Time
	logger         *slog.Logger
}

var _ ports.ContentStore = (*MySQLContentStore)(nil)

// MySQLOpener returns an Opener that connects with the given settings.
func MySQLOpener(cfg config.MySQLConfig) Opener {
	return func(ctx context.Context) (*sqlx.DB, error) {
		dsn := mysql.NewConfig()
		dsn.User = cfg.User
		dsn.Passwd = cfg.Password
		dsn.Net = "tcp"
		dsn.Addr = cfg.Address()
		dsn.DBName = cfg.Database
		dsn.ParseTime = true
		dsn.Timeout = cfg.Timeout
		dsn.Params = map[string]string{"charset": "utf8mb4"}

		db, err := sqlx.ConnectContext(ctx, "mysql", dsn.FormatDSN())
		if err != nil {
			return nil, fmt.Errorf("connect mysql %s: %w", cfg.Address(), err)
		}
		return db, nil
	}
}

// OpenMySQLContentStore establishes the initial connection. Failing here is fatal for a run.
func OpenMySQLContentStore(ctx context.Context, open Opener, class Classification, log *slog.Logger) (*MySQLContentStore, error) {
	db, err := open(ctx)
	if err != nil {
		return nil, err
	}
	return NewMySQLContentStore(db, open, class, log), nil
}

// NewMySQLContentStore wraps an existing connection; open is used for a single reconnect.
func NewMySQLContentStore(db *sqlx.DB, open Opener, class Classification, log *slog.Logger) *MySQLContentStore {
	return &MySQLContentStore{
		db:             db,
		open:           open,
		builder:        sq.StatementBuilder.PlaceholderFormat(sq.Question),
		classification: class,
		now:            time.Now,
		logger:         log,
	}
}

// WithClock overrides the timestamp source used for last_update and CreatedAt.
func (s *MySQLContentStore) WithClock(now func() time.Time) *MySQLContentStore {
	s.now = now
	return s
}

// Persist inserts one article row and returns it with the assigned identifier.
func (s *MySQLContentStore) Persist(ctx context.Context, doc domain.RenderedDocument) (domain.PersistedArticle, error) {
	db, err := s.connection(ctx)
	if err != nil {
		return domain.PersistedArticle{}, err
	}

	now := s.now()
	query, args, err := s.builder.
		Insert(newsTable).
		Columns(
			"cat_id",
			"news_title",
			"news_date",
			"news_description",
			"news_image",
			"news_status",
			"video_url",
			"video_id",
			"content_type",
			"size",
			"view_count",
			"last_update",
		).
		Values(
			s.classification.CategoryID,
			doc.Title,
			doc.Date.Format("2006-01-02"),
			doc.Body,
			doc.ImageReference,
			s.classification.Status,
			"",
			"",
			s.classification.ContentType,
			"",
			0,
			now,
		).
		ToSql()
	if err != nil {
		return domain.PersistedArticle{}, fmt.Errorf("build insert: %w", err)
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.PersistedArticle{}, fmt.Errorf("insert article: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.PersistedArticle{}, fmt.Errorf("read article id: %w", err)
	}

	return domain.PersistedArticle{RenderedDocument: doc, ID: id, CreatedAt: now}, nil
}

// connection returns a live handle, reconnecting exactly once if the current one is stale.
func (s *MySQLContentStore) connection(ctx context.Context) (*sqlx.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		err := s.db.PingContext(ctx)
		if err == nil {
			return s.db, nil
		}
		s.warn("content store connection lost, reconnecting", "error", err)
		_ = s.db.Close()
		s.db = nil
	}

	if s.open == nil {
		return nil, ErrNotConnected
	}

	db, err := s.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotConnected, err)
	}
	s.db = db
	return db, nil
}

// Close releases the connection pool.
func (s *MySQLContentStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *MySQLContentStore) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
