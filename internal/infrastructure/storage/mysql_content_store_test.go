package storage_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizfeed/internal/domain"
	"quizfeed/internal/infrastructure/storage"
)

var insertArticle = regexp.QuoteMeta(
	"INSERT INTO tbl_news (cat_id,news_title,news_date,news_description,news_image,news_status,video_url,video_id,content_type,size,view_count,last_update) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)",
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return sqlx.NewDb(db, "mysql"), mock
}

func sampleDocument() domain.RenderedDocument {
	return domain.RenderedDocument{
		Title:          "15 June 2024 Gujarati Current Affairs",
		Date:           time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
		DateLabel:      "15 June 2024",
		Body:           "<div>body</div>",
		ImageReference: "15 June 2024.png",
	}
}

func TestMySQLContentStorePersist(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	now := time.Date(2024, time.June, 15, 7, 0, 0, 0, time.UTC)
	class := storage.Classification{CategoryID: 4, Status: 1, ContentType: "Post"}
	store := storage.NewMySQLContentStore(db, nil, class, nil).WithClock(func() time.Time { return now })

	doc := sampleDocument()
	mock.ExpectPing()
	mock.ExpectExec(insertArticle).
		WithArgs(int64(4), doc.Title, "2024-06-15", doc.Body, doc.ImageReference, 1, "", "", "Post", "", 0, now).
		WillReturnResult(sqlmock.NewResult(42, 1))

	article, err := store.Persist(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, int64(42), article.ID)
	assert.True(t, article.CreatedAt.Equal(now))
	assert.Equal(t, doc.Title, article.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLContentStoreReconnectsOnce(t *testing.T) {
	t.Parallel()

	stale, staleMock := newMockDB(t)
	fresh, freshMock := newMockDB(t)

	staleMock.ExpectPing().WillReturnError(errors.New("connection lost"))
	staleMock.ExpectClose()
	freshMock.ExpectExec(insertArticle).WillReturnResult(sqlmock.NewResult(7, 1))

	opens := 0
	opener := func(context.Context) (*sqlx.DB, error) {
		opens++
		return fresh, nil
	}

	store := storage.NewMySQLContentStore(stale, opener, storage.Classification{}, nil)
	article, err := store.Persist(context.Background(), sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, int64(7), article.ID)
	assert.Equal(t, 1, opens)
	require.NoError(t, staleMock.ExpectationsWereMet())
	require.NoError(t, freshMock.ExpectationsWereMet())
}

func TestMySQLContentStoreReconnectFailure(t *testing.T) {
	t.Parallel()

	stale, staleMock := newMockDB(t)
	staleMock.ExpectPing().WillReturnError(errors.New("connection lost"))
	staleMock.ExpectClose()

	dialErr := errors.New("dial refused")
	store := storage.NewMySQLContentStore(stale, func(context.Context) (*sqlx.DB, error) {
		return nil, dialErr
	}, storage.Classification{}, nil)

	_, err := store.Persist(context.Background(), sampleDocument())
	assert.ErrorIs(t, err, storage.ErrNotConnected)
	assert.ErrorIs(t, err, dialErr)
}

func TestMySQLContentStoreInsertError(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	mock.ExpectPing()
	mock.ExpectExec(insertArticle).WillReturnError(errors.New("duplicate entry"))

	store := storage.NewMySQLContentStore(db, nil, storage.Classification{}, nil)
	_, err := store.Persist(context.Background(), sampleDocument())
	assert.Error(t, err)
}
