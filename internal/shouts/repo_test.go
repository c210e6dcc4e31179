package shouts

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepo_Post(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("INSERT INTO shouts").
		WithArgs("u1@example.com", "launched my prototype!").
		WillReturnRows(sqlmock.NewRows([]string{"id", "author", "phrase", "created_at"}).
			AddRow(int64(7), "u1@example.com", "launched my prototype!", now))

	s, err := NewRepo(db).Post(context.Background(), "u1@example.com", "  launched my prototype!  ")
	require.NoError(t, err)
	assert.Equal(t, int64(7), s.ID)
	assert.Equal(t, "launched my prototype!", s.Phrase)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_PostValidation(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRepo(db)

	_, err = repo.Post(context.Background(), "u1@example.com", "   ")
	assert.ErrorIs(t, err, ErrEmptyPhrase)

	_, err = repo.Post(context.Background(), "u1@example.com", strings.Repeat("x", 281))
	assert.ErrorIs(t, err, ErrTooLong)
}

func TestRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT id, author, phrase, created_at").
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "author", "phrase", "created_at"}).
			AddRow(int64(2), "b@example.com", "second", now).
			AddRow(int64(1), "a@example.com", "first", now.Add(-time.Minute)))

	items, err := NewRepo(db).List(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].Phrase)
	assert.NoError(t, mock.ExpectationsWereMet())
}
