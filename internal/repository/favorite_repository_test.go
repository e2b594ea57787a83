package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFavoriteRepoMock(t *testing.T) (FavoriteRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewFavoriteRepository(sqlxDB), mock, func() { db.Close() }
}

func TestFavoriteRepository_Create(t *testing.T) {
	repo, mock, closeDB := newFavoriteRepoMock(t)
	defer closeDB()

	ctx := context.Background()

	t.Run("Успешное добавление закладки", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO favorites (user_id, post_id) VALUES ($1, $2)`).
			WithArgs(int64(7), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(ctx, 7, 1)

		assert.NoError(t, err)
	})

	t.Run("Нарушение уникальности пробрасывается с кодом драйвера", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO favorites (user_id, post_id) VALUES ($1, $2)`).
			WithArgs(int64(7), int64(1)).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, 7, 1)

		require.Error(t, err)

		var pqErr *pq.Error
		require.ErrorAs(t, err, &pqErr)
		assert.Equal(t, pq.ErrorCode("23505"), pqErr.Code)
	})
}

func TestFavoriteRepository_Exists(t *testing.T) {
	repo, mock, closeDB := newFavoriteRepoMock(t)
	defer closeDB()

	ctx := context.Background()
	query := `SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND post_id = $2)`

	t.Run("Закладка существует", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(int64(7), int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := repo.Exists(ctx, 7, 1)

		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Закладки нет", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(int64(7), int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		exists, err := repo.Exists(ctx, 7, 2)

		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Ошибка базы данных", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(int64(7), int64(1)).
			WillReturnError(errors.New("connection failed"))

		_, err := repo.Exists(ctx, 7, 1)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "ошибка при проверке закладки")
	})
}

func TestFavoriteRepository_Delete(t *testing.T) {
	repo, mock, closeDB := newFavoriteRepoMock(t)
	defer closeDB()

	ctx := context.Background()
	query := `DELETE FROM favorites WHERE user_id = $1 AND post_id = $2`

	t.Run("Успешное удаление закладки", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(int64(7), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(ctx, 7, 1)

		assert.NoError(t, err)
	})

	t.Run("Закладка не найдена", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(int64(7), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(ctx, 7, 1)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Contains(t, err.Error(), "закладка не найдена")
	})
}
