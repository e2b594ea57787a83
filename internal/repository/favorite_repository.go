package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type favoriteRepository struct {
	db *sqlx.DB
}

func NewFavoriteRepository(db *sqlx.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Create вставляет закладку. Гонку двух одновременных вставок разрешает
// уникальный ключ (user_id, post_id): нарушение уникальности пробрасывается
// наверх как есть, сервис распознает его по коду драйвера.
func (r *favoriteRepository) Create(ctx context.Context, userID, postID int64) error {
	query := `INSERT INTO favorites (user_id, post_id) VALUES ($1, $2)`

	_, err := r.db.ExecContext(ctx, query, userID, postID)
	if err != nil {
		return fmt.Errorf("ошибка при добавлении в избранное: %w", err)
	}

	return nil
}

func (r *favoriteRepository) Exists(ctx context.Context, userID, postID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND post_id = $2)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, userID, postID)
	if err != nil {
		return false, fmt.Errorf("ошибка при проверке закладки: %w", err)
	}

	return exists, nil
}

func (r *favoriteRepository) Delete(ctx context.Context, userID, postID int64) error {
	query := `DELETE FROM favorites WHERE user_id = $1 AND post_id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, postID)
	if err != nil {
		return fmt.Errorf("ошибка при удалении из избранного: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке удаленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("закладка не найдена: %w", sql.ErrNoRows)
	}

	return nil
}
