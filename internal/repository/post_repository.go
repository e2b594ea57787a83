package repository

import (
	"blognotes/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (author_id, title, content, published, preview_text, created_at, updated_at, last_edited_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.GetContext(ctx, &post.ID, query,
		post.AuthorID,
		post.Title,
		post.Content,
		post.Published,
		post.PreviewText,
		post.CreatedAt,
		post.UpdatedAt,
		post.LastEditedAt,
	)
	if err != nil {
		return fmt.Errorf("ошибка при создании поста: %w", err)
	}

	return nil
}

func (r *postRepository) GetByID(ctx context.Context, postID int64) (*models.Post, error) {
	query := `SELECT * FROM posts WHERE id = $1`

	var post models.Post
	err := r.db.GetContext(ctx, &post, query, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("пост с ID %d не найден: %w", postID, err)
		}
		return nil, fmt.Errorf("ошибка при получении поста: %w", err)
	}

	return &post, nil
}

func (r *postRepository) GetRowByID(ctx context.Context, postID, viewerID int64) (*models.PostRow, error) {
	query := `
		SELECT p.id, p.author_id, p.title, p.content, p.published, p.preview_text,
		       p.created_at, p.updated_at, p.last_edited_at,
		       u.name AS author_name,
		       EXISTS (SELECT 1 FROM favorites f WHERE f.post_id = p.id AND f.user_id = $2) AS is_favorited
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
	`

	var row models.PostRow
	err := r.db.GetContext(ctx, &row, query, postID, viewerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("пост с ID %d не найден: %w", postID, err)
		}
		return nil, fmt.Errorf("ошибка при получении поста: %w", err)
	}

	return &row, nil
}

// ListVisible возвращает посты, видимые зрителю: опубликованные
// или его собственные черновики. Остальные фильтры добавляются по И.
// Содержимое поста в список не попадает.
func (r *postRepository) ListVisible(ctx context.Context, viewerID int64, filter PostFilter) ([]models.PostRow, error) {
	args := []interface{}{viewerID}
	conditions := []string{"(p.published = TRUE OR p.author_id = $1)"}

	if filter.FavoritedBy != nil {
		args = append(args, *filter.FavoritedBy)
		conditions = append(conditions,
			fmt.Sprintf("EXISTS (SELECT 1 FROM favorites f WHERE f.post_id = p.id AND f.user_id = $%d)", len(args)))
	}

	if filter.NotFavoritedBy != nil {
		args = append(args, *filter.NotFavoritedBy)
		conditions = append(conditions,
			fmt.Sprintf("NOT EXISTS (SELECT 1 FROM favorites f WHERE f.post_id = p.id AND f.user_id = $%d)", len(args)))
	}

	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		conditions = append(conditions, fmt.Sprintf("p.author_id = $%d", len(args)))
	}

	if filter.Published != nil {
		args = append(args, *filter.Published)
		conditions = append(conditions, fmt.Sprintf("p.published = $%d", len(args)))
	}

	if filter.EditedAfter != nil {
		args = append(args, *filter.EditedAfter)
		conditions = append(conditions, fmt.Sprintf("p.last_edited_at > $%d", len(args)))
	}

	query := `
		SELECT p.id, p.author_id, p.title, p.published, p.preview_text,
		       p.created_at, p.updated_at, p.last_edited_at,
		       u.name AS author_name,
		       EXISTS (SELECT 1 FROM favorites f WHERE f.post_id = p.id AND f.user_id = $1) AS is_favorited
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY p.created_at DESC, p.id DESC
	`

	posts := []models.PostRow{}
	err := r.db.SelectContext(ctx, &posts, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении списка постов: %w", err)
	}

	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, postID int64, fields UpdatePostFields) error {
	args := []interface{}{}
	setClauses := []string{}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if fields.Title != nil {
		addSet("title", *fields.Title)
	}
	if fields.Content != nil {
		addSet("content", *fields.Content)
	}
	if fields.Published != nil {
		addSet("published", *fields.Published)
	}
	if fields.PreviewText != nil {
		addSet("preview_text", *fields.PreviewText)
	}
	if fields.LastEditedAt != nil {
		addSet("last_edited_at", *fields.LastEditedAt)
	}

	if len(setClauses) == 0 {
		return fmt.Errorf("не переданы поля для обновления")
	}

	addSet("updated_at", time.Now())

	args = append(args, postID)
	query := fmt.Sprintf("UPDATE posts SET %s WHERE id = $%d",
		strings.Join(setClauses, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении поста: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("пост с ID %d не найден: %w", postID, sql.ErrNoRows)
	}

	return nil
}

func (r *postRepository) Delete(ctx context.Context, postID int64) error {
	query := `DELETE FROM posts WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, postID)
	if err != nil {
		return fmt.Errorf("ошибка при удалении поста: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке удаленных строк: %w", err)
	}

	// пост мог быть удален конкурентным запросом
	if rowsAffected == 0 {
		return fmt.Errorf("пост с ID %d не найден: %w", postID, sql.ErrNoRows)
	}

	return nil
}
