package repository

import (
	"blognotes/internal/models"
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostFilter - дополнительные фильтры списка постов.
// Базовое правило видимости (published или свой черновик) применяется всегда.
type PostFilter struct {
	FavoritedBy    *int64
	NotFavoritedBy *int64
	AuthorID       *int64
	Published      *bool
	EditedAfter    *time.Time
}

// UpdatePostFields - частичное обновление: меняются только заданные поля
type UpdatePostFields struct {
	Title        *string
	Content      *string
	Published    *bool
	PreviewText  *string
	LastEditedAt *time.Time
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, userID int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error
	UpdateRefreshToken(ctx context.Context, userID int64, refreshToken string, expiryTime time.Time) error
	GetByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, postID int64) (*models.Post, error)
	GetRowByID(ctx context.Context, postID, viewerID int64) (*models.PostRow, error)
	ListVisible(ctx context.Context, viewerID int64, filter PostFilter) ([]models.PostRow, error)
	Update(ctx context.Context, postID int64, fields UpdatePostFields) error
	Delete(ctx context.Context, postID int64) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPostID(ctx context.Context, postID int64) ([]models.CommentRow, error)
}

type FavoriteRepository interface {
	Create(ctx context.Context, userID, postID int64) error
	Exists(ctx context.Context, userID, postID int64) (bool, error)
	Delete(ctx context.Context, userID, postID int64) error
}

type StatsRepository interface {
	Counts(ctx context.Context) (*models.Stats, error)
}

type Repository struct {
	User     UserRepository
	Post     PostRepository
	Comment  CommentRepository
	Favorite FavoriteRepository
	Stats    StatsRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		User:     NewUserRepository(db),
		Post:     NewPostRepository(db),
		Comment:  NewCommentRepository(db),
		Favorite: NewFavoriteRepository(db),
		Stats:    NewStatsRepository(db),
	}
}
