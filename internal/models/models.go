package models

import (
	"time"
)

type User struct {
	ID                     int64     `json:"id" db:"id"`
	Email                  string    `json:"email" db:"email"`
	Name                   string    `json:"name" db:"name"`
	PasswordHash           string    `json:"-" db:"password_hash"`
	Avatar                 string    `json:"avatar" db:"avatar"`
	PhoneNumber            string    `json:"phoneNumber" db:"phone_number"`
	RefreshToken           string    `json:"-" db:"refresh_token"`
	RefreshTokenExpiryTime time.Time `json:"-" db:"refresh_token_expiry_time"`
	CreatedAt              time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt              time.Time `json:"updatedAt" db:"updated_at"`
}

type Post struct {
	ID           int64     `json:"id" db:"id"`
	AuthorID     int64     `json:"authorId" db:"author_id"`
	Title        string    `json:"title" db:"title"`
	Content      string    `json:"content" db:"content"`
	Published    bool      `json:"published" db:"published"`
	PreviewText  string    `json:"previewText" db:"preview_text"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
	LastEditedAt time.Time `json:"lastEditedAt" db:"last_edited_at"`
}

// PostRow - пост вместе с данными, вычисленными относительно запрашивающего
type PostRow struct {
	Post
	AuthorName  string `json:"-" db:"author_name"`
	IsFavorited bool   `json:"-" db:"is_favorited"`
}

type Comment struct {
	ID        int64     `json:"id" db:"id"`
	PostID    int64     `json:"postId" db:"post_id"`
	AuthorID  int64     `json:"authorId" db:"author_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type CommentRow struct {
	Comment
	AuthorName string `json:"-" db:"author_name"`
}

// Favorite - закладка, уникальная по паре (user_id, post_id)
type Favorite struct {
	UserID    int64     `json:"userId" db:"user_id"`
	PostID    int64     `json:"postId" db:"post_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type AuthorSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Stats struct {
	Users     int `json:"users" db:"users"`
	Posts     int `json:"posts" db:"posts"`
	Comments  int `json:"comments" db:"comments"`
	Favorites int `json:"favorites" db:"favorites"`
}
