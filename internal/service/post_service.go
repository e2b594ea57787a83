package service

import (
	"blognotes/internal/models"
	"blognotes/internal/repository"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// ListPostsQuery - сырые значения query-параметров списка.
// nil означает, что параметр не передан.
type ListPostsQuery struct {
	IsFavorited     *string
	AuthorID        *string
	Published       *string
	LastEditedAfter *string
}

type CreatePostRequest struct {
	Title     string
	Content   string
	Published *bool
}

// UpdatePostRequest - частичное обновление: меняются только переданные поля
type UpdatePostRequest struct {
	Title       *string
	Content     *string
	Published   *bool
	PreviewText *string
}

// PostListItem - строка списка постов: метаданные без содержимого,
// флаги вычислены относительно запрашивающего
type PostListItem struct {
	ID                       int64                `json:"id"`
	Title                    string               `json:"title"`
	Published                bool                 `json:"published"`
	PreviewText              string               `json:"previewText"`
	CreatedAt                time.Time            `json:"createdAt"`
	UpdatedAt                time.Time            `json:"updatedAt"`
	LastEditedAt             time.Time            `json:"lastEditedAt"`
	AuthorID                 int64                `json:"authorId"`
	Author                   models.AuthorSummary `json:"author"`
	IsUserOwner              bool                 `json:"isUserOwner"`
	IsFavoritedByCurrentUser bool                 `json:"isFavoritedByCurrentUser"`
}

type PostDetail struct {
	PostListItem
	Content  string        `json:"content"`
	Comments []CommentView `json:"comments"`
}

type CommentView struct {
	ID        int64                `json:"id"`
	PostID    int64                `json:"postId"`
	Content   string               `json:"content"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
	AuthorID  int64                `json:"authorId"`
	Author    models.AuthorSummary `json:"author"`
}

type PostService interface {
	ListPosts(ctx context.Context, requesterID int64, query ListPostsQuery) ([]PostListItem, error)
	GetPost(ctx context.Context, postID, requesterID int64) (*PostDetail, error)
	CreatePost(ctx context.Context, authorID int64, req CreatePostRequest) (*PostDetail, error)
	UpdatePost(ctx context.Context, postID, requesterID int64, req UpdatePostRequest) (*PostDetail, error)
	DeletePost(ctx context.Context, postID, requesterID int64) error
	FavoritePost(ctx context.Context, postID, userID int64) (bool, error)
	UnfavoritePost(ctx context.Context, postID, userID int64) error
	ListComments(ctx context.Context, postID, requesterID int64) ([]CommentView, error)
	CreateComment(ctx context.Context, postID, authorID int64, content string) (*CommentView, error)
}

type postService struct {
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	favoriteRepo repository.FavoriteRepository
	userRepo     repository.UserRepository
}

func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository,
	favoriteRepo repository.FavoriteRepository, userRepo repository.UserRepository) PostService {
	return &postService{
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		favoriteRepo: favoriteRepo,
		userRepo:     userRepo,
	}
}

const previewLimit = 20

var markupTags = regexp.MustCompile(`<[^>]*>`)

// makePreviewText убирает разметку и обрезает текст до previewLimit
// символов, добавляя многоточие при усечении
func makePreviewText(content string) string {
	plain := markupTags.ReplaceAllString(content, "")
	if strings.TrimSpace(plain) == "" {
		return ""
	}

	runes := []rune(plain)
	if len(runes) > previewLimit {
		return string(runes[:previewLimit]) + "..."
	}
	return plain
}

// ListPosts возвращает посты, видимые запрашивающему:
// опубликованные или его собственные черновики. Чужой черновик не виден
// ни при каких фильтрах.
func (p *postService) ListPosts(ctx context.Context, requesterID int64, query ListPostsQuery) ([]PostListItem, error) {
	var filter repository.PostFilter

	if query.IsFavorited != nil {
		// значения кроме true/false игнорируются
		switch *query.IsFavorited {
		case "true":
			filter.FavoritedBy = &requesterID
		case "false":
			filter.NotFavoritedBy = &requesterID
		}
	}

	if query.AuthorID != nil {
		authorID, err := strconv.ParseInt(*query.AuthorID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: неверный формат параметра authorId", ErrValidation)
		}
		filter.AuthorID = &authorID
	}

	if query.Published != nil {
		// любое значение кроме "true" означает фильтр по неопубликованным
		published := *query.Published == "true"
		filter.Published = &published
	}

	if query.LastEditedAfter != nil {
		millis, err := strconv.ParseFloat(*query.LastEditedAfter, 64)
		if err != nil || math.IsNaN(millis) || math.IsInf(millis, 0) {
			return nil, fmt.Errorf("%w: неверный формат параметра lastEditedAfter", ErrValidation)
		}
		editedAfter := time.UnixMilli(int64(millis))
		filter.EditedAfter = &editedAfter
	}

	rows, err := p.postRepo.ListVisible(ctx, requesterID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]PostListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, makePostListItem(&row, requesterID))
	}

	return items, nil
}

// GetPost применяет то же правило видимости, что и список:
// чужой черновик отвечает "не найдено", не раскрывая его существование
func (p *postService) GetPost(ctx context.Context, postID, requesterID int64) (*PostDetail, error) {
	row, err := p.postRepo.GetRowByID(ctx, postID, requesterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: пост не найден", ErrNotFound)
		}
		return nil, err
	}

	if !row.Published && row.AuthorID != requesterID {
		return nil, fmt.Errorf("%w: пост не найден", ErrNotFound)
	}

	comments, err := p.commentRepo.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	detail := &PostDetail{
		PostListItem: makePostListItem(row, requesterID),
		Content:      row.Content,
		Comments:     makeCommentViews(comments),
	}

	return detail, nil
}

func (p *postService) CreatePost(ctx context.Context, authorID int64, req CreatePostRequest) (*PostDetail, error) {
	if req.Title == "" || req.Content == "" {
		return nil, fmt.Errorf("%w: заголовок и содержимое не могут быть пустыми", ErrValidation)
	}

	published := false
	if req.Published != nil {
		published = *req.Published
	}

	now := time.Now()
	post := &models.Post{
		AuthorID:     authorID,
		Title:        req.Title,
		Content:      req.Content,
		Published:    published,
		PreviewText:  makePreviewText(req.Content),
		CreatedAt:    now,
		UpdatedAt:    now,
		LastEditedAt: now,
	}

	err := p.postRepo.Create(ctx, post)
	if err != nil {
		return nil, err
	}

	author, err := p.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	detail := &PostDetail{
		PostListItem: PostListItem{
			ID:           post.ID,
			Title:        post.Title,
			Published:    post.Published,
			PreviewText:  post.PreviewText,
			CreatedAt:    post.CreatedAt,
			UpdatedAt:    post.UpdatedAt,
			LastEditedAt: post.LastEditedAt,
			AuthorID:     post.AuthorID,
			Author:       models.AuthorSummary{ID: author.ID, Name: author.Name},
			IsUserOwner:  true,
		},
		Content:  post.Content,
		Comments: []CommentView{},
	}

	return detail, nil
}

func (p *postService) UpdatePost(ctx context.Context, postID, requesterID int64, req UpdatePostRequest) (*PostDetail, error) {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: пост не найден", ErrNotFound)
		}
		return nil, err
	}

	hasCoreField := req.Title != nil || req.Content != nil ||
		req.Published != nil || req.PreviewText != nil

	// не-автору запрещено трогать любое из основных полей
	if post.AuthorID != requesterID && hasCoreField {
		return nil, fmt.Errorf("%w: нет прав на изменение этого поста", ErrForbidden)
	}

	var fields repository.UpdatePostFields

	if req.Title != nil {
		fields.Title = req.Title
	}
	if req.Published != nil {
		fields.Published = req.Published
	}

	if req.Content != nil {
		fields.Content = req.Content
		// previewText всегда выводится из нового содержимого,
		// переданное клиентом значение игнорируется
		preview := makePreviewText(*req.Content)
		fields.PreviewText = &preview
	} else if req.PreviewText != nil {
		fields.PreviewText = req.PreviewText
	}

	// правка заголовка, содержимого или статуса публикации считается
	// редактированием; замена одного previewText - нет
	if req.Title != nil || req.Content != nil || req.Published != nil {
		now := time.Now()
		fields.LastEditedAt = &now
	}

	if fields.Title == nil && fields.Content == nil &&
		fields.Published == nil && fields.PreviewText == nil {
		return nil, fmt.Errorf("%w: не переданы поля для обновления", ErrValidation)
	}

	err = p.postRepo.Update(ctx, postID, fields)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: пост не найден", ErrNotFound)
		}
		return nil, err
	}

	row, err := p.postRepo.GetRowByID(ctx, postID, requesterID)
	if err != nil {
		return nil, err
	}

	detail := &PostDetail{
		PostListItem: makePostListItem(row, requesterID),
		Content:      row.Content,
		Comments:     []CommentView{},
	}

	return detail, nil
}

func (p *postService) DeletePost(ctx context.Context, postID, requesterID int64) error {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: пост не найден", ErrNotFound)
		}
		return err
	}

	if post.AuthorID != requesterID {
		return fmt.Errorf("%w: нет прав на удаление этого поста", ErrForbidden)
	}

	err = p.postRepo.Delete(ctx, postID)
	if err != nil {
		// пост успели удалить конкурентным запросом
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: пост не найден или уже удален", ErrNotFound)
		}
		return err
	}

	return nil
}

// FavoritePost добавляет пост в избранное. Повторный вызов не ошибка:
// возвращается true как признак "уже в избранном". Гонка двух
// одновременных вставок разрешается уникальным ключом закладки - нарушение
// уникальности трактуется так же, как уже существующая закладка.
func (p *postService) FavoritePost(ctx context.Context, postID, userID int64) (bool, error) {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("%w: пост не найден", ErrNotFound)
		}
		return false, err
	}

	// чужой черновик недоступен и для закладок
	if !post.Published && post.AuthorID != userID {
		return false, fmt.Errorf("%w: пост не найден", ErrNotFound)
	}

	exists, err := p.favoriteRepo.Exists(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}

	err = p.favoriteRepo.Create(ctx, userID, postID)
	if err != nil {
		if isUniqueViolation(err) {
			return true, nil
		}
		return false, err
	}

	return false, nil
}

// UnfavoritePost убирает пост из избранного. В отличие от добавления,
// повторный вызов - ошибка "не найдено". Существование самого поста
// не проверяется, только существование закладки.
func (p *postService) UnfavoritePost(ctx context.Context, postID, userID int64) error {
	err := p.favoriteRepo.Delete(ctx, userID, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: закладка не найдена или уже удалена", ErrNotFound)
		}
		return err
	}

	return nil
}

// ListComments отдает комментарии поста от старых к новым.
// Видимость следует за постом: комментарии чужого черновика недоступны.
func (p *postService) ListComments(ctx context.Context, postID, requesterID int64) ([]CommentView, error) {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: пост не найден", ErrNotFound)
		}
		return nil, err
	}

	if !post.Published && post.AuthorID != requesterID {
		return nil, fmt.Errorf("%w: пост не найден", ErrNotFound)
	}

	comments, err := p.commentRepo.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	return makeCommentViews(comments), nil
}

func (p *postService) CreateComment(ctx context.Context, postID, authorID int64, content string) (*CommentView, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: комментарий не может быть пустым", ErrValidation)
	}

	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: пост не найден", ErrNotFound)
		}
		return nil, err
	}

	// видимость следует за чтением: комментировать чужой черновик нельзя
	if !post.Published && post.AuthorID != authorID {
		return nil, fmt.Errorf("%w: пост не найден", ErrNotFound)
	}

	now := time.Now()
	comment := &models.Comment{
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = p.commentRepo.Create(ctx, comment)
	if err != nil {
		return nil, err
	}

	author, err := p.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	view := &CommentView{
		ID:        comment.ID,
		PostID:    comment.PostID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
		AuthorID:  comment.AuthorID,
		Author:    models.AuthorSummary{ID: author.ID, Name: author.Name},
	}

	return view, nil
}

func makePostListItem(row *models.PostRow, requesterID int64) PostListItem {
	return PostListItem{
		ID:                       row.ID,
		Title:                    row.Title,
		Published:                row.Published,
		PreviewText:              row.PreviewText,
		CreatedAt:                row.CreatedAt,
		UpdatedAt:                row.UpdatedAt,
		LastEditedAt:             row.LastEditedAt,
		AuthorID:                 row.AuthorID,
		Author:                   models.AuthorSummary{ID: row.AuthorID, Name: row.AuthorName},
		IsUserOwner:              row.AuthorID == requesterID,
		IsFavoritedByCurrentUser: row.IsFavorited,
	}
}

func makeCommentViews(rows []models.CommentRow) []CommentView {
	views := make([]CommentView, 0, len(rows))
	for _, row := range rows {
		views = append(views, CommentView{
			ID:        row.ID,
			PostID:    row.PostID,
			Content:   row.Content,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
			AuthorID:  row.AuthorID,
			Author:    models.AuthorSummary{ID: row.AuthorID, Name: row.AuthorName},
		})
	}
	return views
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
