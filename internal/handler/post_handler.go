package handlers

import (
	"blognotes/internal/service"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type CreatePostRequest struct {
	Title     string `json:"title" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Published *bool  `json:"published"`
}

type UpdatePostRequest struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	Published   *bool   `json:"published"`
	PreviewText *string `json:"previewText"`
}

type FavoriteResponse struct {
	Message          string `json:"message"`
	Success          bool   `json:"success"`
	AlreadyFavorited bool   `json:"alreadyFavorited,omitempty"`
}

// postIDFromRequest достает числовой id поста из пути
func postIDFromRequest(r *http.Request) (int64, bool) {
	vars := mux.Vars(r)
	postID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		return 0, false
	}
	return postID, true
}

func requesterID(r *http.Request) (int64, bool) {
	userID, ok := r.Context().Value("userID").(int64)
	return userID, ok
}

func (h *Handlers) GetPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	// собираем только переданные параметры
	q := r.URL.Query()
	var query service.ListPostsQuery
	if q.Has("isFavorited") {
		v := q.Get("isFavorited")
		query.IsFavorited = &v
	}
	if q.Has("authorId") {
		v := q.Get("authorId")
		query.AuthorID = &v
	}
	if q.Has("published") {
		v := q.Get("published")
		query.Published = &v
	}
	if q.Has("lastEditedAfter") {
		v := q.Get("lastEditedAfter")
		query.LastEditedAfter = &v
	}

	posts, err := h.PostService.ListPosts(r.Context(), userID, query)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, posts, http.StatusOK)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDFromRequest(r)
	if !ok {
		WriteError(w, "Неверный формат ID поста", http.StatusBadRequest)
		return
	}

	userID, ok := requesterID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	post, err := h.PostService.GetPost(r.Context(), postID, userID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, post, http.StatusOK)
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, "Заголовок и содержимое не могут быть пустыми", http.StatusBadRequest)
		return
	}

	serviceReq := service.CreatePostRequest{
		Title:     req.Title,
		Content:   req.Content,
		Published: req.Published,
	}

	// creating a post
	post, err := h.PostService.CreatePost(r.Context(), userID, serviceReq)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	message := "Пост сохранен как черновик"
	if post.Published {
		message = "Пост опубликован"
	}

	response := DataResponse{
		Message: message,
		Success: true,
		Data:    post,
	}

	WriteSuccess(w, response, http.StatusCreated)
}

func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDFromRequest(r)
	if !ok {
		WriteError(w, "Неверный формат ID поста", http.StatusBadRequest)
		return
	}

	userID, ok := requesterID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	serviceReq := service.UpdatePostRequest{
		Title:       req.Title,
		Content:     req.Content,
		Published:   req.Published,
		PreviewText: req.PreviewText,
	}

	// updating the post
	post, err := h.PostService.UpdatePost(r.Context(), postID, userID, serviceReq)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	response := DataResponse{
		Message: "Пост обновлен",
		Success: true,
		Data:    post,
	}

	WriteSuccess(w, response, http.StatusOK)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDFromRequest(r)
	if !ok {
		WriteError(w, "Неверный формат ID поста", http.StatusBadRequest)
		return
	}

	userID, ok := requesterID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	if err := h.PostService.DeletePost(r.Context(), postID, userID); err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, MessageResponse{Message: "Пост удален", Success: true}, http.StatusOK)
}

func (h *Handlers) FavoritePost(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDFromRequest(r)
	if !ok {
		WriteError(w, "Неверный формат ID поста", http.StatusBadRequest)
		return
	}

	userID, ok := requesterID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	alreadyFavorited, err := h.PostService.FavoritePost(r.Context(), postID, userID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	message := "Пост добавлен в избранное"
	if alreadyFavorited {
		message = "Пост уже в избранном"
	}

	response := FavoriteResponse{
		Message:          message,
		Success:          true,
		AlreadyFavorited: alreadyFavorited,
	}

	WriteSuccess(w, response, http.StatusOK)
}

func (h *Handlers) UnfavoritePost(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDFromRequest(r)
	if !ok {
		WriteError(w, "Неверный формат ID поста", http.StatusBadRequest)
		return
	}

	userID, ok := requesterID(r)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	if err := h.PostService.UnfavoritePost(r.Context(), postID, userID); err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, MessageResponse{Message: "Пост убран из избранного", Success: true}, http.StatusOK)
}
