package handlers

import (
	"encoding/json"
	"net/http"
)

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

// GetComments - публичный эндпоинт: анонимный запрос идет с нулевым
// id пользователя и видит только комментарии опубликованных постов
func (h *Handlers) GetComments(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDFromRequest(r)
	if !ok {
		WriteError(w, "Неверный формат ID поста", http.StatusBadRequest)
		return
	}

	userID, _ := r.Context().Value("userID").(int64)

	comments, err := h.PostService.ListComments(r.Context(), postID, userID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, comments, http.StatusOK)
}

func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
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

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, "Комментарий не может быть пустым", http.StatusBadRequest)
		return
	}

	comment, err := h.PostService.CreateComment(r.Context(), postID, userID, req.Content)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	response := DataResponse{
		Message: "Комментарий добавлен",
		Success: true,
		Data:    comment,
	}

	WriteSuccess(w, response, http.StatusCreated)
}
