package handlers

import (
	"blognotes/internal/service"
	"encoding/json"
	"fmt"
	"net/http"
)

type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phoneNumber"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// UpdateProfile - частичное обновление профиля текущего пользователя
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int64)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	serviceReq := service.UpdateProfileRequest{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
	}

	user, err := h.UserService.UpdateProfile(r.Context(), userID, serviceReq)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	response := DataResponse{
		Message: "Профиль обновлен",
		Success: true,
		Data: UserResponse{
			ID:          user.ID,
			Email:       user.Email,
			Name:        user.Name,
			Avatar:      user.Avatar,
			PhoneNumber: user.PhoneNumber,
		},
	}

	WriteSuccess(w, response, http.StatusOK)
}

func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int64)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, "Неверные данные", http.StatusBadRequest)
		return
	}

	if err := h.UserService.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, MessageResponse{Message: "Пароль изменен", Success: true}, http.StatusOK)
}

func (h *Handlers) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int64)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	// setting the size limit from the config
	if err := r.ParseMultipartForm(h.Cfg.MaxUploadSize); err != nil {
		if err.Error() == "http: request body too large" {
			WriteError(w, fmt.Sprintf("Файл слишком большой (макс. %d MB)",
				h.Cfg.MaxUploadSize/(1024*1024)), http.StatusBadRequest)
		} else {
			WriteError(w, "Ошибка при обработке файла", http.StatusBadRequest)
		}
		return
	}

	// getting the file
	file, handler, err := r.FormFile("avatar")
	if err != nil {
		WriteError(w, "Не удалось получить файл", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// formats image
	allowedTypes := map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	}

	// check formats
	contentType := handler.Header.Get("Content-Type")
	if !allowedTypes[contentType] {
		WriteError(w, "Неподдерживаемый тип файла. Разрешены: JPEG, PNG, GIF, WebP", http.StatusBadRequest)
		return
	}

	avatarURL, err := h.UserService.UploadAvatar(r.Context(), userID, handler.Filename, file, handler.Size)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	response := DataResponse{
		Message: "Аватар загружен",
		Success: true,
		Data:    map[string]string{"url": avatarURL},
	}

	WriteSuccess(w, response, http.StatusOK)
}

// GetAvatarURL отдает временную подписанную ссылку на аватар
// текущего пользователя
func (h *Handlers) GetAvatarURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int64)
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return
	}

	url, err := h.UserService.AvatarURL(r.Context(), userID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteSuccess(w, map[string]string{"url": url}, http.StatusOK)
}
