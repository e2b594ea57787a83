package service

import (
	"blognotes/internal/config"
	"blognotes/internal/models"
	"blognotes/internal/repository"
	"blognotes/internal/storage"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// UpdateProfileRequest - частичное обновление профиля:
// меняются только переданные поля
type UpdateProfileRequest struct {
	Name        *string
	PhoneNumber *string
}

type UserService interface {
	UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*models.User, error)
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
	UploadAvatar(ctx context.Context, userID int64, fileName string, file io.Reader, size int64) (string, error)
	AvatarURL(ctx context.Context, userID int64) (string, error)
}

type userService struct {
	userRepo repository.UserRepository
	storage  storage.Storage
	cfg      *config.Config
}

func NewUserService(userRepo repository.UserRepository, storage storage.Storage, cfg *config.Config) UserService {
	return &userService{
		userRepo: userRepo,
		storage:  storage,
		cfg:      cfg,
	}
}

func (s *userService) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*models.User, error) {
	if req.Name == nil && req.PhoneNumber == nil {
		return nil, fmt.Errorf("%w: не переданы поля для обновления", ErrValidation)
	}

	// get user by id
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: пользователь не найден", ErrNotFound)
		}
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}

	// update user
	err = s.userRepo.UpdateProfile(ctx, user)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if utf8.RuneCountInString(newPassword) < 6 {
		return fmt.Errorf("%w: пароль должен быть не менее 6 символов", ErrValidation)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: пользователь не найден", ErrNotFound)
		}
		return err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword))
	if err != nil {
		return fmt.Errorf("%w: старый пароль неверен", ErrUnauthorized)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("ошибка при хешировании пароля: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, userID, string(hashedPassword))
}

func (s *userService) UploadAvatar(ctx context.Context, userID int64, fileName string, file io.Reader, size int64) (string, error) {
	objectName, avatarURL, err := s.storage.UploadAvatar(ctx, userID, fileName, file, size)
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки аватара в MinIO: %w", err)
	}

	err = s.userRepo.UpdateAvatar(ctx, userID, avatarURL)
	if err != nil {
		// запись в БД не удалась - убираем уже загруженный объект,
		// чтобы в бакете не оставалось файла, на который никто не ссылается
		s.storage.DeleteObject(ctx, objectName)

		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: пользователь не найден", ErrNotFound)
		}
		return "", err
	}

	return avatarURL, nil
}

// AvatarURL возвращает временную подписанную ссылку на аватар пользователя
func (s *userService) AvatarURL(ctx context.Context, userID int64) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: пользователь не найден", ErrNotFound)
		}
		return "", err
	}

	if user.Avatar == "" {
		return "", fmt.Errorf("%w: аватар не загружен", ErrNotFound)
	}

	objectName, err := s.objectNameFromAvatarURL(user.Avatar)
	if err != nil {
		return "", err
	}

	url, err := s.storage.GetObjectURL(ctx, objectName)
	if err != nil {
		return "", fmt.Errorf("ошибка генерации ссылки на аватар: %w", err)
	}

	return url, nil
}

// objectNameFromAvatarURL выделяет имя объекта из постоянной ссылки
// вида <scheme>://<endpoint>/<bucket>/<objectName>
func (s *userService) objectNameFromAvatarURL(avatarURL string) (string, error) {
	marker := "/" + s.cfg.MinIO.BucketName + "/"

	idx := strings.Index(avatarURL, marker)
	if idx < 0 {
		return "", fmt.Errorf("неверный формат URL аватара")
	}

	return avatarURL[idx+len(marker):], nil
}
