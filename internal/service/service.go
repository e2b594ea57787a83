package service

import (
	"blognotes/internal/config"
	"blognotes/internal/repository"
	"blognotes/internal/storage"
)

type Service struct {
	User  UserService
	Post  PostService
	Auth  AuthService
	Stats StatsService
}

func NewService(rep *repository.Repository, cfg *config.Config, storage storage.Storage) *Service {
	return &Service{
		User:  NewUserService(rep.User, storage, cfg),
		Post:  NewPostService(rep.Post, rep.Comment, rep.Favorite, rep.User),
		Auth:  NewAuthService(rep.User, cfg),
		Stats: NewStatsService(rep.Stats),
	}
}
