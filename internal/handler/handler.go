package handlers

import (
	"blognotes/internal/config"
	"blognotes/internal/service"

	"github.com/go-playground/validator/v10"
)

type Handlers struct {
	AuthService  service.AuthService
	UserService  service.UserService
	PostService  service.PostService
	StatsService service.StatsService
	Cfg          *config.Config
	Validate     *validator.Validate
}

func NewHandlers(services *service.Service, config *config.Config) *Handlers {
	return &Handlers{
		AuthService:  services.Auth,
		UserService:  services.User,
		PostService:  services.Post,
		StatsService: services.Stats,
		Cfg:          config,
		Validate:     validator.New(),
	}
}
