package main

import (
	"blognotes/cmd/app"
	"blognotes/internal/config"
	handlers "blognotes/internal/handler"
	"blognotes/internal/middleware"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

func main() {
	// setting up config
	cfg := config.LoadConfig()

	if cfg.JWTSecretKey == "" {
		log.Fatal("JWT_SECRET_KEY не установлен в .env файле")
	}

	db, _, services := app.App(cfg)
	defer db.CloseDB()

	handler := handlers.NewHandlers(services, cfg)

	r := mux.NewRouter()

	// setting up routes
	r.HandleFunc("/health", handler.Health).Methods(http.MethodGet)
	r.HandleFunc("/stats", handler.GetStats).Methods(http.MethodGet)

	r.HandleFunc("/api/auth/register", handler.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", handler.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/refresh-token", handler.RefreshToken).Methods(http.MethodPost)

	r.HandleFunc("/api/me", handler.GetCurrentUser).Methods(http.MethodGet)
	r.HandleFunc("/api/me", handler.UpdateProfile).Methods(http.MethodPatch)
	r.HandleFunc("/api/me/password", handler.ChangePassword).Methods(http.MethodPost)
	r.HandleFunc("/api/me/avatar", handler.UploadAvatar).Methods(http.MethodPost)
	r.HandleFunc("/api/me/avatar", handler.GetAvatarURL).Methods(http.MethodGet)

	r.HandleFunc("/api/posts", handler.GetPosts).Methods(http.MethodGet)
	r.HandleFunc("/api/posts", handler.CreatePost).Methods(http.MethodPost)
	r.HandleFunc("/api/posts/{id}", handler.GetPost).Methods(http.MethodGet)
	r.HandleFunc("/api/posts/{id}", handler.UpdatePost).Methods(http.MethodPatch)
	r.HandleFunc("/api/posts/{id}", handler.DeletePost).Methods(http.MethodDelete)

	r.HandleFunc("/api/posts/{id}/favorite", handler.FavoritePost).Methods(http.MethodPost)
	r.HandleFunc("/api/posts/{id}/favorite", handler.UnfavoritePost).Methods(http.MethodDelete)

	r.HandleFunc("/api/posts/{id}/comments", handler.GetComments).Methods(http.MethodGet)
	r.HandleFunc("/api/posts/{id}/comments", handler.CreateComment).Methods(http.MethodPost)

	handlerChain := middleware.Chain(
		r,
		middleware.AuthMiddleware(cfg),
		middleware.CORSMiddleware,
		middleware.LoggingMiddleware,
	)

	// Starting the server
	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	log.Printf("Сервер запущен на %s", addr)
	log.Printf("База данных: %s", cfg.DB.DbNAME)

	if err := http.ListenAndServe(addr, handlerChain); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
