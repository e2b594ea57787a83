package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"

	"blognotes/internal/config"
	handlers "blognotes/internal/handler"

	"github.com/golang-jwt/jwt/v5"
)

type Middleware func(http.Handler) http.Handler

var publicCommentsPattern = regexp.MustCompile(`^/api/posts/[0-9]+/comments$`)

func isPublicPath(r *http.Request) bool {
	publicPaths := []string{
		"/api/auth/register",
		"/api/auth/login",
		"/api/auth/refresh-token",
		"/health",
		"/stats",
		"/",
	}

	for _, path := range publicPaths {
		if r.URL.Path == path {
			return true
		}
	}

	// чтение комментариев доступно без токена
	if r.Method == http.MethodGet && publicCommentsPattern.MatchString(r.URL.Path) {
		return true
	}

	return false
}

// AuthMiddleware verifies the JWT token and adds user data to the context
func AuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// preflight запросы обрабатывает CORS middleware
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			// Skipping public endpoints; if the token is attached anyway,
			// we parse it so the handler can see the requester
			if isPublicPath(r) {
				if r.Header.Get("Authorization") != "" {
					if ctx, err := contextWithClaims(r, cfg); err == nil {
						r = r.WithContext(ctx)
					}
				}
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				handlers.WriteError(w, "Требуется авторизация", http.StatusUnauthorized)
				return
			}

			ctx, err := contextWithClaims(r, cfg)
			if err != nil {
				handlers.WriteError(w, err.Error(), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// contextWithClaims разбирает заголовок "Bearer <token>" и кладет
// данные пользователя в контекст запроса
func contextWithClaims(r *http.Request, cfg *config.Config) (context.Context, error) {
	authHeader := r.Header.Get("Authorization")

	// Checking the "Bearer <token>" format
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, fmt.Errorf("неверный формат токена")
	}

	tokenString := parts[1]

	// Parse token
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Checking the signature algorithm
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return []byte(cfg.JWTSecretKey), nil
	})

	if err != nil {
		return nil, fmt.Errorf("недействительный токен: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("недействительный токен")
	}

	// Extracting claims
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("неверные claims токена")
	}

	// jwt десериализует числа как float64
	userIDValue, ok1 := claims["userId"].(float64)
	email, ok2 := claims["email"].(string)

	if !ok1 || !ok2 {
		return nil, fmt.Errorf("неверные данные в токене")
	}

	// Adding user data to the context
	ctx := r.Context()
	ctx = context.WithValue(ctx, "userID", int64(userIDValue))
	ctx = context.WithValue(ctx, "email", email)

	return ctx, nil
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Method: %s, URL: %s", r.Method, r.RequestURI)
		next.ServeHTTP(w, r)
	})
}

func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}
