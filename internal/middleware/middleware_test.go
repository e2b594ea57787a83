package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blognotes/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret"

func makeToken(t *testing.T, userID int64, email string) string {
	claims := jwt.MapClaims{
		"userId": userID,
		"email":  email,
		"exp":    time.Now().Add(time.Hour).Unix(),
		"iat":    time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func authChain(captured *http.Request) http.Handler {
	cfg := &config.Config{JWTSecretKey: testSecret}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = *r
		w.WriteHeader(http.StatusOK)
	})
	return AuthMiddleware(cfg)(next)
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("Запрос без токена отклоняется", func(t *testing.T) {
		var captured http.Request
		handler := authChain(&captured)

		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Валидный токен кладет пользователя в контекст", func(t *testing.T) {
		var captured http.Request
		handler := authChain(&captured)

		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.Header.Set("Authorization", "Bearer "+makeToken(t, 7, "test@example.com"))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		userID, ok := captured.Context().Value("userID").(int64)
		require.True(t, ok)
		assert.Equal(t, int64(7), userID)
		assert.Equal(t, "test@example.com", captured.Context().Value("email"))
	})

	t.Run("Неверный формат заголовка дает 401", func(t *testing.T) {
		var captured http.Request
		handler := authChain(&captured)

		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.Header.Set("Authorization", "Token abc")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Токен с чужой подписью дает 401", func(t *testing.T) {
		var captured http.Request
		handler := authChain(&captured)

		claims := jwt.MapClaims{"userId": int64(7), "email": "test@example.com"}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte("other_secret"))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Публичные эндпоинты доступны без токена", func(t *testing.T) {
		publicRequests := []struct {
			method string
			path   string
		}{
			{http.MethodPost, "/api/auth/register"},
			{http.MethodPost, "/api/auth/login"},
			{http.MethodPost, "/api/auth/refresh-token"},
			{http.MethodGet, "/health"},
			{http.MethodGet, "/stats"},
			{http.MethodGet, "/api/posts/1/comments"},
		}

		for _, pr := range publicRequests {
			var captured http.Request
			handler := authChain(&captured)

			req := httptest.NewRequest(pr.method, pr.path, nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code, pr.path)
		}
	})

	t.Run("Создание комментария не является публичным", func(t *testing.T) {
		var captured http.Request
		handler := authChain(&captured)

		req := httptest.NewRequest(http.MethodPost, "/api/posts/1/comments", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Токен на публичном пути разбирается по возможности", func(t *testing.T) {
		var captured http.Request
		handler := authChain(&captured)

		req := httptest.NewRequest(http.MethodGet, "/api/posts/1/comments", nil)
		req.Header.Set("Authorization", "Bearer "+makeToken(t, 7, "test@example.com"))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		userID, ok := captured.Context().Value("userID").(int64)
		require.True(t, ok)
		assert.Equal(t, int64(7), userID)
	})

	t.Run("Испорченный токен на публичном пути не мешает запросу", func(t *testing.T) {
		var captured http.Request
		handler := authChain(&captured)

		req := httptest.NewRequest(http.MethodGet, "/api/posts/1/comments", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		_, ok := captured.Context().Value("userID").(int64)
		assert.False(t, ok)
	})

	t.Run("Preflight запрос пропускается", func(t *testing.T) {
		var captured http.Request
		handler := authChain(&captured)

		req := httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
