package app

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	authCookie     = "jwt"
	TokenExp30Days = 30 * 24 * time.Hour
)

type contextKey string

const profileKey = contextKey("profileID")

// Claims стандартные утверждения токена и идентификатор профиля ProfileID
type Claims struct {
	jwt.RegisteredClaims
	ProfileID uuid.UUID
}

type responseData struct {
	status int
	size   int
}

type loggingResponseWriter struct {
	http.ResponseWriter
	responseData *responseData
}

func (r *loggingResponseWriter) Write(b []byte) (int, error) {
	if r.responseData.status == 0 {
		r.responseData.status = http.StatusOK
	}
	size, err := r.ResponseWriter.Write(b)
	r.responseData.size += size
	return size, err
}

func (r *loggingResponseWriter) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.responseData.status = statusCode
}

func (s *Server) withLog(h http.Handler) http.Handler {
	logFn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lw := loggingResponseWriter{
			ResponseWriter: w,
			responseData:   &responseData{},
		}

		h.ServeHTTP(&lw, r)

		s.logger.Info(
			"входящий запрос",
			slog.String("uri", r.RequestURI),
			slog.String("http метод", r.Method),
			slog.Duration("длительность запроса", time.Since(start)),
			slog.Int("статус", lw.responseData.status),
			slog.Int("размер ответа", lw.responseData.size),
		)
	}

	return http.HandlerFunc(logFn)
}

// withSecurityHeaders заголовки безопасности для всех ответов
func withSecurityHeaders(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		// изображения грузятся напрямую с drive.google.com
		header.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self'; "+
				"style-src 'self' 'unsafe-inline'; "+
				"img-src 'self' data: https:; "+
				"connect-src 'self'; "+
				"frame-ancestors 'none'; "+
				"base-uri 'self'; "+
				"form-action 'self'")
		if r.TLS != nil {
			header.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		header.Set("X-Content-Type-Options", "nosniff")
		header.Set("X-Frame-Options", "DENY")
		header.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		header.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=(), usb=()")
		h.ServeHTTP(w, r)
	})
}

type (
	// gzipWriter решает сжимать ли ответ по его Content-Type в момент записи заголовков
	gzipWriter struct {
		http.ResponseWriter
		gzw     *gzip.Writer
		decided bool
	}
	gzipReader struct {
		orig io.ReadCloser
		gzr  *gzip.Reader
	}
)

func (gzw *gzipWriter) WriteHeader(statusCode int) {
	if !gzw.decided {
		gzw.decided = true
		if statusCode != http.StatusNoContent &&
			statusCode != http.StatusNotModified &&
			statusCode != http.StatusPartialContent &&
			gzipValidContentType(gzw.Header().Get("Content-Type")) {
			gzw.Header().Set("Content-Encoding", "gzip")
			gzw.Header().Del("Content-Length")
			gzw.gzw = gzip.NewWriter(gzw.ResponseWriter)
		}
	}
	gzw.ResponseWriter.WriteHeader(statusCode)
}

func (gzw *gzipWriter) Write(p []byte) (int, error) {
	if !gzw.decided {
		if gzw.Header().Get("Content-Type") == "" {
			gzw.Header().Set("Content-Type", http.DetectContentType(p))
		}
		gzw.WriteHeader(http.StatusOK)
	}
	if gzw.gzw == nil {
		return gzw.ResponseWriter.Write(p)
	}
	return gzw.gzw.Write(p)
}

func (gzw *gzipWriter) Close() error {
	if gzw.gzw == nil {
		return nil
	}
	return gzw.gzw.Close()
}

func (gzr *gzipReader) Read(p []byte) (n int, err error) {
	return gzr.gzr.Read(p)
}

func (gzr *gzipReader) Close() error {
	if err := gzr.orig.Close(); err != nil {
		return err
	}
	return gzr.gzr.Close()
}

func withGZIP(h http.Handler) http.Handler {
	zfunc := func(w http.ResponseWriter, r *http.Request) {
		newWriter := w

		if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			cw := &gzipWriter{ResponseWriter: w}
			newWriter = cw
			defer cw.Close()
		}

		if strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
			// оборачиваем тело запроса в io.Reader с поддержкой декомпрессии
			rzip, err := gzip.NewReader(r.Body)
			if err != nil {
				http.Error(w, "тело запроса не в формате gzip", http.StatusBadRequest)
				return
			}
			gzr := &gzipReader{
				orig: r.Body,
				gzr:  rzip,
			}
			r.Body = gzr
			defer gzr.Close()
		}

		h.ServeHTTP(newWriter, r)
	}
	return http.HandlerFunc(zfunc)
}

func gzipValidContentType(contentType string) bool {
	validContentType := []string{
		"text/html",
		"text/plain",
		"text/css",
		"text/javascript",
		"application/javascript",
		"application/json",
	}
	for _, ct := range validContentType {
		if strings.Contains(contentType, ct) {
			return true
		}
	}
	return false
}

// withToken профиль пользователя хранится в jwt cookie. Если cookie нет или она невалидна, создается новый профиль
func (s *Server) withToken(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profileID, err := getProfileIDFromCookie(r, s.Config.SecretKey())
		if err != nil {
			s.logger.Debug("новый профиль", slog.String("причина", err.Error()))
			profileID = uuid.New()
			newTokenString, err := buildJWTString(profileID, s.Config.SecretKey())
			if err != nil {
				s.logger.Error("создание токена", slog.String("ошибка", err.Error()))
				http.Error(w, "создание профиля", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     authCookie,
				Value:    newTokenString,
				Path:     "/",
				MaxAge:   int(TokenExp30Days.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		// сохраняем ID профиля в контексте запроса и передаем дальше
		h.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), profileKey, profileID)))
	})
}

// profileFromContext ID профиля, записанный withToken
func profileFromContext(ctx context.Context) (uuid.UUID, bool) {
	profileID, ok := ctx.Value(profileKey).(uuid.UUID)
	return profileID, ok
}

// buildJWTString создаёт токен и возвращает его в виде строки.
func buildJWTString(profileID uuid.UUID, secret string) (string, error) {
	// создаём новый токен с алгоритмом подписи HS256 и утверждениями Claims
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			// когда истекает токен
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenExp30Days)),
		},
		// собственное утверждение
		ProfileID: profileID,
	})

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// getProfileIDFromToken - получает ID из JWT токена
func getProfileIDFromToken(tokenString, secret string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("неожиданный метод подписи: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
	if err != nil {
		return uuid.UUID{}, err
	}

	if !token.Valid {
		return uuid.UUID{}, fmt.Errorf("токен не прошел проверку")
	}
	if claims.ProfileID == uuid.Nil {
		return uuid.UUID{}, fmt.Errorf("в токене нет ID профиля")
	}
	return claims.ProfileID, nil
}

// getProfileIDFromCookie - получает ID профиля из куки
func getProfileIDFromCookie(r *http.Request, secret string) (uuid.UUID, error) {
	token, err := r.Cookie(authCookie)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("не смогли получить cookie. %w", err)
	}
	profileID, err := getProfileIDFromToken(token.Value, secret)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("не смогли получить ID профиля из токена. %w", err)
	}
	return profileID, nil
}
