package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	userIDContextKey    = contextKey("userID")
	userEmailContextKey = contextKey("userEmail")
)

func (app *Application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")

				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// requireAuthentication verifies the bearer token and stashes the caller's
// identity in the request context. Token issuance lives in the identity
// service; only HS256 verification happens here.
func (app *Application) requireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			app.unauthorizedAccessResponse(w, r)
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			app.unauthorizedAccessResponse(w, r)
			return
		}

		claims := &userClaims{}

		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(app.config.Auth.JWTSecret), nil
		})

		if err != nil || !token.Valid || claims.Subject == "" {
			app.unauthorizedAccessResponse(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, claims.Subject)
		ctx = context.WithValue(ctx, userEmailContextKey, claims.Email)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type userClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

func (app *Application) contextGetUserId(r *http.Request) string {
	userID, _ := r.Context().Value(userIDContextKey).(string)
	return userID
}

func (app *Application) contextGetUserEmail(r *http.Request) string {
	email, _ := r.Context().Value(userEmailContextKey).(string)
	return email
}
