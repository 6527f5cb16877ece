package middleware

import (
	"net/http"
	"os"
	"strings"

	"uniasia-be/internal/logger"
	"uniasia-be/internal/utils"

	"github.com/golang-jwt/jwt/v5"
)

var jwtKey = []byte(os.Getenv("SECRET_KEY"))

// AuthMiddleware extracts the operator identity from a bearer token issued by
// the upstream auth service. Requests without a valid token pass through
// unauthenticated; handlers decide whether an actor is required.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			return jwtKey, nil
		})

		if err != nil || !token.Valid {
			next.ServeHTTP(w, r)
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			actor := utils.Actor{}
			if email, ok := claims["email"].(string); ok {
				actor.Email = email
			}
			if name, ok := claims["name"].(string); ok {
				actor.Name = name
			}
			if role, ok := claims["role"].(string); ok {
				actor.Role = role
			}

			if actor.Email != "" {
				ctx := utils.SetActorContext(r.Context(), actor)
				ctx = logger.WithActorEmail(ctx, actor.Email)
				r = r.WithContext(ctx)
			}
		}

		next.ServeHTTP(w, r)
	})
}
