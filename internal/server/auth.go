package server

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bobmcallan/riskgate/internal/common"
)

// validateJWT parses and validates an HMAC-signed JWT.
func validateJWT(tokenString string, secret []byte) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return token, claims, nil
}

// hasScope reports whether the space-separated scope claim contains want.
func hasScope(claims jwt.MapClaims, want string) bool {
	scope, _ := claims["scope"].(string)
	return slices.Contains(strings.Fields(scope), want)
}

// serviceTokenMiddleware requires a bearer token carrying the record scope.
// With no secret configured the endpoint is open.
func serviceTokenMiddleware(cfg common.AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cfg.JWTSecret == "" {
			return next
		}
		secret := []byte(cfg.JWTSecret)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				w.Header().Set("WWW-Authenticate", "Bearer")
				WriteErrorWithCode(w, http.StatusUnauthorized, "bearer token required", CodeUnauthorized)
				return
			}

			_, claims, err := validateJWT(tokenString, secret)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				WriteErrorWithCode(w, http.StatusUnauthorized, "invalid or expired token", CodeUnauthorized)
				return
			}

			if cfg.RecordScope != "" && !hasScope(claims, cfg.RecordScope) {
				w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer error="insufficient_scope", scope="%s"`, cfg.RecordScope))
				WriteErrorWithCode(w, http.StatusForbidden, "token lacks scope "+cfg.RecordScope, CodeInsufficientScope)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
