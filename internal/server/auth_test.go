package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/riskgate/internal/common"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, scope string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   "payments-worker",
		"scope": scope,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func withSecret(c *common.Config) {
	c.Auth.JWTSecret = testSecret
}

func TestSubscriptionWrite_RequiresToken(t *testing.T) {
	s, _ := newTestServer(t, nil, withSecret)
	body := `{"address":"0xA","transactionDone":true}`

	rec := do(t, s, http.MethodPost, "/api/v1/subscription/write", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestSubscriptionWrite_InvalidToken(t *testing.T) {
	s, _ := newTestServer(t, nil, withSecret)
	body := `{"address":"0xA","transactionDone":true}`

	forged := signToken(t, "other-secret", "entitlements:write", time.Hour)
	rec := do(t, s, http.MethodPost, "/api/v1/subscription/write", body, "Authorization", "Bearer "+forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired := signToken(t, testSecret, "entitlements:write", -time.Minute)
	rec = do(t, s, http.MethodPost, "/api/v1/subscription/write", body, "Authorization", "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubscriptionWrite_WrongScope(t *testing.T) {
	s, _ := newTestServer(t, nil, withSecret)

	token := signToken(t, testSecret, "portfolio:read", time.Hour)
	rec := do(t, s, http.MethodPost, "/api/v1/subscription/write", `{"address":"0xA","transactionDone":true}`,
		"Authorization", "Bearer "+token)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, CodeInsufficientScope, decodeError(t, rec).Code)
}

func TestSubscriptionWrite_ValidToken(t *testing.T) {
	s, _ := newTestServer(t, nil, withSecret)

	token := signToken(t, testSecret, "portfolio:read entitlements:write", time.Hour)
	rec := do(t, s, http.MethodPost, "/api/v1/subscription/write", `{"address":"0xA","transactionDone":true}`,
		"Authorization", "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSubscriptionRead_StaysOpen(t *testing.T) {
	s, _ := newTestServer(t, nil, withSecret)

	rec := do(t, s, http.MethodGet, "/api/v1/subscription/read?address=0xA", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
