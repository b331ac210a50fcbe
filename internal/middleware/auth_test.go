package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

const secret = "test-secret"

func sign(t *testing.T, key string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func run(handler fasthttp.RequestHandler, authorization string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/tasks")
	if authorization != "" {
		ctx.Request.Header.Set("Authorization", authorization)
	}
	handler(ctx)
	return ctx
}

func okHandler(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(http.StatusOK)
}

func TestJWTAuth_DisabledWithoutSecret(t *testing.T) {
	ctx := run(JWTAuth("", "", nil)(okHandler), "")
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
}

func TestJWTAuth_RejectsMissingToken(t *testing.T) {
	ctx := run(JWTAuth(secret, "", nil)(okHandler), "")
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"message":"unauthorized"}`, string(ctx.Response.Body()))
	assert.Equal(t, "*", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
}

func TestJWTAuth_RejectsWrongKey(t *testing.T) {
	token := sign(t, "other", jwt.MapClaims{"sub": "u-1"})
	ctx := run(JWTAuth(secret, "", nil)(okHandler), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestJWTAuth_RejectsExpiredToken(t *testing.T) {
	token := sign(t, secret, jwt.MapClaims{"sub": "u-1", "exp": time.Now().Add(-time.Hour).Unix()})
	ctx := run(JWTAuth(secret, "", nil)(okHandler), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestJWTAuth_RejectsWrongIssuer(t *testing.T) {
	token := sign(t, secret, jwt.MapClaims{"sub": "u-1", "iss": "someone-else"})
	ctx := run(JWTAuth(secret, "taskstore", nil)(okHandler), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestJWTAuth_AcceptsValidToken(t *testing.T) {
	token := sign(t, secret, jwt.MapClaims{"sub": "u-1", "iss": "taskstore", "exp": time.Now().Add(time.Hour).Unix()})
	ctx := run(JWTAuth(secret, "taskstore", nil)(okHandler), "Bearer "+token)

	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "u-1", ctx.UserValue(SubjectKey))
}
