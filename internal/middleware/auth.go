package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskstore/api/transport"
	"github.com/fastygo/taskstore/domain"
)

// SubjectKey is the user value holding the authenticated token subject.
const SubjectKey = "subject"

// JWTAuth rejects requests without a valid HS256 bearer token. An empty secret
// disables the check.
func JWTAuth(secret, issuer string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		if secret == "" {
			return next
		}
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				unauthorized(ctx)
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("invalid jwt token", zap.Error(err))
				unauthorized(ctx)
				return
			}
			if issuer != "" && !claims.VerifyIssuer(issuer, false) {
				logger.Warn("jwt issuer mismatch")
				unauthorized(ctx)
				return
			}

			if sub, ok := claims["sub"].(string); ok {
				ctx.SetUserValue(SubjectKey, sub)
			}
			next(ctx)
		}
	}
}

func unauthorized(ctx *fasthttp.RequestCtx) {
	resp := transport.NewResponse(http.StatusUnauthorized, domain.ErrUnauthorized.Message, nil)
	for name, value := range resp.Headers {
		ctx.Response.Header.Set(name, value)
	}
	ctx.SetStatusCode(resp.StatusCode)
	ctx.SetBodyString(resp.Body)
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
