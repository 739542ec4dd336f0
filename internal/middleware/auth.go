package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskdeck/backend/api/transport"
	"github.com/taskdeck/backend/domain"
)

// SessionResolver resolves a bearer token to a live session, or to no
// identity. The auth use case implements it.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Session, error)
}

// SessionAuth guards a route behind the session lookup. On success the
// resolved identity is exposed to handlers through the X-User-ID and
// X-Session-ID request headers; any failure is a uniform 401.
func SessionAuth(resolver SessionResolver, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			// Strip any client-supplied identity headers before resolving.
			ctx.Request.Header.Del("X-User-ID")
			ctx.Request.Header.Del("X-Session-ID")

			token := extractToken(ctx)
			if token == "" {
				reject(ctx)
				return
			}

			stdCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()

			session, err := resolver.Resolve(stdCtx, token)
			if err != nil {
				logger.Debug("session resolution failed", zap.Error(err))
				reject(ctx)
				return
			}

			ctx.Request.Header.Set("X-User-ID", session.UserID)
			ctx.Request.Header.Set("X-Session-ID", session.ID)
			next(ctx)
		}
	}
}

func reject(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	body, _ := json.Marshal(transport.NewError(string(domain.ErrCodeUnauthorized), domain.ErrUnauthorized.Message))
	ctx.SetBody(body)
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
