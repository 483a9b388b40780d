package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/condo/backend/internal/infrastructure/auth"
	"github.com/condo/backend/internal/infrastructure/logger"
	"github.com/condo/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenVerifier validates a bearer token
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// BearerActor replaces the request actor with the identity carried by a
// bearer token. A present but invalid token is always rejected. Requests
// without a token pass through unless required is set.
//
// It must run after logger.GinMiddleware, which seeds the actor from X-Actor.
func BearerActor(verifier TokenVerifier, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			if required {
				abortUnauthorized(c, "Authentication required")
				return
			}
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			logger.GetGinLogger(c).Warn("Bearer token rejected", zap.Error(err))
			msg := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "Token has expired"
			}
			abortUnauthorized(c, msg)
			return
		}

		ctx, reqLogger := logger.WithActor(c.Request.Context(), logger.GetGinLogger(c), claims.Actor())
		c.Request = c.Request.WithContext(ctx)
		c.Set("logger", reqLogger)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", `Bearer realm="condo"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
		dto.ErrCodeUnauthorized, message, logger.GetRequestID(c.Request.Context()),
	))
}
