package middleware

import (
	"net/http"
	"strings"

	"github.com/erp/marketsync/internal/infrastructure/auth"
	"github.com/erp/marketsync/internal/infrastructure/logger"
	"github.com/erp/marketsync/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const claimsKey = "auth_claims"

// TokenVerifier checks a bearer token
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// claims for RequireScope. The token subject joins the request logger.
func Authenticate(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortAuth(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Missing bearer token")
			return
		}
		claims, err := v.Verify(token)
		if err != nil {
			logger.L(c.Request.Context()).Debug("Rejected bearer token", zap.Error(err))
			abortAuth(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(claimsKey, claims)
		ctx := c.Request.Context()
		reqLogger := logger.FromContext(ctx).With(zap.String("subject", claims.Subject))
		c.Request = c.Request.WithContext(logger.WithContext(ctx, reqLogger))
		c.Next()
	}
}

// RequireScope aborts with 403 when the verified token lacks scope. Without
// Authenticate in the chain there are no claims and every request passes.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if ok && !claims.HasScope(scope) {
			abortAuth(c, http.StatusForbidden, dto.ErrCodeForbidden, "Token lacks scope "+scope)
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the claims Authenticate stored
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortAuth(c *gin.Context, status int, code, message string) {
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", `Bearer realm="marketsync"`)
	}
	c.AbortWithStatusJSON(status,
		dto.NewErrorResponse(code, message, logger.GetRequestID(c.Request.Context())))
}
