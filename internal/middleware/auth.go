package middleware

import (
	"context"
	"net/http"
	"strings"

	"receipts/internal/apperror"
	"receipts/internal/logging"
	"receipts/internal/model"
	"receipts/pkg/response"

	"github.com/gin-gonic/gin"
)

const currentUserKey = "currentUser"

// UserResolver maps an access token to the user it belongs to
type UserResolver interface {
	CurrentUser(ctx context.Context, accessToken string) (*model.User, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// AbortUnauthorized answers 401 with the bearer challenge header
func AbortUnauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	response.Fail(c, http.StatusUnauthorized, message)
}

// RequireAuth resolves the bearer access token and stores the user on the context
func RequireAuth(resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			AbortUnauthorized(c, "Not authenticated")
			return
		}

		user, err := resolver.CurrentUser(c.Request.Context(), token)
		if err != nil {
			if apperror.KindOf(err) == apperror.KindUnauthenticated {
				AbortUnauthorized(c, apperror.MessageOf(err))
				return
			}
			logging.FromContext(c.Request.Context()).Error("failed to resolve current user", "error", err)
			response.Fail(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.Set(currentUserKey, user)
		c.Request = c.Request.WithContext(logging.IntoContext(c.Request.Context(),
			logging.FromContext(c.Request.Context()).With("user_id", user.ID)))
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireAuth
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}
