package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clinsys/onboarding/pkg/helpers"
	"github.com/clinsys/onboarding/pkg/response"
)

// Auth validates the access token issued by the identity service and sets
// identityID in the Gin context on success. The token is read from the
// Authorization header (Bearer scheme) or the access_token cookie.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				token = cookie
			}
		}
		if token == "" {
			resp := response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			resp := response.Error[any](c, http.StatusUnauthorized, "invalid access token", err.Error())
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		if claims.IdentityID == "" {
			resp := response.Error[any](c, http.StatusUnauthorized, "token has no identity", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}

		c.Set("identityID", claims.IdentityID) // required by handlers
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
