package middleware

import (
	"net/http"

	"cultureshare-api-io/api/internal/auth"
	"cultureshare-api-io/api/pkg/models"
	"cultureshare-api-io/api/pkg/services"
	"cultureshare-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// AdminOnly restricts review and category mutation routes to admin users. The
// role is re-read from the user record, not trusted from the token, so a
// demoted admin loses access as soon as their document changes.
func AdminOnly(userService services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := auth.CurrentPrincipal(c)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		currentUser, err := userService.GetUserByID(c.Request.Context(), principal.UserID)
		if err != nil {
			util.HandleError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		if currentUser.Role != models.RoleAdmin || !currentUser.IsActive {
			util.HandleError(c, http.StatusForbidden, errors.Wrap(models.ErrForbidden, "admin access required"))
			c.Abort()
			return
		}

		c.Next()
	}
}
