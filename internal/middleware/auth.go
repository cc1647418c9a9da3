package middleware

import (
	"net/http"

	"cultureshare-api-io/api/internal/auth"
	"cultureshare-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// Auth validates the bearer token, rejects blacklisted tokens, and stores the
// principal on the context for downstream handlers.
func Auth(tokens *auth.TokenStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := auth.ExtractToken(c)
		if tokenString == "" {
			util.HandleError(c, http.StatusUnauthorized, errors.New("request does not contain an access token"))
			c.Abort()
			return
		}

		principal, status, err := verifyRequestToken(c, tokens, tokenString)
		if err != nil {
			util.HandleError(c, status, err)
			c.Abort()
			return
		}

		auth.SetPrincipal(c, principal)
		c.Next()
	}
}

// OptionalAuth attaches a principal when the request carries a valid token but
// lets anonymous requests through. Public reads use it so owners and admins
// see their non-public documents without the route being gated. A token that
// is presented but revoked or expired is still an error, never a silent
// downgrade to anonymous.
func OptionalAuth(tokens *auth.TokenStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := auth.ExtractToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		principal, status, err := verifyRequestToken(c, tokens, tokenString)
		if err != nil {
			util.HandleError(c, status, err)
			c.Abort()
			return
		}

		auth.SetPrincipal(c, principal)
		c.Next()
	}
}

// verifyRequestToken runs the full pipeline on a presented token: signature,
// blacklist, then live session.
func verifyRequestToken(c *gin.Context, tokens *auth.TokenStore, tokenString string) (auth.Principal, int, error) {
	principal, err := auth.PrincipalFromToken(c)
	if err != nil {
		return auth.Principal{}, http.StatusUnauthorized, err
	}

	if !tokens.IsTokenValid(c.Request.Context(), tokenString) {
		return auth.Principal{}, http.StatusUnauthorized, errors.New("token has been revoked, please login again")
	}

	session, err := tokens.Session(c.Request.Context(), tokenString)
	if err != nil {
		return auth.Principal{}, http.StatusInternalServerError, err
	}
	if session == nil || session.Expired() {
		return auth.Principal{}, http.StatusUnauthorized, errors.New("session expired, please login again")
	}

	return principal, http.StatusOK, nil
}
