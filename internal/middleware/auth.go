package middleware

import (
	"net/http"
	"strings"

	"textok-auth/internal/auth"
	"textok-auth/internal/logger"
	"textok-auth/internal/rsdata"
	"textok-auth/internal/session"
	"textok-auth/internal/token"

	"github.com/gin-gonic/gin"
)

const principalKey = "authPrincipal"

// exemptPaths are never authenticated: public auth endpoints, docs and
// the health check. Everything else goes through the gate once.
var exemptPaths = []string{
	"/api/v1/auth/signup",
	"/api/v1/auth/login",
	"/api/v1/auth/password-reset",
	"/api/v1/auth/complete-oauth2-join",
	"/api/v1/auth/check-username",
	"/api/v1/auth/check-nickname",
	"/api/v1/auth/get-email",
	"/api/v1/auth/send-code",
	"/api/v1/auth/verify-code",
	"/api/v1/auth/oauth2/",
	"/healthz",
	"/swagger",
	"/docs",
}

func exempt(path string) bool {
	for _, p := range exemptPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Gate decides per request whether to authenticate, silently re-issue an
// access token, or reject. Its outcomes are exactly three: a principal is
// set, the request is rejected with 401 and cleared cookies, or the
// request proceeds anonymously.
type Gate struct {
	codec    *token.Codec
	sessions session.Store
	cookies  session.CookieOptions
}

func NewGate(codec *token.Codec, sessions session.Store, cookies session.CookieOptions) *Gate {
	return &Gate{
		codec:    codec,
		sessions: sessions,
		cookies:  cookies,
	}
}

func (g *Gate) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if exempt(c.Request.URL.Path) {
			c.Next()
			return
		}

		accessToken, _ := c.Cookie(session.AccessTokenCookie)
		refreshToken, _ := c.Cookie(session.RefreshTokenCookie)

		// An Authorization header wins over the cookie.
		if bearer := bearerToken(c.Request); bearer != "" {
			accessToken = bearer
		}

		if accessToken != "" && g.codec.Verify(accessToken) {
			if ident, err := g.codec.DecodeIdentity(accessToken); err == nil {
				c.Set(principalKey, ident)
				c.Next()
				return
			}
			// Verified but not decodable as an access token (e.g. a
			// refresh token in the access slot): fall through.
		}

		if refreshToken != "" && g.codec.Verify(refreshToken) {
			g.renew(c, refreshToken)
			return
		}

		// Neither token valid: proceed unauthenticated. Route-level
		// authorization decides whether that is acceptable.
		c.Next()
	}
}

// renew exchanges a valid refresh token for a fresh access token,
// provided the presented token is still the user's current session.
func (g *Gate) renew(c *gin.Context, refreshToken string) {
	userID, err := g.codec.ExtractUserID(refreshToken)
	if err != nil {
		c.Next()
		return
	}

	stored, found, err := g.sessions.Find(c.Request.Context(), userID)
	if err != nil {
		// Store outage: do not log the client out over a transient
		// failure, just treat the request as anonymous.
		logger.Error("session lookup failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		c.Next()
		return
	}

	if !found {
		g.reject(c, auth.CodeSessionExpired, "session expired, please log in again")
		return
	}

	if stored != refreshToken {
		// A newer login replaced this session.
		g.reject(c, auth.CodeSessionSuperseded, "signed in from another device, please log in again")
		return
	}

	// Refresh tokens carry no role claim; renewed access defaults to USER.
	newAccessToken, err := g.codec.IssueAccessToken(userID, token.RoleUser)
	if err != nil {
		logger.Error("access token renewal failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		c.Next()
		return
	}

	session.SetToken(c.Writer, session.AccessTokenCookie, newAccessToken, g.cookies)

	ident, err := g.codec.DecodeIdentity(newAccessToken)
	if err != nil {
		c.Next()
		return
	}

	c.Set(principalKey, ident)
	logger.Info("access token renewed", map[string]any{
		"user_id": userID,
	})
	c.Next()
}

// reject clears both token cookies and stops the request. Clearing
// prevents the client from retrying the same dead refresh token forever.
func (g *Gate) reject(c *gin.Context, code, msg string) {
	session.ClearToken(c.Writer, session.AccessTokenCookie, g.cookies)
	session.ClearToken(c.Writer, session.RefreshTokenCookie, g.cookies)
	c.AbortWithStatusJSON(http.StatusUnauthorized, rsdata.Of(code, msg))
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// Principal returns the authenticated identity set by the gate.
func Principal(c *gin.Context) (token.Identity, bool) {
	val, ok := c.Get(principalKey)
	if !ok {
		return token.Identity{}, false
	}
	ident, ok := val.(token.Identity)
	return ident, ok
}

// RequireAuth guards routes that need a principal.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := Principal(c); !ok {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				rsdata.Of(auth.CodeBadCredentials, "authentication required"),
			)
			return
		}
		c.Next()
	}
}
