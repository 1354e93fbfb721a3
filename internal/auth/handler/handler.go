package handler

import (
	"net/http"
	"strings"
	"time"

	"textok-auth/internal/auth"
	"textok-auth/internal/auth/provider"
	"textok-auth/internal/logger"
	"textok-auth/internal/rsdata"
	"textok-auth/internal/session"
	"textok-auth/internal/token"
	"textok-auth/internal/user"
	"textok-auth/internal/verification"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	auth         *auth.Service
	sessions     session.Store
	codec        *token.Codec
	providers    *provider.Registry
	verification *verification.Service
	cookies      session.CookieOptions

	frontendURL   string
	completionURL string
}

func NewHandler(
	authService *auth.Service,
	sessions session.Store,
	codec *token.Codec,
	providers *provider.Registry,
	verificationService *verification.Service,
	cookies session.CookieOptions,
	frontendURL string,
	completionURL string,
) *Handler {
	return &Handler{
		auth:          authService,
		sessions:      sessions,
		codec:         codec,
		providers:     providers,
		verification:  verificationService,
		cookies:       cookies,
		frontendURL:   frontendURL,
		completionURL: completionURL,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine, requireAuth gin.HandlerFunc) {
	grp := r.Group("/api/v1/auth")

	grp.POST("/signup", h.Signup)
	grp.POST("/login", h.Login)
	grp.POST("/password-reset", h.PasswordReset)
	grp.POST("/complete-oauth2-join", h.CompleteOAuth2Join)
	grp.GET("/check-username", h.CheckUsername)
	grp.GET("/check-nickname", h.CheckNickname)
	grp.GET("/get-email", h.GetEmail)
	grp.POST("/send-code", h.SendCode)
	grp.POST("/verify-code", h.VerifyCode)

	grp.GET("/oauth2/login/:provider", h.OAuth2Login)
	grp.GET("/oauth2/callback/:provider", h.OAuth2Callback)

	protected := grp.Group("")
	protected.Use(requireAuth)
	protected.DELETE("/logout", h.Logout)
	protected.GET("/me", h.Me)
	protected.DELETE("/withdraw", h.Withdraw)
}

// UserDto is the account shape returned to clients. The password hash
// never leaves the service.
type UserDto struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	Nickname      string `json:"nickname,omitempty"`
	Role          string `json:"role"`
	Gender        string `json:"gender,omitempty"`
	DateOfBirth   string `json:"dateOfBirth,omitempty"`
	ProfileImgURL string `json:"profileImgUrl,omitempty"`
	CreatedAt     string `json:"createdAt"`
}

func newUserDto(u *user.User) UserDto {
	dto := UserDto{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		Nickname:      u.Nickname,
		Role:          string(u.Role),
		Gender:        u.Gender,
		ProfileImgURL: u.ProfileImgURL,
		CreatedAt:     u.CreatedAt.Format(time.RFC3339),
	}
	if u.DateOfBirth != nil {
		dto.DateOfBirth = u.DateOfBirth.Format("2006-01-02")
	}
	return dto
}

// issueSession replaces the user's session: any previous refresh token is
// superseded the moment the new one is saved (single session per user).
func (h *Handler) issueSession(c *gin.Context, u *user.User) (accessToken, refreshToken string, err error) {
	if err = h.sessions.Delete(c.Request.Context(), u.ID); err != nil {
		return "", "", err
	}

	accessToken, err = h.codec.IssueAccessToken(u.ID, u.Role)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = h.codec.IssueRefreshToken(u.ID)
	if err != nil {
		return "", "", err
	}

	if err = h.sessions.Save(c.Request.Context(), u.ID, refreshToken); err != nil {
		return "", "", err
	}

	session.SetToken(c.Writer, session.AccessTokenCookie, accessToken, h.cookies)
	session.SetToken(c.Writer, session.RefreshTokenCookie, refreshToken, h.cookies)
	return accessToken, refreshToken, nil
}

func (h *Handler) clearSessionCookies(c *gin.Context) {
	session.ClearToken(c.Writer, session.AccessTokenCookie, h.cookies)
	session.ClearToken(c.Writer, session.RefreshTokenCookie, h.cookies)
}

// writeError maps service errors onto the envelope. The HTTP status
// follows the result code's class.
func writeError(c *gin.Context, err error) {
	authErr, ok := auth.AsError(err)
	if !ok {
		logger.Error("unexpected error", map[string]any{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, rsdata.Of("500-0", "internal error"))
		return
	}

	status := http.StatusInternalServerError
	switch {
	case strings.HasPrefix(authErr.Code, "400"):
		status = http.StatusBadRequest
	case strings.HasPrefix(authErr.Code, "401"):
		status = http.StatusUnauthorized
	case strings.HasPrefix(authErr.Code, "404"):
		status = http.StatusNotFound
	}
	c.JSON(status, rsdata.Of(authErr.Code, authErr.Msg))
}
