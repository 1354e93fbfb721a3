package handler

import (
	"net/http"

	"textok-auth/internal/auth"
	"textok-auth/internal/middleware"
	"textok-auth/internal/rsdata"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         UserDto `json:"user"`
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, rsdata.Of("400-0", "invalid request"))
		return
	}

	u, err := h.auth.Login(c.Request.Context(), auth.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	accessToken, refreshToken, err := h.issueSession(c, u)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rsdata.New("200-1", "logged in", loginResponse{
		User:         newUserDto(u),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}))
}

func (h *Handler) Logout(c *gin.Context) {
	principal, _ := middleware.Principal(c)

	if err := h.auth.Logout(c.Request.Context(), principal.UserID); err != nil {
		writeError(c, err)
		return
	}

	h.clearSessionCookies(c)
	c.JSON(http.StatusOK, rsdata.Of("200-1", "logged out"))
}

func (h *Handler) Me(c *gin.Context) {
	principal, _ := middleware.Principal(c)

	u, err := h.auth.GetUserByID(c.Request.Context(), principal.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rsdata.New("200-1", "profile", newUserDto(u)))
}

type passwordResetRequest struct {
	Email             string `json:"email"`
	Username          string `json:"username"`
	NewPassword       string `json:"newPassword"`
	VerificationToken string `json:"verificationToken"`
}

func (h *Handler) PasswordReset(c *gin.Context) {
	var req passwordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, rsdata.Of("400-0", "invalid request"))
		return
	}

	err := h.auth.PasswordReset(c.Request.Context(), auth.PasswordResetRequest{
		Email:             req.Email,
		Username:          req.Username,
		NewPassword:       req.NewPassword,
		VerificationToken: req.VerificationToken,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rsdata.Of("200-1", "password has been reset"))
}

// Withdraw hard-deletes the authenticated account and all of its data.
func (h *Handler) Withdraw(c *gin.Context) {
	principal, _ := middleware.Principal(c)

	if err := h.auth.HardDelete(c.Request.Context(), principal.UserID); err != nil {
		writeError(c, err)
		return
	}

	h.clearSessionCookies(c)
	c.JSON(http.StatusOK, rsdata.Of("200-1", "account deleted"))
}
