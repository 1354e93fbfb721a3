package handler

import (
	"fmt"
	"net/http"
	"time"

	"textok-auth/internal/auth"
	"textok-auth/internal/rsdata"

	"github.com/gin-gonic/gin"
)

type signupRequest struct {
	Email             string `json:"email"`
	Username          string `json:"username"`
	Password          string `json:"password"`
	Nickname          string `json:"nickname"`
	DateOfBirth       string `json:"dateOfBirth"`
	Gender            string `json:"gender"`
	VerificationToken string `json:"verificationToken"`
}

func parseDateOfBirth(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, rsdata.Of("400-0", "invalid request"))
		return
	}

	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		c.JSON(http.StatusBadRequest, rsdata.Of("400-0", "invalid dateOfBirth"))
		return
	}

	u, err := h.auth.Signup(c.Request.Context(), auth.SignupRequest{
		Email:             req.Email,
		Username:          req.Username,
		Password:          req.Password,
		Nickname:          req.Nickname,
		DateOfBirth:       dob,
		Gender:            req.Gender,
		VerificationToken: req.VerificationToken,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rsdata.New(
		"201-1",
		fmt.Sprintf("welcome, %s!", u.Username),
		newUserDto(u),
	))
}

func (h *Handler) CheckUsername(c *gin.Context) {
	username := c.Query("username")
	available, err := h.auth.IsAvailableUsername(c.Request.Context(), username)
	if err != nil {
		writeError(c, err)
		return
	}

	msg := "username already in use"
	if available {
		msg = "username is available"
	}
	c.JSON(http.StatusOK, rsdata.New("200-1", msg, gin.H{"isAvailable": available}))
}

func (h *Handler) CheckNickname(c *gin.Context) {
	nickname := c.Query("nickname")
	available, err := h.auth.IsAvailableNickname(c.Request.Context(), nickname)
	if err != nil {
		writeError(c, err)
		return
	}

	msg := "nickname already in use"
	if available {
		msg = "nickname is available"
	}
	c.JSON(http.StatusOK, rsdata.New("200-1", msg, gin.H{"isAvailable": available}))
}

func (h *Handler) GetEmail(c *gin.Context) {
	email, err := h.auth.GetEmailByUsername(c.Request.Context(), c.Query("username"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rsdata.New("200-1", "email found", gin.H{"email": email}))
}

type sendCodeRequest struct {
	Email string `json:"email"`
}

func (h *Handler) SendCode(c *gin.Context) {
	var req sendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, rsdata.Of("400-0", "invalid request"))
		return
	}

	if err := h.verification.SendCode(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rsdata.Of("200-1", "verification code sent"))
}

type verifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *Handler) VerifyCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, rsdata.Of("400-0", "invalid request"))
		return
	}

	verified, err := h.verification.Verify(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		writeError(c, err)
		return
	}

	msg := "verification failed"
	if verified {
		msg = "email verified"
	}
	c.JSON(http.StatusOK, rsdata.New("200-1", msg, gin.H{"verified": verified}))
}
