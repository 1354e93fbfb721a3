package handler

import (
	"net/http"

	"textok-auth/internal/auth"
	"textok-auth/internal/logger"
	"textok-auth/internal/rsdata"

	"github.com/gin-gonic/gin"
)

func (h *Handler) OAuth2Login(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, rsdata.Of("400-0", "unknown oauth provider"))
		return
	}

	state := generateState(c)
	_, codeChallenge := generatePKCE(c)

	c.Redirect(http.StatusFound, p.AuthCodeURL(state, codeChallenge))
}

func (h *Handler) OAuth2Callback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, rsdata.Of("400-0", "unknown oauth provider"))
		return
	}

	if !validateState(c) {
		c.JSON(http.StatusUnauthorized, rsdata.Of("401-0", "invalid state"))
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oauth2 callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		c.Redirect(http.StatusFound, h.frontendURL+"/login")
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("oauth2 callback missing code and error", nil)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	codeVerifier := getPKCEVerifier(c)
	if codeVerifier == "" {
		c.JSON(http.StatusUnauthorized, rsdata.Of("401-0", "missing pkce verifier"))
		return
	}

	identity, err := p.ExchangeCode(c.Request.Context(), code, codeVerifier)
	if err != nil {
		c.JSON(http.StatusUnauthorized, rsdata.Of("401-0", "authentication failed"))
		return
	}

	u, err := h.auth.FindOrCreateOAuth2User(
		c.Request.Context(),
		identity.ExternalUsername(),
		identity.Picture,
	)
	if err != nil {
		writeError(c, err)
		return
	}

	// First login from this identity: no nickname yet, so no real tokens.
	// Hand out a temporary token and send the client to complete the
	// profile instead.
	if !u.Completed() {
		tmp, err := h.codec.IssueTemporaryToken(u.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Redirect(http.StatusFound, h.completionURL+"?token="+tmp)
		return
	}

	if _, _, err := h.issueSession(c, u); err != nil {
		writeError(c, err)
		return
	}

	logger.Info("oauth2 login", map[string]any{
		"provider": providerName,
		"user_id":  u.ID,
	})
	c.Redirect(http.StatusFound, h.frontendURL)
}

type completeOAuth2JoinRequest struct {
	TemporaryToken string `json:"temporaryToken"`
	Nickname       string `json:"nickname"`
	DateOfBirth    string `json:"dateOfBirth"`
	Gender         string `json:"gender"`
}

// CompleteOAuth2Join finalizes a placeholder account and logs it in.
func (h *Handler) CompleteOAuth2Join(c *gin.Context) {
	var req completeOAuth2JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, rsdata.Of("400-0", "invalid request"))
		return
	}

	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		c.JSON(http.StatusBadRequest, rsdata.Of("400-0", "invalid dateOfBirth"))
		return
	}

	u, err := h.auth.CompleteOAuth2Join(c.Request.Context(), auth.CompleteOAuth2JoinRequest{
		TemporaryToken: req.TemporaryToken,
		Nickname:       req.Nickname,
		DateOfBirth:    dob,
		Gender:         req.Gender,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	if _, _, err := h.issueSession(c, u); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rsdata.New("201-1", "welcome, "+u.Nickname+"!", newUserDto(u)))
}
