package app

import (
	"context"
	"net/http"

	"textok-auth/internal/auth"
	"textok-auth/internal/auth/handler"
	"textok-auth/internal/auth/provider"
	"textok-auth/internal/auth/provider/google"
	"textok-auth/internal/config"
	"textok-auth/internal/content"
	"textok-auth/internal/events"
	"textok-auth/internal/middleware"
	"textok-auth/internal/session"
	"textok-auth/internal/token"
	"textok-auth/internal/user"
	"textok-auth/internal/verification"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	codec := token.NewCodec(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	sessionStore := session.NewRedisStore(infra.Redis.Client, cfg.RefreshTokenTTL)

	cookieOpts := session.CookieOptions{
		Domain:   cfg.CookieDomain,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}

	userRepo := user.NewPostgresRepository(infra.DB)
	deletionRepo := user.NewPostgresDeletionRepository(infra.DB)
	contentRepo := content.NewPostgresRepository(infra.DB)
	verificationStore := verification.NewRedisStore(infra.Redis.Client, cfg.VerificationCodeTTL)
	verificationService := verification.NewService(verificationStore, verification.LogSender{})
	publisher := events.NewRedisPublisher(infra.Redis.Client)

	authService := auth.NewService(
		userRepo,
		deletionRepo,
		contentRepo,
		sessionStore,
		verificationStore,
		infra.Storage,
		publisher,
		codec,
	)

	googleProvider, err := google.New(
		ctx,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
	)
	if err != nil {
		return nil, nil, err
	}

	registry := provider.NewRegistry(googleProvider)

	authHandler := handler.NewHandler(
		authService,
		sessionStore,
		codec,
		registry,
		verificationService,
		cookieOpts,
		cfg.FrontendURL,
		cfg.OAuth2CompletionURL,
	)

	gate := middleware.NewGate(codec, sessionStore, cookieOpts)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gate.Authenticate())

	authHandler.RegisterRoutes(router, middleware.RequireAuth())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.DB.Close()
	}, nil
}
