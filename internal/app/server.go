// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"visrec-admin/internal/authstate"
	"visrec-admin/internal/config"
	"visrec-admin/internal/db"
	authHandler "visrec-admin/internal/handlers/auth"
	draftHandler "visrec-admin/internal/handlers/draft"
	translationHandler "visrec-admin/internal/handlers/translation"
	wsHandler "visrec-admin/internal/handlers/websocket"
	"visrec-admin/internal/middleware"
	"visrec-admin/internal/pkg/gemini"
	"visrec-admin/internal/pkg/identity"
	"visrec-admin/internal/pkg/jwt"
	"visrec-admin/internal/pkg/session"
	firestoreRepo "visrec-admin/internal/repository/firestore"
	"visrec-admin/internal/repository/locale"
	"visrec-admin/internal/repository/postgres"
	authUsecase "visrec-admin/internal/service/auth"
	draftUsecase "visrec-admin/internal/service/draft"
	translationUsecase "visrec-admin/internal/service/translation"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const stateIdleTTL = 30 * time.Minute

type Server struct {
	cfg     config.AppConfig
	engine  *gin.Engine
	logger  *zap.Logger
	http    *http.Server
	cancel  context.CancelFunc
	closers []func() error
}

func NewServer() (*Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	return &Server{cfg: cfg, engine: gin.New(), logger: logger}, nil
}

// Start wires every component and blocks serving HTTP until Shutdown.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Address:  s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	s.closers = append(s.closers, redisClient.Close)
	s.logger.Info("redis connected", zap.String("addr", s.cfg.RedisAddr))

	// ----- Allowlist -----
	allowlistRepo, err := s.allowlistRepository(ctx)
	if err != nil {
		return err
	}
	checker := authUsecase.NewAllowlistChecker(allowlistRepo, s.logger)

	// ----- JWT Manager -----
	jwtManager, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT manager: %w", err)
	}

	// ----- Session Manager & Rate Limiter -----
	sessionManager := session.NewManager(redisClient, s.logger)
	rateLimiter := session.NewRateLimiter(redisClient)

	// ----- Auth state -----
	states := authstate.NewRegistry(checker, sessionManager, s.logger, stateIdleTTL)
	go states.Run(ctx)

	// ----- Services (Usecases) -----
	provider := identity.NewGoogleProvider(identity.GoogleConfig{
		ClientID:     s.cfg.Google.ClientID,
		ClientSecret: s.cfg.Google.ClientSecret,
		RedirectURL:  s.cfg.Google.RedirectURL,
		Scopes:       s.cfg.Google.Scopes,
	})
	authService := authUsecase.NewAuthService(provider, checker, jwtManager, sessionManager, states, s.logger)

	geminiClient := gemini.NewClient(gemini.Config{
		APIKey:  s.cfg.Gemini.APIKey,
		BaseURL: s.cfg.Gemini.BaseURL,
		Model:   s.cfg.Gemini.Model,
		Timeout: s.cfg.Gemini.Timeout,
	})
	draftService := draftUsecase.NewDraftService(geminiClient, rateLimiter, s.cfg.Draft.RateLimit, s.cfg.Draft.RateWindow, s.logger)

	store := locale.NewFileStore(afero.NewOsFs(), s.cfg.Locales.Dir, s.cfg.Locales.AtomicWrites)
	translationService := translationUsecase.NewTranslationService(store, s.cfg.Locales.DefaultLocale, s.logger)

	// ----- Handlers -----
	handlers := &Handlers{
		AuthHandler:        authHandler.NewAuthHandler(authService, s.cfg.CookieSecure, s.logger),
		DraftHandler:       draftHandler.NewDraftHandler(draftService),
		TranslationHandler: translationHandler.NewTranslationHandler(translationService),
		WSHandler:          wsHandler.NewWebSocketHandler(authService, s.cfg.AllowedOrigins, s.logger),
		AuthMiddleware:     middleware.NewAuthMiddleware(authService),
		RequireAPIAuth:     s.cfg.RequireAPIAuth,
		AdminStaticDir:     s.cfg.AdminStaticDir,
	}

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RecoveryMiddleware(s.logger),
		middleware.LoggingMiddleware(s.logger),
		middleware.CORSMiddleware(s.cfg.AllowedOrigins),
	)

	// ----- Router -----
	SetupRouter(s.engine, s.logger, handlers)

	// ----- Start HTTP -----
	s.http = &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains HTTP connections, stops the auth state registry and
// releases backing clients.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	_ = s.logger.Sync()
	return errors.Join(errs...)
}

func (s *Server) allowlistRepository(ctx context.Context) (authUsecase.AllowlistRepository, error) {
	switch s.cfg.AllowlistBackend {
	case config.AllowlistPostgres:
		pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		s.closers = append(s.closers, func() error { pool.Close(); return nil })

		if err := postgres.NewDB(pool).EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("failed to prepare allowlist schema: %w", err)
		}
		s.logger.Info("allowlist backend", zap.String("backend", "postgres"))
		return postgres.NewAllowlistRepository(pool), nil

	default:
		client, err := db.NewFirestoreClient(ctx, db.FirestoreConfig{
			ProjectID:       s.cfg.Firebase.ProjectID,
			CredentialsFile: s.cfg.Firebase.CredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, client.Close)
		s.logger.Info("allowlist backend",
			zap.String("backend", "firestore"),
			zap.String("collection", s.cfg.Firebase.AllowlistCol),
		)
		return firestoreRepo.NewAllowlistRepository(client, s.cfg.Firebase.AllowlistCol), nil
	}
}
