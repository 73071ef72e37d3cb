package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"javinity/internal/config"
	"javinity/internal/content"
	apphttp "javinity/internal/http"
	"javinity/internal/repository"
	"javinity/internal/repository/memory"
	"javinity/internal/repository/sqlite"
	"javinity/internal/service"
	"javinity/internal/session"
	"javinity/internal/validation"
)

// app is the wired server: router plus the pieces that need closing.
type app struct {
	cfg    config.Config
	logger *logrus.Logger
	router *gin.Engine
	views  repository.ViewRepository
	db     *sql.DB
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	setLevel(logger, level)
	return logger
}

func setLevel(logger *logrus.Logger, level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("unknown log level %q, keeping %s", level, logger.GetLevel())
		return
	}
	logger.SetLevel(lvl)
}

func buildApp(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	switch cfg.Store.Driver {
	case config.StoreSQLite:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.db = db
		a.views = sqlite.NewViewRepository(db)
		logger.Infof("using sqlite view store at %s", cfg.Database.Path)
	default:
		a.views = memory.NewViewRepository()
		logger.Info("using in-memory view store")
	}
	if err := a.views.Init(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("init view repository: %w", err)
	}

	site, err := content.Default()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load site content: %w", err)
	}

	sessions, err := session.NewManager(cfg.Session.Secret, cfg.SessionTTL(), cfg.Session.Secure)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("session manager: %w", err)
	}

	blogService := service.NewBlogService(a.views, site.Blog)
	authService := service.NewAuthService(a.views, validation.New(), service.NewStubSubmitter(cfg.SubmitDelay(), logger))

	gin.SetMode(gin.ReleaseMode)
	a.router = gin.New()
	a.router.Use(gin.Recovery())
	handler := apphttp.NewHandler(site, blogService, authService, sessions, logger, cfg.CORS.AllowOrigins)
	handler.RegisterRoutes(a.router)

	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warnf("close database: %v", err)
		}
	}
}
