package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"remarket/server/config"
	"remarket/server/internal/chat"
	"remarket/server/internal/database"
	"remarket/server/internal/ml"
	"remarket/server/internal/notify"
	"remarket/server/internal/processor"
	"remarket/server/internal/scheduler"
	"remarket/server/internal/tools"
)

// Server wires the store, the prediction engine, the chat layer and the
// scheduled jobs behind one HTTP listener.
type Server struct {
	cfg       *config.Config
	logger    *logrus.Logger
	db        *database.Database
	gormDB    *gorm.DB
	scheduler *scheduler.Scheduler
	http      *http.Server
}

func NewServer(cfg *config.Config, logger *logrus.Logger) (*Server, error) {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// A missing model artifact is not fatal; predictions answer 503 until
	// it shows up and a restart picks it up.
	predictor := ml.NewPredictor(cfg.Model.ArtifactPath, cfg.Model.MetaPath, logger)
	if err := predictor.Ready(); err != nil {
		logger.WithError(err).Warn("Prediction model not loaded, predictions disabled")
	}

	toolbox := tools.NewToolbox(db, predictor, logger)
	llm := chat.NewOllamaClient(
		cfg.Ollama.Host,
		cfg.Ollama.Model,
		time.Duration(cfg.Ollama.GenerateTimeout)*time.Second,
		time.Duration(cfg.Ollama.HealthTimeout)*time.Second,
		logger,
	)
	chatService := chat.NewService(db, toolbox, llm, logger)

	handler := NewHandler(db, predictor, toolbox, chatService, cfg.Digest.MinDiscount, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(logger), CORS(cfg.Server.AllowedOrigins))
	SetupRoutes(router, handler)

	srv := &Server{
		cfg:    cfg,
		logger: logger,
		db:     db,
		http: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
	}

	if cfg.Scheduler.Enabled {
		gormDB, err := database.OpenGorm(cfg.Database.Path)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to open batch database: %w", err)
		}
		srv.gormDB = gormDB

		revaluator := processor.NewRevaluator(gormDB, predictor, cfg.Batch.CommitSize, logger)
		srv.scheduler = scheduler.NewScheduler(revaluator, db, buildNotifiers(cfg, logger), cfg.Scheduler, cfg.Digest, logger)
	}

	return srv, nil
}

func buildNotifiers(cfg *config.Config, logger *logrus.Logger) []notify.Notifier {
	var notifiers []notify.Notifier
	if cfg.Telegram.Enabled {
		notifiers = append(notifiers, notify.NewTelegramNotifier(cfg.Telegram, logger))
	}
	if cfg.Email.Enabled {
		notifiers = append(notifiers, notify.NewEmailNotifier(cfg.Email, logger))
	}
	return notifiers
}

// Run serves until the context is cancelled, then drains in-flight requests
// within the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	if s.scheduler != nil {
		if err := s.scheduler.Start(); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Starting server on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	if s.scheduler != nil {
		s.scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// Close releases the database handles.
func (s *Server) Close() error {
	if s.gormDB != nil {
		if sqlDB, err := s.gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return s.db.Close()
}
