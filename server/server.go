package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"namematcher/internal/config"
	"namematcher/registry"
	"namematcher/server/handlers"
	"namematcher/server/middleware"
)

// DefaultPurgeInterval период очистки просроченных записей кэша в хранилище
const DefaultPurgeInterval = time.Hour

// LookupPurger удаляет просроченные записи кэша ответов реестра
type LookupPurger interface {
	PurgeExpiredLookups(ctx context.Context) (int64, error)
}

// Server HTTP API сопоставления названий
type Server struct {
	config     *config.Config
	handler    *handlers.MatcherHandler
	store      handlers.BatchStore
	router     *gin.Engine
	httpServer *http.Server
	logger     *slog.Logger

	purgeInterval time.Duration
	shutdownChan  chan struct{}
	shutdownOnce  sync.Once
	wg            sync.WaitGroup
}

// Option настройка сервера
type Option func(*Server)

// WithLookupCache показывает в /health статистику кэша ответов реестра,
// если кэш ее ведет (кэш в памяти)
func WithLookupCache(cache registry.Cache) Option {
	return func(s *Server) {
		if reporter, ok := cache.(handlers.CacheStatsReporter); ok {
			s.handler.SetCacheStats(reporter)
		}
	}
}

// NewServer создает сервер. store == nil отключает историю пакетов.
func NewServer(cfg *config.Config, lookup registry.Lookup, store handlers.BatchStore, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if lookup == nil {
		return nil, fmt.Errorf("registry lookup cannot be nil")
	}

	segmenterConfig, err := cfg.SegmenterOptions()
	if err != nil {
		return nil, err
	}
	matchingConfig := cfg.MatchingConfig()
	if err := matchingConfig.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		config:        cfg,
		handler:       handlers.NewMatcherHandler(lookup, segmenterConfig, matchingConfig, store),
		store:         store,
		logger:        slog.Default().With("component", "server"),
		purgeInterval: DefaultPurgeInterval,
		shutdownChan:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute, // пакет с медленным реестром может идти долго
		IdleTimeout:  120 * time.Second,
	}
	return s, nil
}

// Handler возвращает HTTP обработчик (для тестов и встраивания)
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() *gin.Engine {
	// Режим Gin можно переопределить через GIN_MODE
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = handlers.MaxUploadSize

	router.Use(middleware.GinRequestIDMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinGzipMiddleware())
	router.Use(middleware.GinLoggerMiddleware(s.logger))
	router.Use(middleware.GinRecoveryMiddleware())

	handlers.RegisterSwaggerRoutes(router)
	router.GET("/health", s.handler.HandleHealth)

	api := router.Group("/api/v1")
	{
		api.POST("/normalize", s.handler.HandleNormalize)
		api.POST("/segment", s.handler.HandleSegment)
		api.POST("/similarity", s.handler.HandleSimilarity)
		api.POST("/match", s.handler.HandleMatch)
		api.POST("/lookup", s.handler.HandleLookup)
		api.GET("/rules", s.handler.HandleRules)

		batches := api.Group("/batches")
		batches.GET("", s.handler.HandleListBatches)
		batches.GET("/:id", s.handler.HandleGetBatch)
		batches.DELETE("/:id", s.handler.HandleDeleteBatch)
		batches.GET("/:id/export", s.handler.HandleExportBatch)
	}

	router.NoRoute(func(c *gin.Context) {
		handlers.SendJSONError(c, http.StatusNotFound, "route not found")
	})

	return router
}

// Start запускает HTTP сервер и блокируется до его остановки
func (s *Server) Start() error {
	if purger, ok := s.store.(LookupPurger); ok && s.config.LookupCache.Backend == config.CacheBackendSQLite {
		s.wg.Add(1)
		go s.runLookupPurger(purger)
	}

	s.logger.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"mode", s.config.Mode,
		"providers", s.config.RegistryProviders)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server on %s: %w", s.httpServer.Addr, err)
	}
	return nil
}

// Shutdown останавливает фоновые задачи и сервер, дожидаясь активных запросов
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() { close(s.shutdownChan) })
	s.wg.Wait()

	s.logger.Info("Initiating graceful shutdown")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	s.logger.Info("Graceful shutdown completed")
	return nil
}

// runLookupPurger периодически удаляет просроченные ответы реестра из хранилища
func (s *Server) runLookupPurger(purger LookupPurger) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdownChan:
			return
		case <-ticker.C:
			removed, err := purger.PurgeExpiredLookups(context.Background())
			if err != nil {
				s.logger.Warn("Failed to purge expired lookups", "error", err)
				continue
			}
			if removed > 0 {
				s.logger.Debug("Purged expired lookups", "removed", removed)
			}
		}
	}
}
