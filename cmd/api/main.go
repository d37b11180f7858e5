package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/AriosJentu/PickerApp-sub000/internal/events"
	"github.com/AriosJentu/PickerApp-sub000/internal/handler"
	"github.com/AriosJentu/PickerApp-sub000/internal/middleware"
	"github.com/AriosJentu/PickerApp-sub000/internal/models"
	"github.com/AriosJentu/PickerApp-sub000/internal/query"
	"github.com/AriosJentu/PickerApp-sub000/internal/repository"
	"github.com/AriosJentu/PickerApp-sub000/internal/service"
	"github.com/AriosJentu/PickerApp-sub000/pkg/cache"
	"github.com/AriosJentu/PickerApp-sub000/pkg/config"
	"github.com/AriosJentu/PickerApp-sub000/pkg/database"
	"github.com/AriosJentu/PickerApp-sub000/pkg/logger"
	corsmiddleware "github.com/AriosJentu/PickerApp-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/AriosJentu/PickerApp-sub000/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
	}

	var publisher *events.Publisher
	if cfg.Events.Enabled {
		publisher, err = events.NewPublisher(cfg.Events, logr)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to broker", "error", err)
		}
		publisher.Start(ctx)
		defer publisher.Close()
	}

	metricsSvc := service.NewMetricsService()
	engine := query.New(db).WithObserver(metricsSvc.ObserveDBQuery)

	tokenRepo := repository.NewTokenRepository(db)
	userRepo := repository.NewUserRepository(db, engine)
	algorithmRepo := repository.NewAlgorithmRepository(db, engine)
	lobbyRepo := repository.NewLobbyRepository(db, engine)
	teamRepo := repository.NewTeamRepository(db, engine)
	participantRepo := repository.NewParticipantRepository(db, engine)

	validate := validator.New()

	tokenSvc := service.NewTokenService(tokenRepo, userRepo, logr, service.TokenConfig{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  cfg.JWT.AccessExpiry,
		RefreshTTL: cfg.JWT.RefreshExpiry,
	})
	authSvc := service.NewAuthService(userRepo, tokenSvc, validate, logr, publisher)
	userSvc := service.NewUserService(userRepo, tokenSvc, validate, logr)
	algorithmSvc := service.NewAlgorithmService(algorithmRepo, service.PermissiveScriptChecker{}, validate, logr)
	lobbySvc := service.NewLobbyService(lobbyRepo, algorithmRepo, cacheRepo, cfg.Cache.LobbyTTL, validate, logr, publisher, metricsSvc)
	teamSvc := service.NewTeamService(teamRepo, lobbyRepo, validate, logr)
	participantSvc := service.NewParticipantService(participantRepo, lobbyRepo, teamRepo, validate, logr)

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		exportSvc = service.NewExportService(lobbyRepo, participantRepo, teamRepo, userRepo, logr)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	algorithmHandler := handler.NewAlgorithmHandler(algorithmSvc)
	lobbyHandler := handler.NewLobbyHandler(lobbySvc)
	teamHandler := handler.NewTeamHandler(teamSvc)
	participantHandler := handler.NewParticipantHandler(participantSvc)
	adminHandler := handler.NewAdminHandler(tokenSvc, exportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		session := auth.Group("", middleware.Auth(tokenSvc))
		session.POST("/logout", authHandler.Logout)
		session.GET("/me", authHandler.Me)
	}

	protected := api.Group("", middleware.Auth(tokenSvc))

	users := protected.Group("/users")
	{
		users.GET("/:id", userHandler.Get)
		users.PUT("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)
		users.GET("", middleware.RequireRole(models.RoleModerator), userHandler.List)
		users.PUT("/:id/role", middleware.RequireRole(models.RoleAdmin), userHandler.ChangeRole)
	}

	algorithms := protected.Group("/algorithms")
	{
		algorithms.GET("", algorithmHandler.List)
		algorithms.GET("/:id", algorithmHandler.Get)
		algorithms.POST("", algorithmHandler.Create)
		algorithms.PUT("/:id", algorithmHandler.Update)
		algorithms.DELETE("/:id", algorithmHandler.Delete)
	}

	lobbies := protected.Group("/lobbies")
	{
		lobbies.GET("", lobbyHandler.List)
		lobbies.GET("/:id", lobbyHandler.Get)
		lobbies.POST("", lobbyHandler.Create)
		lobbies.PUT("/:id", lobbyHandler.Update)
		lobbies.DELETE("/:id", lobbyHandler.Delete)
	}

	teams := protected.Group("/teams")
	{
		teams.GET("", teamHandler.List)
		teams.GET("/:id", teamHandler.Get)
		teams.POST("", teamHandler.Create)
		teams.PUT("/:id", teamHandler.Update)
		teams.DELETE("/:id", teamHandler.Delete)
	}

	participants := protected.Group("/participants")
	{
		participants.GET("", participantHandler.List)
		participants.POST("", participantHandler.Join)
		participants.DELETE("/:id", participantHandler.Leave)
		participants.PUT("/:id/team", participantHandler.AssignTeam)
	}

	admin := protected.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/tokens/purge", adminHandler.PurgeTokens)
		admin.GET("/lobbies/:id/roster.pdf", adminHandler.LobbyRoster)
		admin.GET("/users/export.csv", adminHandler.UsersExport)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
