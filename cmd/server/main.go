package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resto_pos_backend/internal/broadcast"
	"resto_pos_backend/internal/config"
	"resto_pos_backend/internal/database"
	"resto_pos_backend/internal/repositories"
	"resto_pos_backend/internal/router"
	"resto_pos_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		utils.LogError(err, "Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	utils.InitLogger(cfg.Log.Level, cfg.Log.Format)
	if err := utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.TTL); err != nil {
		return err
	}
	utils.SetErrorDetailsExposed(!cfg.IsProduction())
	utils.RegisterJSONTagNames()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	var publisher broadcast.Publisher
	if cfg.Broker.URL != "" {
		publisher, err = broadcast.NewRabbitMQPublisher(cfg.Broker.URL, cfg.Broker.Exchange)
		if err != nil {
			return err
		}
	} else {
		utils.LogWarn("AMQP_URL not set, broadcasts will only be logged")
		publisher = broadcast.NewLogPublisher()
	}
	defer publisher.Close()

	dispatcher := broadcast.NewDispatcher(
		repositories.NewOutboxRepository(db),
		publisher,
		broadcast.DispatcherConfig{
			PollInterval: cfg.Outbox.PollInterval,
			BatchSize:    cfg.Outbox.BatchSize,
			MaxAttempts:  cfg.Outbox.MaxAttempts,
		},
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.Setup(engine, db)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.Port, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return dispatcher.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		utils.LogInfo("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
