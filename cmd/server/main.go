package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"siteforge/realtime/internal/activity"
	"siteforge/realtime/internal/api"
	"siteforge/realtime/internal/auth"
	"siteforge/realtime/internal/config"
	"siteforge/realtime/internal/hub"
	"siteforge/realtime/internal/models"
	"siteforge/realtime/internal/repositories"
	"siteforge/realtime/internal/routers"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("user store: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := repositories.NewUserRepository(db)
	authn := auth.NewAuthenticator(cfg.JWTSecret, users)
	hb := hub.New(logger)

	// Activity collaborator: CRUD services publish to redis, we push to the
	// user's private room.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	subscriber, err := activity.NewSubscriber(rdb, hb, logger)
	if err != nil {
		log.Fatalf("activity subscriber: %v", err)
	}
	go subscriber.Run(context.Background())

	handlers, err := api.NewHandlers(logger, authn, hb, cfg.FrontendOrigin, cfg.AuthTimeout)
	if err != nil {
		log.Fatalf("handlers: %v", err)
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendOrigin},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Mount("/", routers.New(handlers))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })

	addr := ":" + cfg.Port
	log.Printf("realtime-svc listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
