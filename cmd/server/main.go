package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/korobprog/supermock-app-sub000/internal/config"
	"github.com/korobprog/supermock-app-sub000/internal/fanout"
	"github.com/korobprog/supermock-app-sub000/internal/handlers"
	"github.com/korobprog/supermock-app-sub000/internal/matching"
	"github.com/korobprog/supermock-app-sub000/internal/metrics"
	"github.com/korobprog/supermock-app-sub000/internal/models"
	"github.com/korobprog/supermock-app-sub000/internal/realtime"
	"github.com/korobprog/supermock-app-sub000/internal/repositories"
	"github.com/korobprog/supermock-app-sub000/internal/routers"
	"github.com/korobprog/supermock-app-sub000/internal/services"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := db.AutoMigrate(
		&models.CandidateProfile{},
		&models.InterviewerProfile{},
		&models.AvailabilitySlot{},
		&models.MatchRequest{},
		&models.InterviewMatch{},
		&models.InterviewSummary{},
		&models.RealtimeSession{},
		&models.SessionParticipant{},
	); err != nil {
		logger.Fatal("failed to migrate schema", zap.Error(err))
	}

	profileRepo := &repositories.ProfileRepository{DB: db}
	availabilityRepo := &repositories.AvailabilityRepository{DB: db}
	sessionRepo := &repositories.SessionRepository{DB: db}

	bus := realtime.NewBus()
	matchEngine := matching.NewEngine(db, profileRepo, availabilityRepo, logger)
	presenceEngine := realtime.NewEngine(sessionRepo, bus, logger)

	hub := fanout.NewHub()
	hub.Attach(bus)

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		relay := services.NewEventRelay(rdb, logger)
		relay.Attach(bus)
		logger.Info("event relay enabled", zap.String("redisAddr", cfg.RedisAddr))
	}

	// Replay non-terminal sessions so subscribers regain state after a restart.
	if _, err := presenceEngine.Restore(); err != nil {
		logger.Fatal("failed to restore realtime sessions", zap.Error(err))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Timeout(60*time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	r.Use(metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	routers.Register(r,
		&handlers.ProfileHandler{Profiles: profileRepo},
		&handlers.AvailabilityHandler{Slots: availabilityRepo},
		&handlers.MatchingHandler{Engine: matchEngine},
		handlers.NewSessionHandler(presenceEngine, hub, []byte(cfg.JWTSecret)),
	)

	addr := ":" + cfg.Port
	logger.Info("supermock core listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
