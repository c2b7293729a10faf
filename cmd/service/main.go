package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/AMAShyp/declare/internal/auth"
	"github.com/AMAShyp/declare/internal/dbx"
	"github.com/AMAShyp/declare/internal/declare"
	"github.com/AMAShyp/declare/internal/realtime"
)

// sessionSource adapts the connection manager to the declare handlers.
type sessionSource struct {
	m *dbx.Manager
}

func (s sessionSource) Acquire(ctx context.Context, sessionKey string) (declare.Session, error) {
	return s.m.Acquire(ctx, sessionKey)
}

func main() {
	ctx := context.Background()

	port := getenv("PORT", "8080")
	jwtSecret := []byte(getenv("JWT_SECRET", "dev-secret-change-me"))
	redisURL := getenv("REDIS_URL", "")

	cfg, err := dbx.ConfigFromEnv()
	if err != nil {
		log.Fatalf("declare-service: config: %v", err)
	}

	// Shared pool for migrations and the auth tables. Declaration traffic
	// goes through the per-session manager instead.
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		log.Fatalf("declare-service: pg: %v", err)
	}
	defer pool.Close()

	if err := declare.AutoMigrate(ctx, pool); err != nil {
		log.Fatalf("declare-service: migrate: %v", err)
	}
	if err := auth.AutoMigrate(ctx, pool); err != nil {
		log.Fatalf("declare-service: migrate auth: %v", err)
	}

	manager := dbx.NewManager(cfg)
	defer manager.Close(ctx)

	// Browsers end sessions silently, so idle connections are reclaimed on
	// a timer rather than on an end-of-session signal.
	idleTTL, err := time.ParseDuration(getenv("SESSION_IDLE_TTL", "15m"))
	if err != nil {
		log.Fatalf("declare-service: invalid SESSION_IDLE_TTL: %v", err)
	}
	go manager.RunSweeper(ctx, time.Minute, idleTTL)

	// Redis is optional. Without it, declaration events stay local.
	var rdb *redis.Client
	if redisURL != "" {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("declare-service: invalid REDIS_URL: %v", err)
		}
		rdb = redis.NewClient(opt)
		defer rdb.Close()
	}

	authSrv := auth.NewServer(pool, jwtSecret)
	declSrv := declare.NewServer(sessionSource{m: manager}, rdb)

	hub := realtime.NewHub()
	rtSrv := realtime.NewServer(hub, rdb, ctx)
	go hub.Run()
	if rdb != nil {
		go rtSrv.RunRedisSubscriber()
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)

	r.Mount("/auth", authSrv.Router(auth.Middleware(jwtSecret)))
	r.Mount("/api", declSrv.Router(
		declare.SessionMiddleware,
		auth.Middleware(jwtSecret),
	))
	r.Mount("/realtime", rtSrv.Router())

	log.Printf("declare-service listening on :%s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("declare-service: %v", err)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
