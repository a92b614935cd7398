package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/dstrnad/wordpool/internal/auth"
	"github.com/dstrnad/wordpool/internal/config"
	"github.com/dstrnad/wordpool/internal/database"
	"github.com/dstrnad/wordpool/internal/handler"
	"github.com/dstrnad/wordpool/internal/middleware"
	"github.com/dstrnad/wordpool/internal/queue"
	"github.com/dstrnad/wordpool/internal/repository"
	"github.com/dstrnad/wordpool/internal/router"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err) // fine in production, env comes from the host
	}

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories
	users := repository.NewUserRepo(db)
	blacklist := repository.NewBlacklistRepo(db)
	lists := repository.NewListRepo(db)
	members := repository.NewMemberRepo(db)
	requests := repository.NewJoinRequestRepo(db)
	words := repository.NewWordRepo(db)

	// Auth plumbing: revocation ledger plus the token/credential resolver.
	ledger := &auth.Ledger{Store: blacklist, Secret: cfg.BlacklistSecret, JWTSecret: cfg.JWTSecret}
	resolver := &auth.Resolver{Users: users, Ledger: ledger, JWTSecret: cfg.JWTSecret}

	// Handlers
	authH := handler.NewAuthHandler(cfg, users, ledger, resolver)
	listH := handler.NewListHandler(cfg, lists, members, words, resolver)
	memberH := handler.NewMemberHandler(lists, members, requests, resolver)
	requestH := handler.NewJoinRequestHandler(lists, members, requests, resolver)
	wordH := handler.NewWordHandler(lists, members, words, users, resolver)

	e := echo.New() // Create Echo instance
	e.HideBanner = true

	// Rate limiting is a no-op when Redis is unreachable or disabled.
	rdb := config.NewRedisClient()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH)
	router.RegisterLists(e, listH, memberH, requestH)
	router.RegisterWords(e, wordH)

	// Activity consumer tails the broker and appends to logs/activity.log.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity-consumer stopped: %v", err)
		}
	}()

	// Hourly reaper keeps the token blacklist from growing without bound.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := blacklist.DeleteExpired(ctx, time.Now().UTC())
			cancel()
			if err != nil {
				log.Printf("blacklist reaper: %v", err)
			} else if n > 0 {
				log.Printf("blacklist reaper: removed %d expired entries", n)
			}
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
