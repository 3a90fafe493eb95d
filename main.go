package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/raaf17/assesment-test-imp/internal/api"
	"github.com/raaf17/assesment-test-imp/internal/auth"
	"github.com/raaf17/assesment-test-imp/internal/config"
	"github.com/raaf17/assesment-test-imp/internal/database"
	"github.com/raaf17/assesment-test-imp/internal/logger"
	"github.com/raaf17/assesment-test-imp/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init()

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Set up the token codec and revocation list. With a Redis address
	// configured the revocation list is shared across processes;
	// otherwise a per-process list with a scheduled sweep is used.
	codec := auth.NewCodec([]byte(cfg.JWTSecret), cfg.TokenTTL)

	var revoked auth.RevocationList
	var memList *auth.MemoryRevocationList
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		revoked = auth.NewRedisRevocationList(client)
	} else {
		memList = auth.NewMemoryRevocationList()
		if err := memList.StartSweeper("@every 10m"); err != nil {
			log.Fatalf("Failed to start revocation sweeper: %v", err)
		}
		revoked = memList
	}

	// Set up services
	userService := services.NewUserService(db)
	postService := services.NewPostService(db)
	eventService := services.NewEventService(db)

	// Set up router
	router := api.NewRouter(cfg.CORSOrigin, codec, revoked, userService, postService, eventService)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if memList != nil {
		memList.Stop() // Stop the revocation sweeper
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
