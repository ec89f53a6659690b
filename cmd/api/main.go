package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/clinic-chat-api/internal/config"
	"github.com/harentsoaR/clinic-chat-api/internal/handlers"
	"github.com/harentsoaR/clinic-chat-api/internal/realtime"
	"github.com/harentsoaR/clinic-chat-api/internal/services"
	"github.com/harentsoaR/clinic-chat-api/internal/store"
	"github.com/harentsoaR/clinic-chat-api/internal/utils"
)

type backend interface {
	store.UserStore
	store.RoomStore
	store.MessageStore
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	log.Printf("API_PORT: %s", cfg.Port)
	log.Printf("STORE_BACKEND: %s", cfg.StoreBackend)
	log.Printf("ALLOWED_ORIGINS: %v", cfg.AllowedOrigins)

	// --- Storage ---
	var (
		st     backend
		client *mongo.Client
	)
	switch cfg.StoreBackend {
	case config.StoreMemory:
		log.Println("Using in-memory store; data is lost on restart.")
		st = store.NewMemoryStore()
	default:
		client, st = connectMongo(cfg)
	}

	// --- Initialize Services ---
	tokens, err := utils.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}
	users := services.NewUserService(st, tokens)
	rooms := services.NewRoomService(st)
	messages := services.NewMessageService(rooms, st, st)
	live := realtime.NewChannel(realtime.NewHub(), tokens, rooms, messages, cfg.Realtime)

	// --- Gin Router ---
	h := handlers.NewHandler(users, rooms, messages, live)
	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handlers.NewRouter(h, tokens, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				log.Println("Shutting down HTTP server...")
				return srv.Shutdown(ctx)
			},
			// Upgraded connections are hijacked and not closed by srv.Shutdown.
			"realtime": func(ctx context.Context) error {
				return live.Shutdown(ctx)
			},
		},
	)

	exitCode := <-wait
	if client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Disconnect(ctx); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
		cancel()
	}
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func connectMongo(cfg config.Config) (*mongo.Client, *store.MongoStore) {
	// --- Database Connection ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	log.Println("Successfully connected to MongoDB!")

	st := store.NewMongoStore(client.Database(cfg.MongoDatabase))
	if err := st.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}
	return client, st
}
