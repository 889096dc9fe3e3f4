package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"

	"jobpath-backend/internal/auth"
	"jobpath-backend/internal/controller/file"
	"jobpath-backend/internal/database"
)

// MyServer holds the port the server runs on and the shared dependencies
// every route handler hangs off of.
type MyServer struct {
	port int

	DB        *database.DBinstanceStruct
	Blacklist auth.JwtBlacklistStore
	Storage   file.StorageClient
}

// NewServer constructs a new http.Server wired to the full route surface.
func NewServer() *http.Server {
	port, _ := strconv.Atoi(os.Getenv("PORT"))

	db, err := database.GetMainDB()
	if err != nil {
		log.Fatalf("Database failed to initialize: %s", err)
	}
	if err := db.Migrate(); err != nil {
		log.Fatalf("Database migration failed: %s", err)
	}

	s := &MyServer{
		port:      port,
		DB:        db,
		Blacklist: newBlacklistStore(),
		Storage:   newStorageClient(),
	}

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}

// newBlacklistStore prefers the Redis-backed token blacklist so revocations
// survive restarts and are shared between replicas. Without Redis configured
// the in-memory store keeps single-instance deployments working.
func newBlacklistStore() auth.JwtBlacklistStore {
	store, err := auth.NewRedisBlacklistStoreFromEnv()
	if err != nil {
		log.Printf("Redis blacklist unavailable, using in-memory store: %s", err)
		return auth.NewInMemoryBlacklistStore()
	}
	return store
}

// newStorageClient returns the cloud bucket client, or nil when no bucket is
// configured, in which case uploads fall back to database storage.
func newStorageClient() file.StorageClient {
	bucket := os.Getenv("GCS_BUCKET_NAME")
	if bucket == "" {
		return nil
	}
	client, err := file.NewCloudStorageClient(bucket)
	if err != nil {
		log.Printf("Cloud storage unavailable, falling back to database storage: %s", err)
		return nil
	}
	return client
}
