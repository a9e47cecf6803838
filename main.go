package main

import (
	"Lexiduel/config"
	"Lexiduel/middleware"
	"Lexiduel/routes"
	"Lexiduel/services/duel"
	"Lexiduel/services/economy"
	redis_service "Lexiduel/services/redis"
	"Lexiduel/services/socket_io"
	socketio_types "Lexiduel/services/socket_io/types"
	"Lexiduel/sync"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// @title Lexiduel API
// @version 1.0
// @description Gin-Gonic server for the "Lexiduel" duel API
// @host lexiduel.ddns.net:8080
// @BasePath /
// @paths
func main() {
	godotenv.Load()
	// Setup DB conn
	log.Println("Setting up server...")

	if os.Getenv("PROD") == "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := config.ConnectGORM()
	if err != nil {
		log.Fatalf("Error connecting to PostgreSQL: %v", err)
	}
	log.Println("GORM Connected")

	// Only migrate in development or during deployment
	if os.Getenv("MIGRATE_POSTGRES") == "true" {
		log.Println("Migrating PostgreSQL database...")
		if err := config.MigrateDatabase(gormDB); err != nil {
			log.Printf("Warning: Database migration failed: %v", err)
			// Continue execution even if migration fails
		} else {
			log.Println("Database migrated successfully")
		}
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("Error reading GORM PostgreSQL instance: %v", err)
	}
	defer sqlDB.Close()

	redisClient, err := config.ConnectRedis()
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	log.Println("Connection to Redis successful")
	defer redis_service.CloseRedis(redisClient)

	r := gin.Default()

	middleware.SetUpMiddleware(r)

	routes.SetupRoutes(r, gormDB)

	// Socket server carries the user connection maps and implements the
	// duel event bus, so it exists before the registry that publishes to it.
	sioServer := &socket_io.MySocketServer{}

	syncManager := sync.NewSyncManager(redisClient, gormDB)

	registry := duel.NewRegistry(duel.Config{
		Bus:         (*socketio_types.SocketServer)(sioServer),
		Live:        redisClient,
		Inventory:   economy.NewCrystalBank(gormDB),
		Wins:        economy.NewDuelWinRecorder(gormDB),
		Persistence: syncManager,
	})

	sioServer.Start(r, gormDB, registry)

	// Configure port
	port := os.Getenv("PORT")
	if port == "" && os.Getenv("USE_HTTPS") == "true" {
		port = "443"
	} else if port == "" {
		port = "8080"
	}

	if os.Getenv("USE_HTTPS") == "true" {
		//SSL certification configuration for HTTPS
		certFile := "/etc/letsencrypt/live/lexiduel.ddns.net/fullchain.pem"
		keyFile := "/etc/letsencrypt/live/lexiduel.ddns.net/privkey.pem"

		// Start server
		if err := r.RunTLS(":"+port, certFile, keyFile); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	} else {
		if err := r.Run(":" + port); err != nil {
			log.Fatalf("Error starting server: %v", err)
		}
	}
	log.Printf("Server started on port %s", port)
}
