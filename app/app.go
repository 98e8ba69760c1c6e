package app

import (
	"Gin_postgres_redis_fleet_custody/broker"
	"Gin_postgres_redis_fleet_custody/config"
	"Gin_postgres_redis_fleet_custody/db"
	"Gin_postgres_redis_fleet_custody/storage"
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler-side aliases
type Ctx = gin.Context
type H = gin.H

// App aggregates every dependency the controllers need.
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	WA     *webauthn.WebAuthn
	Log    *zap.Logger
	Blob   storage.Store
	Broker *broker.Client
	Config config.Config
}

func MustNew() *App {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("zap: %v", err)
	}

	dbConn := db.ConnectDB()

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	// --- WebAuthn RP (native principals) ---
	wa, err := webauthn.New(&webauthn.Config{
		RPDisplayName: "Frota Custódia Passkeys",
		RPID:          cfg.RPID,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		log.Fatalf("webauthn: %v", err)
	}

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router: r,
		DB:     dbConn,
		RDB:    rdb,
		WA:     wa,
		Log:    logger,
		Blob:   storage.NewHTTPStore(cfg.StorageURL, cfg.StorageBucket, cfg.StorageKey),
		Broker: broker.NewClient(cfg.BrokerTokenURL, cfg.BrokerDirectoryURL, cfg.BrokerClientID, cfg.BrokerClientSecret),
		Config: cfg,
	}
}

func (a *App) Close() {
	_ = a.Log.Sync()
	_ = a.RDB.Close()
}
