package main

import (
	"log"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"marketdata_backend/internal/app/router"
	"marketdata_backend/internal/feature/marketdata/adapters"
	"marketdata_backend/internal/feature/marketdata/transport/handler"
	"marketdata_backend/internal/feature/marketdata/usecase"
	"marketdata_backend/internal/platform/cache"
	infradb "marketdata_backend/internal/platform/db"
	infraredis "marketdata_backend/internal/platform/redis"
)

func main() {
	// db
	db := infradb.OpenDB(infradb.LoadConfig())
	gateway := infradb.NewGateway(db)

	// Redis
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository
	minMaxRepo := adapters.NewMinMaxRepository(gateway)

	// Redisキャッシュでラップ（時間足は追記のみなのでTTL失効で十分）
	cachedRepo := cache.NewCachingMinMaxRepository(rdb, 5*time.Minute, minMaxRepo, "minmax")

	// Usecase
	minMaxUC := usecase.NewMinMaxUsecase(cachedRepo)

	// Handler
	minMaxH := handler.NewMinMaxHandler(minMaxUC)

	// ルータ生成
	router := router.NewRouter(minMaxH)

	if err := router.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
