package main

import (
	"context"
	"log"
	"time"

	"cultureshare-api-io/api/internal/container"
	"cultureshare-api-io/api/internal/migrate"
	"cultureshare-api-io/api/internal/routers"
	"cultureshare-api-io/api/pkg/util"
)

func main() {
	db := util.ConnectDB()
	rdb := util.ConnectRedis()

	if util.LoadEnvFor("RUN_MIGRATIONS") == "true" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		manager := migrate.NewManager(db).
			Add(migrate.EnsureIndexes()).
			Add(migrate.CategoryReferenceRepair())
		if err := manager.Run(ctx); err != nil {
			cancel()
			log.Fatal("Migrations failed:", err)
		}
		cancel()
	}

	sc := container.NewServiceContainer(db, rdb)
	router := routers.InitRoute(sc, rdb)

	port := util.LoadEnvFor("PORT")
	if port == "" {
		port = "8080"
	}

	if err := router.Run("0.0.0.0:" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
