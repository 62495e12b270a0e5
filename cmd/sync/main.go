package main

import (
	"context"
	"log"
	"time"

	"marketdata_backend/internal/app/di"
	"marketdata_backend/internal/feature/marketdata/usecase"
	infradb "marketdata_backend/internal/platform/db"
	"marketdata_backend/internal/platform/meta"
)

func main() {

	db := infradb.OpenDB(infradb.LoadConfig())
	gateway := infradb.NewGateway(db)
	sources := di.NewExchangeSources()
	uc := usecase.NewSyncUsecase(sources, gateway)

	m, err := meta.LoadOrInit(meta.Path(), time.Now())
	if err != nil {
		log.Fatal("failed to load launch metadata:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if m.IsFirstLaunch {
		log.Println("first launch: running full initialize")
		err = uc.Initialize(ctx)
	} else {
		log.Println("incremental update since", m.FirstLaunch().Format(time.RFC3339))
		err = uc.IncrementalUpdate(ctx, m.FirstLaunch())
	}
	if err != nil {
		log.Fatal(err)
	}
	log.Println("sync ok")
}
