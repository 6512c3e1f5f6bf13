// Package rest provides functionality for initializing a server.
package rest

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/danilovkiri/dk-go-snapreward/internal/api/rest/v1/handlers"
	"github.com/danilovkiri/dk-go-snapreward/internal/api/rest/v1/middleware"
	"github.com/danilovkiri/dk-go-snapreward/internal/client"
	"github.com/danilovkiri/dk-go-snapreward/internal/config"
	"github.com/danilovkiri/dk-go-snapreward/internal/service/processor/v1/processor"
	"github.com/danilovkiri/dk-go-snapreward/internal/service/sweeper/v1/sweeper"
	"github.com/danilovkiri/dk-go-snapreward/internal/storage/v1/infile"
	"github.com/go-chi/chi"
	"github.com/rs/zerolog"
)

// InitServer returns a http.Server object ready to be listening and serving.
func InitServer(ctx context.Context, cfg *config.Config, log *zerolog.Logger, wg *sync.WaitGroup) (server *http.Server, err error) {
	// initialize storage
	storage, err := infile.InitStorage(ctx, cfg.StorageConfig, log)
	if err != nil {
		return nil, err
	}

	// initialize notification client
	notifierClient := client.InitClient(cfg.BotConfig, log)

	// initialize main service
	mainService, err := processor.InitService(storage, notifierClient, cfg.SecretConfig, log)
	if err != nil {
		return nil, err
	}

	// initialize sweeper
	sweeperService := sweeper.InitSweeper(ctx, storage, notifierClient, cfg.SweeperConfig, log, wg)
	sweeperService.Run()

	// initialize handlers
	urlHandler, err := handlers.InitHandlers(mainService, cfg.ServerConfig, log)
	if err != nil {
		return nil, err
	}

	// initialize server and set routing
	r := chi.NewRouter()
	r.Use(middleware.CompressHandle)
	r.Use(middleware.DecompressHandle)
	r.Post("/api/upload", urlHandler.HandleUpload())
	r.Get("/api/balance", urlHandler.HandleGetBalance())
	r.Post("/api/withdraw", urlHandler.HandleNewWithdrawal())
	r.Post("/api/admin/update_withdraw", urlHandler.HandleUpdateWithdraw())

	srv := &http.Server{
		Addr:         cfg.ServerConfig.ServerAddress,
		Handler:      r,
		IdleTimeout:  60 * time.Second,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return srv, nil
}
