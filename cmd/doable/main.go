package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"doable/internal/auth"
	"doable/internal/config"
	"doable/internal/db"
	httpx "doable/internal/http"
	"doable/internal/session"
	"doable/internal/snapshot"
	"doable/internal/task"
)

func main() {
	cfg, _ := config.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		log.Fatal(err)
	}

	snaps, err := snapshot.New(cfg.DataDir)
	if err != nil {
		log.Fatal(err)
	}

	jwtSvc := auth.NewJWT(cfg.JWTSecret)
	hub := auth.NewHub()
	sessions := session.NewManager(snaps, hub, func(ownerID string) task.Store {
		return task.NewRemoteStore(gdb, ownerID)
	}, logger)
	defer sessions.Close()

	r := httpx.NewRouter(cfg, gdb, jwtSvc, hub, sessions)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
