package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"lrs/internal/api"
	"lrs/internal/config"
	"lrs/internal/service/room"
	http_transport "lrs/internal/transport/http"
	ws_transport "lrs/internal/transport/ws"
)

func main() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	var cfg config.Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal(err)
	}

	roomService := room.NewServiceRoom(cfg.Rotation.DefaultIntervalSec)

	httpHandler := http_transport.NewHandler(roomService)
	wsHandler := ws_transport.NewWSHandler(roomService, time.Duration(cfg.Ws.PingIntervalSec)*time.Second)

	a := api.NewAPI(
		api.Deps{
			WsHandler:   wsHandler,
			HttpHandler: httpHandler,
		})

	srv := &http.Server{
		Addr:              cfg.Rest.Address,
		Handler:           a,
		ReadTimeout:       time.Duration(cfg.Rest.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Rest.WriteTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.Rest.ReadHeaderTimeout) * time.Second,
		IdleTimeout:       time.Duration(cfg.Rest.IdleTimeout) * time.Second,
	}

	go func() {
		log.Printf("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil {
			log.Fatal(err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	<-signalChan

	log.Println("Shutting down gracefully...")
}
