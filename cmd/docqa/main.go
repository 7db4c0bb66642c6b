// Package main Document Q&A server
//
//	@title			Document Q&A API
//	@version		1.0
//	@description	Upload a PDF to a document question-answering service and ask questions about it
//
//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html
//
//	@host		localhost:8080
//	@BasePath	/
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docqa/config"
	_ "docqa/docs" // This imports the docs package to initialize swagger
	"docqa/internal/cli"
	"docqa/internal/server"
)

func main() {
	if len(os.Args) >= 2 && os.Args[1] == "cli" {
		cli.Main(os.Args[2:])
		return
	}

	cfg := config.Load()
	if cfg.Debug() {
		log.Println("Service starting in DEBUG mode")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	go func() {
		log.Printf("Starting Document Q&A server on %s (QA service: %s)", srv.Addr, cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	cancel()

	log.Println("Server exiting")
}
