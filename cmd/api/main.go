package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"visrec-admin/internal/app"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[MAIN] No .env file found, relying on system env vars")
	}

	srv, err := app.NewServer()
	if err != nil {
		log.Fatalf("❌ Server failed to configure: %v", err)
	}

	// Run server in a separate goroutine so we can listen for shutdown signals
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Printf("❌ Server failed to start: %v", err)
		}
	case <-quit:
		log.Println("🛑 Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Shutdown failed: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
