package shutdownsetup

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tarlochansingh04052005/swaad-e-bihar-website/pkg/logger"
)

// SetupGracefulShutdown blocks until SIGINT/SIGTERM, then drains the HTTP
// server with a bounded shutdown window.
func SetupGracefulShutdown(server *http.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Info("Shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Graceful shutdown failed, forcing close", "error", err)
		_ = server.Close()
		return
	}
	log.Info("Server stopped cleanly")
}
