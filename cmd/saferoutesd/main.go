// Command saferoutesd runs the safe-routes HTTP server described in spec §6.
package main

import (
	"log"
	"os"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/saferoutes/saferoutes-core/internal/config"
	"github.com/saferoutes/saferoutes-core/internal/httpapi"
	"github.com/saferoutes/saferoutes-core/internal/routeservice"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("saferoutesd: building logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load()
	svc := routeservice.New(cfg, logger)
	handler := httpapi.New(svc, logger)

	addr := listenAddr()
	logger.Info("saferoutesd listening", zap.String("addr", addr))

	server := &fasthttp.Server{
		Handler: handler.Route,
		Name:    "saferoutesd",
	}
	if err := server.ListenAndServe(addr); err != nil {
		logger.Fatal("saferoutesd: server exited", zap.Error(err))
	}
}

func listenAddr() string {
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		return addr
	}
	return ":8080"
}
