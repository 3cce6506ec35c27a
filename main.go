package main

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/egtaonline/egta-mock/pkg/config"
	"github.com/egtaonline/egta-mock/pkg/logging"
	"github.com/egtaonline/egta-mock/pkg/mockapi"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := logging.Must(cfg.Env)
	defer logger.Sync()

	srv := mockapi.New(cfg, logger)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"version": Version,
			"session": srv.Session().String(),
		})
	})

	logger.Info("starting egta-mock",
		zap.String("version", Version),
		zap.String("env", cfg.Env),
		zap.String("domain", cfg.Domain))
	if err := http.ListenAndServe(":8080", mux); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
