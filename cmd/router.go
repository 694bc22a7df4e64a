package main

import (
	"net/http"

	"github.com/angeloszaimis/website-monitor/internal/metrics"
)

func setupRouter(metricsCollector *metrics.Collector) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /metrics", metricsCollector.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux
}
