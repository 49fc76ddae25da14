package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nordweb/portal/pkg/observability"
)

// Registrar adds routes to a mux. The site handler is one.
type Registrar interface {
	Register(mux *http.ServeMux)
}

// RouterConfig lists what the router mounts.
type RouterConfig struct {
	// API serves /api/v1. Required.
	API *Adapter

	// Pages serves the HTML site. Optional.
	Pages Registrar

	// Health backs GET /readyz. Optional.
	Health HealthChecker

	// MetricsPath exposes Prometheus metrics when not empty.
	MetricsPath string
}

// NewRouter builds the request mux. Request metrics are recorded around the
// mux so they carry the matched route pattern.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", readyHandler(cfg.Health))
	if cfg.MetricsPath != "" {
		mux.Handle("GET "+cfg.MetricsPath, promhttp.Handler())
	}

	cfg.API.Register(mux)
	if cfg.Pages != nil {
		cfg.Pages.Register(mux)
	}

	return observability.MetricsMiddleware(mux)
}
