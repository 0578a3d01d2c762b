// Package server exposes the bridge over HTTP: health, current state,
// device commands and Prometheus metrics.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/berfenger/moebot2mqtt/internal/config"

	"github.com/asynkron/protoactor-go/actor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
)

// Server answers every request by asking the master actor. It holds no state
// of its own.
type Server struct {
	httpLog     bool
	rootContext *actor.RootContext
	masterActor *actor.PID
	gatherer    prometheus.Gatherer
}

// NewServer builds the HTTP server. gatherer may be nil, in which case
// /metrics is not served.
func NewServer(cfg config.Config, rootContext *actor.RootContext, masterActor *actor.PID, gatherer prometheus.Gatherer) *http.Server {
	s := &Server{
		httpLog:     cfg.HttpLog,
		rootContext: rootContext,
		masterActor: masterActor,
		gatherer:    gatherer,
	}
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.RegisterRoutes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// command requests wait for the device
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  time.Minute,
	}
}
