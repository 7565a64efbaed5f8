package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/ADRCoding/college-bites-delivery/api/responses"
	"github.com/ADRCoding/college-bites-delivery/pkg/config"
	"github.com/ADRCoding/college-bites-delivery/pkg/logger"
)

const readinessTimeout = 5 * time.Second

// Pinger is the health probe surface shared by infra clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CollegeBites-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings each wired dependency and reports per-dependency status.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CollegeBites-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		statuses := map[string]string{}
		ready := true
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				ready = false
				statuses[name] = "unavailable"
				if logg != nil {
					logCtx := logg.WithField(ctx, "dependency", name)
					logg.Error(logCtx, "readiness ping failed", err)
				}
				continue
			}
			statuses[name] = "ok"
		}

		status := http.StatusOK
		overall := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}
		responses.WriteSuccessStatus(w, status, map[string]any{
			"status":       overall,
			"dependencies": statuses,
		})
	}
}
