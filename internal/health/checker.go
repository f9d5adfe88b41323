// Package health reports the readiness of the engine's dependencies: the
// Postgres snapshot store, the Redis broadcast bus, and the NATS event bus.
// Grounded on the sibling mud-platform-backend service's health.checker.go.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

// Pinger is satisfied directly by *pgxpool.Pool; wrap a *redis.Client in
// RedisPinger since its Ping returns a command, not a bare error.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RedisPinger adapts a *redis.Client to Pinger.
type RedisPinger struct {
	Client *redis.Client
}

func (p RedisPinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx).Err()
}

// NATSConn is satisfied by *nats.Conn.
type NATSConn interface {
	Status() nats.Status
}

// HealthChecker checks the engine's external dependencies. A nil dependency
// is skipped rather than reported unhealthy, so a snapshot-less dev run
// with no Postgres configured still reports ok.
type HealthChecker struct {
	db    Pinger
	redis Pinger
	nats  NATSConn
}

// NewHealthChecker builds a checker over the given dependencies. Any of db,
// redis, or nc may be nil.
func NewHealthChecker(db Pinger, redis Pinger, nc NATSConn) *HealthChecker {
	return &HealthChecker{db: db, redis: redis, nats: nc}
}

// Check pings every configured dependency and returns a flat status map
// suitable for direct JSON encoding.
func (hc *HealthChecker) Check(ctx context.Context) map[string]string {
	status := make(map[string]string)
	status["status"] = "ok"

	if hc.db != nil {
		dbCtx, cancel := context.WithTimeout(ctx, time.Second)
		if err := hc.db.Ping(dbCtx); err != nil {
			status["database"] = "unhealthy"
			status["status"] = "degraded"
		} else {
			status["database"] = "healthy"
		}
		cancel()
	}

	if hc.redis != nil {
		redisCtx, cancel := context.WithTimeout(ctx, time.Second)
		if err := hc.redis.Ping(redisCtx); err != nil {
			status["redis"] = "unhealthy"
			status["status"] = "degraded"
		} else {
			status["redis"] = "healthy"
		}
		cancel()
	}

	if hc.nats != nil {
		if hc.nats.Status() != nats.CONNECTED {
			status["nats"] = "unhealthy"
			status["status"] = "degraded"
		} else {
			status["nats"] = "healthy"
		}
	}

	return status
}

// Handler serves Check's result as JSON, returning 503 whenever any
// dependency is unhealthy.
func (hc *HealthChecker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := hc.Check(r.Context())

		statusCode := http.StatusOK
		if status["status"] != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(status)
	}
}
