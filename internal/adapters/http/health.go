package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wiedertv/BizAway-code-challenge/internal/core/domain"
)

const tripsAPIProbeName = "trips_api"

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": version,
		})
	}
}

// ReadyHandler checks the configured infrastructure: database, NATS and the
// rate-limit store. Components that are not configured do not fail readiness.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		checks, ok := readinessChecks(ctx, deps)
		return writeChecks(c, checks, ok)
	}
}

// DetailedHealthHandler adds the upstream trips provider probe to the
// readiness checks. The probe is informational; it never touches search.
func DetailedHealthHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 6*time.Second)
		defer cancel()

		checks, ok := readinessChecks(ctx, deps)
		if deps.TripsProbe != nil {
			res := deps.TripsProbe.Check(ctx, tripsAPIProbeName)
			checks[tripsAPIProbeName] = res
			if res.Status != domain.ProbeUp {
				ok = false
			}
		} else {
			checks[tripsAPIProbeName] = notConfigured(tripsAPIProbeName)
		}
		return writeChecks(c, checks, ok)
	}
}

func readinessChecks(ctx context.Context, deps *Dependencies) (map[string]domain.ProbeResult, bool) {
	checks := make(map[string]domain.ProbeResult)
	allOK := true

	if deps.DB != nil {
		checks["database"] = probe("database", deps.DB.Ping(ctx))
	} else {
		checks["database"] = notConfigured("database")
	}

	if deps.Events != nil {
		if deps.Events.Connected() {
			checks["nats"] = probe("nats", nil)
		} else {
			checks["nats"] = domain.ProbeResult{Name: "nats", Status: domain.ProbeDown,
				Detail: map[string]any{"error": "disconnected"}}
		}
	} else {
		checks["nats"] = notConfigured("nats")
	}

	if deps.Limiter != nil {
		checks["cache"] = probe("cache", deps.Limiter.Ping(ctx))
	} else {
		checks["cache"] = notConfigured("cache")
	}

	for _, r := range checks {
		if r.Status == domain.ProbeDown {
			allOK = false
		}
	}
	return checks, allOK
}

func probe(name string, err error) domain.ProbeResult {
	if err != nil {
		return domain.ProbeResult{Name: name, Status: domain.ProbeDown, Detail: map[string]any{"error": err.Error()}}
	}
	return domain.ProbeResult{Name: name, Status: domain.ProbeUp}
}

func notConfigured(name string) domain.ProbeResult {
	return domain.ProbeResult{Name: name, Status: domain.ProbeUp, Detail: map[string]any{"configured": false}}
}

func writeChecks(c *fiber.Ctx, checks map[string]domain.ProbeResult, ok bool) error {
	status := "ready"
	code := fiber.StatusOK
	if !ok {
		status = "not ready"
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"checks": checks,
	})
}
