package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/oddstable/internal/middleware"
	"github.com/deppfellow/oddstable/internal/server"
)

// HealthHandler serves GET /status for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth probes the configured dependencies. It answers 200 when every
// check passes and 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	obs := h.server.Config.Observability
	checks := make(map[string]interface{})
	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	isHealthy := true
	if obs.HealthChecks.Enabled && h.wants("bigtable") {
		if !h.checkBigtable(c.Request().Context(), checks) {
			isHealthy = false
		}
	}

	if !isHealthy {
		response["status"] = "unhealthy"
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("health check failed")
		h.recordFailure("overall", "overall_unhealthy", time.Since(start), nil)
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().Dur("total_duration", time.Since(start)).Msg("health check passed")
	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) wants(name string) bool {
	for _, check := range h.server.Config.Observability.HealthChecks.Checks {
		if check == name {
			return true
		}
	}
	return false
}

func (h *HealthHandler) checkBigtable(parent context.Context, checks map[string]interface{}) bool {
	ctx, cancel := context.WithTimeout(parent, h.server.Config.Observability.HealthChecks.Timeout)
	defer cancel()

	started := time.Now()
	if err := h.server.DB.Ping(ctx); err != nil {
		checks["bigtable"] = map[string]interface{}{
			"status":        "unhealthy",
			"table":         h.server.DB.TableName(),
			"response_time": time.Since(started).String(),
			"error":         err.Error(),
		}
		h.server.Logger.Error().
			Err(err).
			Dur("response_time", time.Since(started)).
			Msg("bigtable health check failed")
		h.recordFailure("bigtable", "bigtable_unhealthy", time.Since(started), err)
		return false
	}

	checks["bigtable"] = map[string]interface{}{
		"status":        "healthy",
		"table":         h.server.DB.TableName(),
		"response_time": time.Since(started).String(),
	}
	return true
}

func (h *HealthHandler) recordFailure(check, errorType string, took time.Duration, err error) {
	if h.server.LoggerService == nil || h.server.LoggerService.GetApplication() == nil {
		return
	}

	event := map[string]interface{}{
		"check_type":       check,
		"operation":        "health_check",
		"error_type":       errorType,
		"response_time_ms": took.Milliseconds(),
	}
	if err != nil {
		event["error_message"] = err.Error()
	}
	h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", event)
}
