package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"mediagate/core/auth"
	"mediagate/core/catalog"
	"mediagate/core/cleanup"
	"mediagate/core/ingest"
	"mediagate/logger"
	"mediagate/storage"
)

const defaultMaxTracks = 10

// HealthCheck reports whether one backing service is reachable.
type HealthCheck func(ctx context.Context) error

// APIHandler 处理所有API请求
type APIHandler struct {
	auth    *auth.Service
	ingest  *ingest.Service
	catalog *catalog.Service
	cleanup *cleanup.Service
	checks  map[string]HealthCheck

	maxUploadMemory int64
	maxTracks       int
}

// Options tune request limits.
type Options struct {
	MaxUploadMemory int64
	MaxTracks       int
	HealthChecks    map[string]HealthCheck
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(
	authSvc *auth.Service,
	ingestSvc *ingest.Service,
	catalogSvc *catalog.Service,
	cleanupSvc *cleanup.Service,
	opts Options,
) *APIHandler {
	if opts.MaxUploadMemory <= 0 {
		opts.MaxUploadMemory = 32 << 20
	}
	if opts.MaxTracks <= 0 {
		opts.MaxTracks = defaultMaxTracks
	}
	return &APIHandler{
		auth:            authSvc,
		ingest:          ingestSvc,
		catalog:         catalogSvc,
		cleanup:         cleanupSvc,
		checks:          opts.HealthChecks,
		maxUploadMemory: opts.MaxUploadMemory,
		maxTracks:       opts.MaxTracks,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("[HTTP] encode response failed", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps a service error to its HTTP status and client message.
// fallback is used for anything unclassified.
func statusFor(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, auth.ErrInvalidCode):
		return http.StatusUnauthorized, "Invalid code"
	case errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "File not found"
	default:
		return http.StatusInternalServerError, fallback
	}
}

// fail writes the mapped error and logs server-side failures with their cause.
func fail(w http.ResponseWriter, r *http.Request, tag string, err error, fallback string) {
	status, msg := statusFor(err, fallback)
	if status >= http.StatusInternalServerError {
		logger.Error(tag+" request failed",
			logger.String("path", r.URL.Path),
			logger.String("requestId", RequestIDFromContext(r.Context())),
			logger.ErrorField(err))
	} else {
		logger.Warn(tag+" request rejected",
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.ErrorField(err))
	}
	writeError(w, status, msg)
}

// HealthHandler reports the state of every registered backing service.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	result := map[string]string{}
	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			logger.Warn("[Health] check failed", logger.String("check", name), logger.ErrorField(err))
			result[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		result[name] = "ok"
	}
	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	writeJSON(w, status, map[string]interface{}{"status": overall, "checks": result})
}
