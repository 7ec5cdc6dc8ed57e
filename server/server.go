package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"mediagate/logger"

	"github.com/gorilla/mux"
)

// NewRouter wires every route onto a gorilla/mux router.
func NewRouter(h *APIHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(requestIDMiddleware, accessLogMiddleware, corsMiddleware)

	// 认证
	router.HandleFunc("/admin/login", h.LoginHandler).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/verify-code", h.VerifyCodeHandler).Methods(http.MethodPost, http.MethodOptions)

	// 目录
	router.HandleFunc("/albums", h.ListAlbumsHandler).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/movies", h.ListMoviesHandler).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/download/{path:.*}", h.DownloadHandler).Methods(http.MethodGet, http.MethodOptions)

	// 管理员
	router.HandleFunc("/admin/albums", h.AdminMiddleware(h.CreateAlbumHandler)).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/admin/cleanup-files", h.AdminMiddleware(h.CleanupHandler)).Methods(http.MethodPost, http.MethodOptions)

	router.HandleFunc("/healthz", h.HealthHandler).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	return router
}

// Run serves handler on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	// 设置服务器超时
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("[Server] listening", logger.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("[Server] shutting down")
	// 创建一个5秒超时的上下文
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("[Server] stopped")
	return nil
}
