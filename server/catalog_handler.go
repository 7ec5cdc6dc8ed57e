package server

import (
	"net/http"

	"mediagate/logger"

	"github.com/gorilla/mux"
)

// DownloadHandler returns a short-lived signed URL for a stored object
func (h *APIHandler) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	path := mux.Vars(r)["path"]
	logger.Debug("[Download] 请求下载链接", logger.String("path", path))

	u, err := h.catalog.DownloadURL(r.Context(), path)
	if err != nil {
		fail(w, r, "[Download]", err, "Failed to generate download URL")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"downloadUrl": u})
}

// ListMoviesHandler returns every movie, newest first
func (h *APIHandler) ListMoviesHandler(w http.ResponseWriter, r *http.Request) {
	movies, err := h.catalog.ListMovies(r.Context())
	if err != nil {
		fail(w, r, "[Movie]", err, "Failed to fetch movies")
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// CleanupHandler removes rows whose objects are missing from the store
func (h *APIHandler) CleanupHandler(w http.ResponseWriter, r *http.Request) {
	report, err := h.cleanup.CleanupOrphans(r.Context())
	if err != nil {
		fail(w, r, "[Cleanup]", err, "Cleanup failed")
		return
	}
	message := "Cleanup completed successfully"
	if len(report.Errors) > 0 {
		message = "Cleanup completed with errors"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": message,
		"report":  report,
	})
}
