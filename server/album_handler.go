package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"mediagate/core/ingest"
	"mediagate/logger"
)

// formFile adapts a multipart file header to ingest.File. The handle is
// opened lazily so only one upload is open at a time.
func formFile(fh *multipart.FileHeader) ingest.File {
	return ingest.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open:        func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// CreateAlbumHandler handles album uploads.
// Expected multipart form fields:
// - title: album title
// - cover_image: cover art image
// - tracks: audio files, in playback order
func (h *APIHandler) CreateAlbumHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadMemory); err != nil {
		logger.Warn("[Album] 解析表单失败", logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, "Failed to parse multipart form")
		return
	}
	// 清理临时文件
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logger.Warn("[Album] 清理临时文件失败", logger.ErrorField(err))
		}
	}()

	title := strings.TrimSpace(r.FormValue("title"))
	covers := r.MultipartForm.File["cover_image"]
	trackHeaders := r.MultipartForm.File["tracks"]

	if len(covers) == 0 {
		writeError(w, http.StatusBadRequest, "Cover image is required")
		return
	}
	if len(trackHeaders) > h.maxTracks {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("At most %d tracks per album", h.maxTracks))
		return
	}

	cover := formFile(covers[0])
	tracks := make([]ingest.File, 0, len(trackHeaders))
	for _, fh := range trackHeaders {
		tracks = append(tracks, formFile(fh))
	}

	logger.Info("[Album] 开始创建专辑",
		logger.String("title", title),
		logger.Int("tracks", len(tracks)),
		logger.String("requestId", RequestIDFromContext(r.Context())))

	res, err := h.ingest.CreateAlbum(r.Context(), title, &cover, tracks)
	if err != nil {
		if errors.Is(err, ingest.ErrMissingTitle) || errors.Is(err, ingest.ErrMissingCover) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		fail(w, r, "[Album]", err, "Failed to create album")
		return
	}

	message := "Album created successfully"
	if res.Failed > 0 {
		message = fmt.Sprintf("Album created with %d of %d tracks", res.Succeeded, len(tracks))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"albumId": res.AlbumID,
		"message": message,
		"tracks":  res.Tracks,
	})
}

// ListAlbumsHandler returns every album with its tracks
func (h *APIHandler) ListAlbumsHandler(w http.ResponseWriter, r *http.Request) {
	albums, err := h.catalog.ListAlbums(r.Context())
	if err != nil {
		fail(w, r, "[Album]", err, "Failed to fetch albums")
		return
	}
	writeJSON(w, http.StatusOK, albums)
}
