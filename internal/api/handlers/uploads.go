package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/titorm/shop-wise-sub000/internal/api/middleware"
	"github.com/titorm/shop-wise-sub000/internal/logger"
	"github.com/titorm/shop-wise-sub000/internal/storage"
)

// maxUploadBytes caps a single receipt upload.
const maxUploadBytes = 20 << 20

// Uploader stores receipt files. *storage.GCSStore implements it.
type Uploader interface {
	Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error)
}

// UploadsHandler streams receipt files into the bucket.
type UploadsHandler struct {
	uploader Uploader
	now      func() time.Time
}

// NewUploadsHandler creates a new uploads handler. uploader may be nil when
// no bucket is configured; uploads are then rejected with 503.
func NewUploadsHandler(uploader Uploader) *UploadsHandler {
	return &UploadsHandler{uploader: uploader, now: time.Now}
}

// Upload handles POST /api/uploads?filename=...&household=...
// The request body is the raw file.
func (h *UploadsHandler) Upload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	if h.uploader == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Uploads are disabled: no bucket configured")
		return
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		middleware.WriteError(w, http.StatusBadRequest, "filename is required")
		return
	}
	household := r.URL.Query().Get("household")

	contentType := r.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = storage.ContentTypeFor(filename)
	}

	objectName := storage.ObjectName(household, filename, h.now())
	gcsURI, err := h.uploader.Upload(ctx, objectName, contentType, http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		log.Error().Err(err).Str("object", objectName).Msg("Failed to upload receipt")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	log.Info().Str("gcs_uri", gcsURI).Str("household_id", household).Msg("Receipt uploaded")

	middleware.WriteJSON(w, http.StatusCreated, map[string]string{
		"gcsUri":      gcsURI,
		"contentType": contentType,
	})
}
