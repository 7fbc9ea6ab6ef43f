package http

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const maxUploadSize = 10 << 20 // 10 MiB

// UploadHandler stores product images on the local filesystem and
// returns their public URL.
type UploadHandler struct {
	dir     string
	baseURL string
}

func NewUploadHandler(dir, baseURL string) *UploadHandler {
	return &UploadHandler{dir: dir, baseURL: baseURL}
}

func (h *UploadHandler) RegisterRoutes(router chi.Router) {
	router.Post("/upload", h.handleUploadImage)
}

func (h *UploadHandler) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	ext := filepath.Ext(header.Filename)
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		respondWithError(w, http.StatusBadRequest, "Only .jpg, .jpeg, and .png files are allowed")
		return
	}

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		log.Error().Err(err).Str("dir", h.dir).Msg("Failed to create uploads directory")
		respondWithError(w, http.StatusInternalServerError, "Could not save file")
		return
	}

	filename := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)
	destination := filepath.Join(h.dir, filename)

	dst, err := os.Create(destination)
	if err != nil {
		log.Error().Err(err).Str("path", destination).Msg("Failed to create upload file")
		respondWithError(w, http.StatusInternalServerError, "Could not save file")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		log.Error().Err(err).Str("path", destination).Msg("Failed to write upload file")
		respondWithError(w, http.StatusInternalServerError, "Could not save file")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"url": h.baseURL + "/" + filename})
}
