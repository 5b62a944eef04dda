package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/themagicbeanstock/backend-go/internal/ingest"
	"github.com/themagicbeanstock/backend-go/internal/service"
)

// FolderResolver turns a slash separated folder path into a folder id.
type FolderResolver interface {
	FindFolderByPath(ctx context.Context, path string) (string, error)
}

type Handler struct {
	source        Source
	folders       FolderResolver
	ingestService *IngestService
	defaultFolder string
}

func NewHandler(source Source, folders FolderResolver, ingestService *IngestService, defaultFolder string) *Handler {
	return &Handler{
		source:        source,
		folders:       folders,
		ingestService: ingestService,
		defaultFolder: defaultFolder,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/drive/files", h.ListFiles).Methods("GET")
	router.HandleFunc("/api/drive/files/download", h.DownloadFile).Methods("GET")
	router.HandleFunc("/api/drive/accounts/{account}/ingest", h.IngestFile).Methods("POST")
	router.HandleFunc("/api/drive/accounts/{account}/sync", h.SyncFolder).Methods("POST")
}

func (h *Handler) resolveFolder(r *http.Request) (string, error) {
	query := r.URL.Query()
	if path := query.Get("path"); path != "" && h.folders != nil {
		return h.folders.FindFolderByPath(r.Context(), path)
	}
	if id := query.Get("folderId"); id != "" {
		return id, nil
	}
	return h.defaultFolder, nil
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	folderID, err := h.resolveFolder(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "folder not found", err)
		return
	}

	files, err := h.source.ListFiles(r.Context(), folderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list files", err)
		return
	}
	if files == nil {
		files = []*File{}
	}

	writeJSON(w, http.StatusOK, files)
}

func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("fileId")
	if fileID == "" {
		http.Error(w, "fileId parameter is required", http.StatusBadRequest)
		return
	}

	f, err := h.source.GetFile(r.Context(), fileID)
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found", err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	if f.MimeType != "" {
		w.Header().Set("Content-Type", f.MimeType)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))

	if err := h.source.DownloadFile(r.Context(), fileID, w); err != nil {
		log.Error().Err(err).Str("file_id", fileID).Msg("drive: download failed")
	}
}

func (h *Handler) IngestFile(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	fileID := query.Get("fileId")
	if fileID == "" {
		http.Error(w, "fileId parameter is required", http.StatusBadRequest)
		return
	}

	result, err := h.ingestService.IngestFile(r.Context(), mux.Vars(r)["account"], fileID, query.Get("kind"), query.Get("date"))
	if err != nil {
		writeError(w, statusFor(err), "ingestion failed", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) SyncFolder(w http.ResponseWriter, r *http.Request) {
	folderID, err := h.resolveFolder(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "folder not found", err)
		return
	}

	results, err := h.ingestService.IngestFolder(r.Context(), mux.Vars(r)["account"], folderID, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, statusFor(err), "folder sync failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"folder_id": folderID,
		"files":     results,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidAccount),
		errors.Is(err, ingest.ErrUnknownKind),
		errors.Is(err, ingest.ErrUnsupportedFile),
		errors.Is(err, ingest.ErrForecastDateless),
		errors.Is(err, ingest.ErrMalformed):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("drive: failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	writeJSON(w, status, map[string]string{
		"error":   message,
		"details": err.Error(),
	})
}
