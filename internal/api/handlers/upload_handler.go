package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/themagicbeanstock/backend-go/internal/domain"
	"github.com/themagicbeanstock/backend-go/internal/ingest"
	"github.com/themagicbeanstock/backend-go/internal/service"
)

type UploadHandler struct {
	ingestService *service.IngestService
	uploadDir     string
}

func NewUploadHandler(ingestService *service.IngestService, uploadDir string) *UploadHandler {
	if uploadDir == "" {
		uploadDir = "data/uploads"
	}
	return &UploadHandler{ingestService: ingestService, uploadDir: uploadDir}
}

// Upload ingests a single multipart "file" of the kind named in the path.
// Forecast map uploads take their date from the "date" form field.
func (h *UploadHandler) Upload(c *gin.Context) {
	kind, err := ingest.ParseKind(c.Param("kind"))
	if err != nil {
		respondError(c, "invalid upload kind", err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided", "details": err.Error()})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file", "details": err.Error()})
		return
	}
	defer f.Close()

	result, err := h.ingestService.Ingest(
		c.Request.Context(),
		c.Param("account"),
		kind,
		fileHeader.Filename,
		f,
		strings.TrimSpace(c.PostForm("date")),
	)
	if err != nil {
		respondError(c, "failed to ingest upload", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UploadBatch accepts several "files" at once, inferring each kind from its
// file name, and ingests them in the background.
func (h *UploadHandler) UploadBatch(c *gin.Context) {
	account := strings.TrimSpace(c.Param("account"))
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	batchDir := filepath.Join(h.uploadDir, uuid.NewString())
	uploadedFiles := make([]*domain.UploadedFile, 0, len(files))
	rejected := make([]string, 0)
	for i, file := range files {
		if _, ok := ingest.KindForFilename(file.Filename); !ok {
			rejected = append(rejected, file.Filename)
			continue
		}

		// Index prefix keeps same-named files in one batch apart on disk.
		filePath := filepath.Join(batchDir, fmt.Sprintf("%03d_%s", i, filepath.Base(file.Filename)))
		if err := c.SaveUploadedFile(file, filePath); err != nil {
			log.Error().Err(err).Str("filename", file.Filename).Msg("failed to save uploaded file")
			continue
		}

		uploadedFiles = append(uploadedFiles, &domain.UploadedFile{
			Filename: file.Filename,
			Path:     filePath,
			Size:     file.Size,
		})
	}

	if len(uploadedFiles) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no valid files to process", "rejected": rejected})
		return
	}

	date := strings.TrimSpace(c.PostForm("date"))
	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		defer os.RemoveAll(batchDir)
		results, err := h.ingestService.IngestFiles(ctx, account, uploadedFiles, date)
		if err != nil {
			log.Error().Err(err).Str("account", account).Msg("failed to process uploaded files")
			return
		}
		log.Info().Str("account", account).Int("files", len(results)).Msg("batch upload processed")
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message":  fmt.Sprintf("%d files are being processed", len(uploadedFiles)),
		"count":    len(uploadedFiles),
		"rejected": rejected,
	})
}

// GetDatasets reports which datasets the account has uploaded.
func (h *UploadHandler) GetDatasets(c *gin.Context) {
	status, err := h.ingestService.DatasetStatus(c.Request.Context(), c.Param("account"))
	if err != nil {
		respondError(c, "failed to fetch dataset status", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"datasets": status})
}
