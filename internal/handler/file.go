package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/cfmconsole/cfm/internal/apperr"
	"github.com/cfmconsole/cfm/internal/model"
	"github.com/cfmconsole/cfm/internal/respond"
	"github.com/cfmconsole/cfm/internal/service"
)

// Parts above this size are spooled to temporary files while parsing.
const multipartMemory = 32 << 20

type fileHandler struct {
	fileService   *service.FileService
	presignExpiry time.Duration
}

func NewFileHandler(fileService *service.FileService, presignExpiry time.Duration) *fileHandler {
	return &fileHandler{
		fileService:   fileService,
		presignExpiry: presignExpiry,
	}
}

type uploadResponse struct {
	OK            bool                    `json:"ok"`
	UploadedFiles []service.CreatedEntry  `json:"uploadedFiles"`
	Errors        []service.UploadFailure `json:"errors,omitempty"`
	Error         *respond.ErrorBody      `json:"error,omitempty"`
}

// Upload accepts a multipart form with one or more file parts.
func (h *fileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	err := r.ParseMultipartForm(multipartMemory)
	if err != nil {
		respond.Error(w, r, apperr.Validation("malformed multipart request"))
		return
	}
	defer func() {
		removeErr := r.MultipartForm.RemoveAll()
		if removeErr != nil {
			slog.Warn("failed to remove multipart temp files", "error", removeErr)
		}
	}()

	uploaderID := actorID(r, r.FormValue("uploaderId"), r.FormValue("uploaderUserId"))
	if uploaderID == "" {
		respond.Error(w, r, apperr.Validation("uploader id is required"))
		return
	}

	headers := slices.Concat(r.MultipartForm.File["file"], r.MultipartForm.File["files"])
	items := make([]service.UploadItem, 0, len(headers))
	for _, header := range headers {
		part, err := header.Open()
		if err != nil {
			respond.Error(w, r, apperr.Validation("malformed multipart request"))
			return
		}
		defer closePart(part)
		items = append(items, service.UploadItem{
			Name:         header.Filename,
			DeclaredSize: header.Size,
			Body:         part,
		})
	}

	result, err := h.fileService.Upload(r.Context(), service.UploadRequest{
		Path:       r.FormValue("path"),
		UploaderID: uploaderID,
		Items:      items,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := uploadResponse{
		OK:            len(result.Failures) == 0,
		UploadedFiles: result.Created,
		Errors:        result.Failures,
	}
	status := http.StatusOK
	if len(result.Created) == 0 && len(result.Failures) > 0 {
		first := result.Failures[0]
		status = apperr.HTTPStatus(first.Kind)
		resp.Error = &respond.ErrorBody{Kind: first.Kind, Message: first.Message}
		if status >= http.StatusInternalServerError {
			slog.Error("upload failed", "error", first.Err, "name", first.Name)
		}
	}
	respond.JSON(w, status, resp)
}

func closePart(part multipart.File) {
	closeErr := part.Close()
	if closeErr != nil {
		slog.Warn("failed to close upload part", "error", closeErr)
	}
}

type listResponse struct {
	OK    bool             `json:"ok"`
	Files []model.FileView `json:"files"`
}

// List returns the direct children of ?path=, the root by default.
func (h *fileHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.fileService.List(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, listResponse{OK: true, Files: views})
}

type createDirectoryRequest struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	UploaderID string `json:"uploaderId"`
}

func (h *fileHandler) CreateDirectory(w http.ResponseWriter, r *http.Request) {
	var req createDirectoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	_, err := h.fileService.CreateDirectory(r.Context(), req.Path, req.Name, actorID(r, req.UploaderID))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, okResponse{OK: true})
}

// Download redirects to a signed URL when the blob store offers one and
// streams the contents otherwise.
func (h *fileHandler) Download(w http.ResponseWriter, r *http.Request) {
	file, err := h.fileService.ByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if file.IsDirectory() {
		respond.Error(w, r, apperr.Validation("directories cannot be downloaded"))
		return
	}

	url, ok, err := h.fileService.SignedURL(r.Context(), file, h.presignExpiry)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if ok {
		http.Redirect(w, r, url, http.StatusFound)
		return
	}

	_, rc, err := h.fileService.Open(r.Context(), file.ID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	defer func() {
		closeErr := rc.Close()
		if closeErr != nil {
			slog.Warn("failed to close blob", "error", closeErr, "file_id", file.ID)
		}
	}()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil && !errors.Is(err, r.Context().Err()) {
		slog.Warn("download interrupted", "error", err, "file_id", file.ID)
	}
}
