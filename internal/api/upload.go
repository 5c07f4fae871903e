package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/Ashivkar123/Image-Resizer/internal/apperror"
	"github.com/Ashivkar123/Image-Resizer/internal/logger"
	"github.com/Ashivkar123/Image-Resizer/internal/resizer"
)

const multipartMemory = 32 << 20

// formInt parses an optional integer field. Anything unparsable counts as
// unset.
func formInt(r *http.Request, key string) int {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return 0
}

func formBool(r *http.Request, key string) bool {
	v := strings.ToLower(strings.TrimSpace(r.FormValue(key)))
	if v == "on" || v == "yes" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}

func parseMultipart(w http.ResponseWriter, r *http.Request, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			return apperror.Wrap(err, apperror.ErrFileTooLarge)
		}
		return apperror.WrapWithMessage(err, "invalid_form", "Request must be multipart/form-data", http.StatusBadRequest)
	}
	return nil
}

// readUpload loads one multipart file and decides which MIME type the
// pipeline sees. A missing or generic type is sniffed from the content, and
// only a sniffed type the decoder understands replaces it. Blocked
// extensions are never reported as images.
func readUpload(fh *multipart.FileHeader) (resizer.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return resizer.Upload{}, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return resizer.Upload{}, err
	}

	name := SanitizeFilename(fh.Filename)
	mimeType := normalizeMIMEType(fh.Header.Get("Content-Type"))
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = "application/octet-stream"
		if sniffed := http.DetectContentType(data); IsAllowedMIMEType(sniffed) {
			mimeType = normalizeMIMEType(sniffed)
		}
	}
	if IsBlockedExtension(name) {
		mimeType = "application/octet-stream"
	}

	return resizer.Upload{Name: name, MimeType: mimeType, Data: data}, nil
}

func previewHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseMultipart(w, r, cfg.maxUploadSize()); err != nil {
			apperror.WriteJSON(w, r, err)
			return
		}

		files := r.MultipartForm.File["image"]
		if len(files) == 0 {
			apperror.WriteJSON(w, r, apperror.ErrNoFiles)
			return
		}

		up, err := readUpload(files[0])
		if err != nil {
			apperror.WriteJSON(w, r, apperror.Wrap(err, apperror.ErrBadRequest))
			return
		}
		if !strings.HasPrefix(up.MimeType, "image/") {
			apperror.WriteJSON(w, r, apperror.ErrInvalidFileType)
			return
		}

		preview, err := cfg.Service.Preview(r.Context(), up.Data, resizer.PreviewParams{
			Width:      formInt(r, "width"),
			Height:     formInt(r, "height"),
			LockAspect: formBool(r, "lockAspect"),
			Quality:    formInt(r, "quality"),
			Format:     strings.TrimSpace(r.FormValue("format")),
		})
		if err != nil {
			apperror.WriteJSON(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, preview)
	}
}

type uploadResponse struct {
	Items     []resizer.BatchItem `json:"items"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Skipped   int                 `json:"skipped"`
}

func uploadHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		if err := parseMultipart(w, r, cfg.maxUploadSize()); err != nil {
			apperror.WriteJSON(w, r, err)
			return
		}

		files := r.MultipartForm.File["images"]
		if len(files) == 0 {
			apperror.WriteJSON(w, r, apperror.ErrNoFiles)
			return
		}
		if len(files) > cfg.maxFiles() {
			apperror.WriteJSON(w, r, apperror.WrapWithMessage(nil, apperror.ErrTooManyFiles.Code,
				fmt.Sprintf("At most %d files can be uploaded at once", cfg.maxFiles()), http.StatusBadRequest))
			return
		}

		uploads := make([]resizer.Upload, 0, len(files))
		for _, fh := range files {
			up, err := readUpload(fh)
			if err != nil {
				apperror.WriteJSON(w, r, apperror.Wrap(err, apperror.ErrBadRequest))
				return
			}
			uploads = append(uploads, up)
		}

		params := resizer.ResizeParams{
			Width:      formInt(r, "width"),
			Height:     formInt(r, "height"),
			LockAspect: formBool(r, "lockAspect"),
			Format:     strings.TrimSpace(r.FormValue("format")),
			Quality:    formInt(r, "quality"),
			TargetSize: r.FormValue("targetSize"),
			Preset:     strings.TrimSpace(r.FormValue("preset")),
		}

		items, err := cfg.Service.ResizeBatch(r.Context(), uploads, params)
		if err != nil {
			apperror.WriteJSON(w, r, err)
			return
		}

		resp := uploadResponse{Items: items}
		for _, it := range items {
			switch it.Status {
			case resizer.StatusOK:
				resp.Succeeded++
			case resizer.StatusSkipped:
				resp.Skipped++
			default:
				resp.Failed++
			}
		}

		log.Info("upload processed", "files", len(items), "succeeded", resp.Succeeded, "skipped", resp.Skipped, "failed", resp.Failed)
		writeJSON(w, http.StatusOK, resp)
	}
}
