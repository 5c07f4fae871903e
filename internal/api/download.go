package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/Ashivkar123/Image-Resizer/internal/apperror"
	"github.com/Ashivkar123/Image-Resizer/internal/logger"
)

const zipFilename = "images.zip"

// downloadHandler streams a stored output. As an attachment it carries a
// Content-Disposition so browsers save it instead of displaying it.
func downloadHandler(cfg *Config, attachment bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := r.PathValue("filename")

		rc, contentType, err := cfg.Service.Open(r.Context(), filename)
		if err != nil {
			apperror.WriteJSON(w, r, err)
			return
		}
		defer func() { _ = rc.Close() }()

		w.Header().Set("Content-Type", contentType)
		if attachment {
			w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
		} else {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		}

		if _, err := io.Copy(w, rc); err != nil {
			logger.FromContext(r.Context()).Warn("download interrupted", "filename", filename, "error", err)
		}
	}
}

type zipRequest struct {
	Filenames []string `json:"filenames"`
}

func downloadZipHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req zipRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
			apperror.WriteJSON(w, r, apperror.WrapWithMessage(err, "invalid_json", "Request body must be {\"filenames\": [...]}", http.StatusBadRequest))
			return
		}
		if len(req.Filenames) == 0 {
			apperror.WriteJSON(w, r, apperror.WrapWithMessage(nil, "no_files", "No filenames were given", http.StatusBadRequest))
			return
		}

		// Buffer the archive so a storage failure can still become a JSON error.
		var buf bytes.Buffer
		summary, err := cfg.Service.WriteArchive(r.Context(), &buf, req.Filenames)
		if err != nil {
			apperror.WriteJSON(w, r, err)
			return
		}

		logger.FromContext(r.Context()).Info("zip created",
			"requested", len(req.Filenames),
			"written", len(summary.Written),
			"skipped", len(summary.Skipped),
			"bytes", buf.Len(),
		)

		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": zipFilename}))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		_, _ = buf.WriteTo(w)
	}
}

// renderHandler serves an on-the-fly rendition of a stored image described
// by a transform string such as "w_400,h_400,c_fill,f_webp".
func renderHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			apperror.WriteJSON(w, r, err)
			return
		}

		opts, err := ParseTransforms(r.PathValue("transforms"))
		if err == nil {
			err = ValidateTransforms(opts)
		}
		if err != nil {
			apperror.WriteJSON(w, r, apperror.WrapWithMessage(err, "invalid_transform", err.Error(), http.StatusBadRequest))
			return
		}

		if !opts.RequiresProcessing() {
			rec, err := cfg.Service.Get(r.Context(), id)
			if err != nil {
				apperror.WriteJSON(w, r, err)
				return
			}
			http.Redirect(w, r, "/uploads/"+rec.Filename, http.StatusFound)
			return
		}

		art, err := cfg.Service.Render(r.Context(), id, opts.RenderParams())
		if err != nil {
			apperror.WriteJSON(w, r, err)
			return
		}

		w.Header().Set("Content-Type", art.Format.ContentType())
		w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Header().Set("X-Image-Size", fmt.Sprintf("%dx%d", art.Width, art.Height))
		_, _ = w.Write(art.Data)
	}
}
