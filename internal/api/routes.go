package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Ashivkar123/Image-Resizer/internal/apperror"
	"github.com/Ashivkar123/Image-Resizer/internal/health"
	"github.com/Ashivkar123/Image-Resizer/internal/logger"
	"github.com/Ashivkar123/Image-Resizer/internal/resizer"
)

const (
	defaultMaxUploadSize = 100 * 1000 * 1000
	defaultMaxFiles      = 12
	maxJSONBody          = 1 << 20
)

type Config struct {
	Service        *resizer.Service
	Health         *health.Checker
	MaxUploadSize  int64
	MaxFiles       int
	Limiter        Limiter
	AllowedOrigins []string
	DevMode        bool
}

func (c *Config) maxUploadSize() int64 {
	if c.MaxUploadSize > 0 {
		return c.MaxUploadSize
	}
	return defaultMaxUploadSize
}

func (c *Config) maxFiles() int {
	if c.MaxFiles > 0 {
		return c.MaxFiles
	}
	return defaultMaxFiles
}

// NewRouter mounts the image API under /api/, stored outputs under
// /uploads/ and the health endpoints at the root. Rate limiting and CORS
// apply to /api/ only.
func NewRouter(cfg *Config) http.Handler {
	mux := http.NewServeMux()

	checker := cfg.Health
	if checker == nil {
		checker = health.NewChecker()
	}
	mux.HandleFunc("GET /health", health.HealthHandler(checker))
	mux.HandleFunc("GET /health/live", health.LivenessHandler())
	mux.HandleFunc("GET /health/ready", health.ReadinessHandler(checker))

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("POST /api/preview", previewHandler(cfg))
	apiMux.HandleFunc("POST /api/upload", uploadHandler(cfg))
	apiMux.HandleFunc("GET /api/images", listImagesHandler(cfg))
	apiMux.HandleFunc("GET /api/images/{id}", getImageHandler(cfg))
	apiMux.HandleFunc("DELETE /api/images/{id}", deleteImageHandler(cfg))
	apiMux.HandleFunc("PUT /api/images/{id}/edit", editImageHandler(cfg))
	apiMux.HandleFunc("GET /api/images/{id}/render/{transforms}", renderHandler(cfg))
	apiMux.HandleFunc("GET /api/download/{filename}", downloadHandler(cfg, true))
	apiMux.HandleFunc("POST /api/download-zip", downloadZipHandler(cfg))

	mux.Handle("/api/", RateLimit(cfg.Limiter)(CORSWithOrigins(cfg.AllowedOrigins, cfg.DevMode)(apiMux)))
	mux.HandleFunc("GET /uploads/{filename}", downloadHandler(cfg, false))

	return mux
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.WrapWithMessage(err, "invalid_id", "Image id must be a positive integer", http.StatusBadRequest)
	}
	return id, nil
}

func listImagesHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := cfg.Service.List(r.Context())
		if err != nil {
			apperror.WriteJSON(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"images": recs,
			"total":  len(recs),
		})
	}
}

func getImageHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			apperror.WriteJSON(w, r, err)
			return
		}

		rec, err := cfg.Service.Get(r.Context(), id)
		if err != nil {
			apperror.WriteJSON(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func deleteImageHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			apperror.WriteJSON(w, r, err)
			return
		}

		if err := cfg.Service.Delete(r.Context(), id); err != nil {
			apperror.WriteJSON(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func editImageHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			apperror.WriteJSON(w, r, err)
			return
		}

		var p resizer.EditParams
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&p); err != nil {
			apperror.WriteJSON(w, r, apperror.WrapWithMessage(err, "invalid_json", "Request body must be a JSON edit description", http.StatusBadRequest))
			return
		}

		rec, err := cfg.Service.EditExisting(r.Context(), id, p)
		if err != nil {
			apperror.WriteJSON(w, r, err)
			return
		}

		logger.FromContext(r.Context()).Debug("edit stored", "parent_id", id, "id", rec.ID)
		writeJSON(w, http.StatusCreated, rec)
	}
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
