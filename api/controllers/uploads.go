package controllers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/acervohq/acervo-backend/api/responses"
	"github.com/acervohq/acervo-backend/pkg/config"
	pkgerrors "github.com/acervohq/acervo-backend/pkg/errors"
	"github.com/acervohq/acervo-backend/pkg/logger"
)

var allowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// UploadPhoto stores a profile or item photo on local disk. The content type
// is sniffed from the bytes, never trusted from the request.
func UploadPhoto(cfg config.UploadConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes())
		if err := r.ParseMultipartForm(cfg.MaxUploadBytes()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "arquivo excede o tamanho máximo"))
			return
		}

		file, _, err := r.FormFile("arquivo")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "campo de arquivo ausente"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read upload"))
			return
		}

		detected := mimetype.Detect(data)
		if !allowedUploadTypes[detected.String()] {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "tipo de arquivo não permitido").
					WithDetails(map[string]any{"detected": detected.String()}))
			return
		}

		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create upload dir"))
			return
		}

		name := fmt.Sprintf("%s%s", uuid.NewString(), detected.Extension())
		path := filepath.Join(cfg.Dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write upload"))
			return
		}

		url := strings.TrimRight(cfg.BaseURL, "/") + "/" + name
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{
			"url":         url,
			"contentType": detected.String(),
		})
	}
}
