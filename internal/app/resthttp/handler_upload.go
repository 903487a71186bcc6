package resthttp

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sir_venger/charimg_lite/internal/metrics"
	"github.com/sir_venger/charimg_lite/internal/models"
	"github.com/sir_venger/charimg_lite/pkg/assetproto"
	"github.com/sir_venger/charimg_lite/pkg/httperrors"
)

// upload принимает multipart-поле image и сохраняет его под именем из query-параметра.
func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get(assetproto.QueryName)

	file, err := imagePart(r)
	if err != nil {
		metrics.RecordUpload(uploadResult(err), 0)
		httperrors.Write(w, r, err)
		return
	}

	asset, err := s.Assets.Upload(r.Context(), file, name)
	if err != nil {
		metrics.RecordUpload(uploadResult(err), 0)
		httperrors.Write(w, r, err)
		return
	}

	metrics.RecordUpload("ok", asset.Size)
	httperrors.WriteJSON(w, http.StatusOK, assetproto.UploadResponse{
		Success:  true,
		Message:  fmt.Sprintf("image for %s uploaded successfully", name),
		FileName: asset.FileName(),
		Path:     "/" + url.PathEscape(asset.FileName()),
	})
}

// imagePart читает multipart потоково до поля image. Тело части не буферизуется:
// его читает валидатор. Отсутствие поля — nil без ошибки.
func imagePart(r *http.Request) (*models.FileMeta, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, nil
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read multipart: %w", models.ErrMissingFile, err)
		}

		if part.FormName() == assetproto.FormFieldFile && part.FileName() != "" {
			return &models.FileMeta{
				Filename:    part.FileName(),
				ContentType: part.Header.Get("Content-Type"),
				Content:     part,
			}, nil
		}
	}
}

// uploadResult — метка исхода загрузки для метрик.
func uploadResult(err error) string {
	switch {
	case errors.Is(err, models.ErrMissingFile):
		return "missing_file"
	case errors.Is(err, models.ErrMissingName), errors.Is(err, models.ErrInvalidName):
		return "invalid_name"
	case errors.Is(err, models.ErrInvalidFileType):
		return "invalid_type"
	case errors.Is(err, models.ErrFileTooLarge):
		return "too_large"
	default:
		return "error"
	}
}
