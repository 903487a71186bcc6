package resthttp

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sir_venger/charimg_lite/internal/metrics"
	"github.com/sir_venger/charimg_lite/internal/models"
	"github.com/sir_venger/charimg_lite/pkg/assetproto"
	"github.com/sir_venger/charimg_lite/pkg/httperrors"
)

// getImage ищет изображение по имени из query-параметра.
func (s *Server) getImage(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get(assetproto.QueryName)

	asset, err := s.Assets.Lookup(r.Context(), name)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			metrics.RecordLookup("not_found")
			httperrors.WriteMessage(w, http.StatusNotFound, fmt.Sprintf("no image found for %s", name))
			return
		}
		metrics.RecordLookup("rejected")
		httperrors.Write(w, r, err)
		return
	}

	metrics.RecordLookup("found")
	httperrors.WriteJSON(w, http.StatusOK, assetproto.GetImageResponse{
		Success:   true,
		ImagePath: asset.FileName(),
		Message:   fmt.Sprintf("image found for %s", name),
	})
}
