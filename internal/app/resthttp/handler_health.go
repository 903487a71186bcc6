package resthttp

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/sir_venger/charimg_lite/internal/usecase/assetsvc"
	"github.com/sir_venger/charimg_lite/pkg/assetproto"
	"github.com/sir_venger/charimg_lite/pkg/httperrors"
	"github.com/spf13/afero"
)

// health возвращает число изображений и их суммарный размер в корне хранилища.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	stats := assetproto.HealthResponse{OK: true}

	// Корень создаётся лениво, поэтому его отсутствие — нормальное пустое состояние.
	err := afero.Walk(s.fs, s.Cfg.StorageRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != s.Cfg.StorageRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if !isStoredImage(info.Name()) {
			return nil
		}

		stats.Assets++
		stats.TotalBytes += info.Size()
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		httperrors.Write(w, r, err)
		return
	}

	httperrors.WriteJSON(w, http.StatusOK, stats)
}

func isStoredImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, probe := range assetsvc.ProbeOrder {
		if ext == probe {
			return true
		}
	}
	return false
}
