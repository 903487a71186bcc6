package assetsvc

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/sir_venger/charimg_lite/internal/models"
	"github.com/spf13/afero"
)

// Writer записывает проверенные изображения в корень хранилища.
//
// Запись идёт без блокировок: при параллельной загрузке одного и того же имени
// выигрывает последняя завершившаяся запись.
type Writer struct {
	fs         afero.Fs
	root       string
	pruneStale bool
}

// NewWriter создаёт writer. При pruneStale после успешной записи удаляются файлы
// того же имени с другими расширениями из allow-list.
func NewWriter(fsys afero.Fs, root string, pruneStale bool) *Writer {
	return &Writer{
		fs:         fsys,
		root:       root,
		pruneStale: pruneStale,
	}
}

// Store пишет содержимое в {root}/{name}{ext}, перезаписывая существующий файл.
func (w *Writer) Store(name, ext string, r io.Reader) (models.Asset, error) {
	if err := w.fs.MkdirAll(w.root, 0o755); err != nil {
		return models.Asset{}, fmt.Errorf("%w: create storage root: %w", models.ErrStorageFailure, err)
	}

	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	asset := models.Asset{Name: name, Extension: ext}
	asset.Path = filepath.Join(w.root, asset.FileName())

	f, err := w.fs.Create(asset.Path)
	if err != nil {
		return models.Asset{}, fmt.Errorf("%w: create %s: %w", models.ErrStorageFailure, asset.FileName(), err)
	}

	if asset.Size, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		return models.Asset{}, fmt.Errorf("%w: write %s: %w", models.ErrStorageFailure, asset.FileName(), err)
	}
	if err = f.Close(); err != nil {
		return models.Asset{}, fmt.Errorf("%w: close %s: %w", models.ErrStorageFailure, asset.FileName(), err)
	}

	if w.pruneStale {
		if err = w.pruneSiblings(asset); err != nil {
			return asset, err
		}
	}

	return asset, nil
}

// pruneSiblings удаляет {name}{otherExt} для всех остальных расширений.
func (w *Writer) pruneSiblings(asset models.Asset) error {
	for _, ext := range ProbeOrder {
		if ext == asset.Extension {
			continue
		}

		path := filepath.Join(w.root, asset.Name+ext)
		if err := w.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: prune %s: %w", models.ErrStorageFailure, asset.Name+ext, err)
		}
	}

	return nil
}
