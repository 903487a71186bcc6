package assetsvc

import (
	"path/filepath"

	"github.com/sir_venger/charimg_lite/internal/models"
	"github.com/spf13/afero"
)

// ProbeOrder — фиксированный порядок перебора расширений при поиске.
// Если для имени лежит несколько файлов, виден только первый по этому порядку.
var ProbeOrder = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// Resolver ищет сохранённое изображение по каноническому имени.
type Resolver struct {
	fs   afero.Fs
	root string
}

// NewResolver создаёт резолвер поверх корня хранилища.
func NewResolver(fsys afero.Fs, root string) *Resolver {
	return &Resolver{fs: fsys, root: root}
}

// Resolve возвращает первый существующий файл {root}/{name}{ext} в порядке ProbeOrder.
func (r *Resolver) Resolve(name string) (models.Asset, error) {
	for _, ext := range ProbeOrder {
		path := filepath.Join(r.root, name+ext)

		info, err := r.fs.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		return models.Asset{
			Name:      name,
			Extension: ext,
			Path:      path,
		}, nil
	}

	return models.Asset{}, models.ErrNotFound
}
