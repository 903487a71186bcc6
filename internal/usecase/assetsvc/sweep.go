package assetsvc

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/sir_venger/charimg_lite/internal/logging"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// RunSweeper периодически чистит spool-каталог до отмены ctx.
func RunSweeper(ctx context.Context, fsys afero.Fs, dir string, ttl, every time.Duration) error {
	if every <= 0 || ttl <= 0 {
		return nil
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed, err := SweepOnce(fsys, dir, ttl)
			if err != nil {
				logging.L().Warn("spool sweep failed", zap.String("dir", dir), zap.Error(err))
				continue
			}
			if removed > 0 {
				logging.L().Info("spool sweep", zap.Int("removed", removed))
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// SweepOnce удаляет spool-файлы брошенных загрузок старше ttl.
func SweepOnce(fsys afero.Fs, dir string, ttl time.Duration) (int, error) {
	now := time.Now()
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !isSpoolName(e.Name()) {
			continue
		}
		if now.Sub(e.ModTime()) < ttl {
			continue
		}

		if err := fsys.Remove(filepath.Join(dir, e.Name())); err == nil {
			removed++
		}
	}

	return removed, nil
}

func isSpoolName(name string) bool {
	return strings.HasPrefix(name, spoolPrefix) && strings.HasSuffix(name, spoolSuffix)
}
