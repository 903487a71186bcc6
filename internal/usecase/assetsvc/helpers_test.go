package assetsvc

import (
	"bytes"
	"testing"

	"github.com/sir_venger/charimg_lite/internal/models"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const (
	testRoot  = "/srv/public"
	testSpool = "/srv/spool"
)

// pngHeader — сигнатура PNG, достаточная для mimetype.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func newTestService(fsys afero.Fs, prune bool) *Assets {
	return New(Deps{
		Validator: NewValidator(fsys, testSpool, MaxUploadSize),
		Writer:    NewWriter(fsys, testRoot, prune),
		Resolver:  NewResolver(fsys, testRoot),
	})
}

func fileMeta(filename string, content []byte) *models.FileMeta {
	return &models.FileMeta{
		Filename:    filename,
		ContentType: "image/png",
		Content:     bytes.NewReader(content),
	}
}

func readFile(t *testing.T, fsys afero.Fs, path string) []byte {
	t.Helper()
	b, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	return b
}

func spoolEntries(t *testing.T, fsys afero.Fs) int {
	t.Helper()
	entries, err := afero.ReadDir(fsys, testSpool)
	if err != nil {
		return 0
	}
	return len(entries)
}
