package integration

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sir_venger/charimg_lite/internal/app/resthttp"
	"github.com/sir_venger/charimg_lite/internal/config"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()

	cfg := config.Default()
	cfg.ListenAddr = ":0"
	// корень ещё не существует: он создаётся при первой записи
	cfg.StorageRoot = filepath.Join(base, "public")
	cfg.SpoolDir = filepath.Join(base, "spool")
	return cfg
}

func newHandler(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	h, _, err := resthttp.NewServer(cfg, nil)
	require.NoError(t, err)
	return h
}

// uploadRequest собирает multipart-запрос с полем image.
func uploadRequest(t *testing.T, query, filename string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload"+query, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// truncatedUploadRequest — как uploadRequest, но без закрывающего boundary.
func truncatedUploadRequest(t *testing.T, query, filename string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/upload"+query, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
