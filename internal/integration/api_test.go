package integration

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sir_venger/charimg_lite/pkg/assetproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPI_UploadThenLookup(t *testing.T) {
	cfg := newTestConfig(t)
	h := newHandler(t, cfg)
	payload := bytes.Repeat([]byte{0xFF, 0xD8, 0xFF, 0xE0}, 512) // 2 KB

	rec := serve(h, uploadRequest(t, "?name=tom", "tom.jpg", payload))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var up assetproto.UploadResponse
	decode(t, rec, &up)
	assert.True(t, up.Success)
	assert.Equal(t, "tom.jpg", up.FileName)
	assert.Equal(t, "/tom.jpg", up.Path)
	assert.Equal(t, "image for tom uploaded successfully", up.Message)

	stored, err := os.ReadFile(filepath.Join(cfg.StorageRoot, "tom.jpg"))
	require.NoError(t, err)
	assert.Equal(t, payload, stored)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/getImage?name=Tom", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got assetproto.GetImageResponse
	decode(t, rec, &got)
	assert.True(t, got.Success)
	assert.Equal(t, "tom.jpg", got.ImagePath)
	assert.Equal(t, "image found for Tom", got.Message)

	// Файл доступен как статика по imagePath.
	rec = serve(h, httptest.NewRequest(http.MethodGet, "/"+got.ImagePath, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payload, rec.Body.Bytes())
}

func TestAPI_LookupNotFound(t *testing.T) {
	h := newHandler(t, newTestConfig(t))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/getImage?name=ghost", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	var got assetproto.GetImageResponse
	decode(t, rec, &got)
	assert.False(t, got.Success)
	assert.Equal(t, "no image found for ghost", got.Message)
}

func TestAPI_LookupMissingName(t *testing.T) {
	h := newHandler(t, newTestConfig(t))

	for _, target := range []string{"/api/getImage", "/api/getImage?name=", "/api/getImage?name=%20%20"} {
		rec := serve(h, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusBadRequest, rec.Code, target)

		var got assetproto.ErrorResponse
		decode(t, rec, &got)
		assert.False(t, got.Success)
		assert.Equal(t, "name is required", got.Message)
	}
}

func TestAPI_ExtensionDrift(t *testing.T) {
	cfg := newTestConfig(t)
	h := newHandler(t, cfg)

	rec := serve(h, uploadRequest(t, "?name=tom", "tom.jpg", []byte("jpg")))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = serve(h, uploadRequest(t, "?name=tom", "tom.png", []byte("png")))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.ElementsMatch(t, []string{"tom.jpg", "tom.png"}, dirNames(t, cfg.StorageRoot))

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/getImage?name=tom", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got assetproto.GetImageResponse
	decode(t, rec, &got)
	assert.Equal(t, "tom.jpg", got.ImagePath)
}

func TestAPI_ExtensionDriftPruned(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.PruneStaleExtensions = true
	h := newHandler(t, cfg)

	rec := serve(h, uploadRequest(t, "?name=tom", "tom.jpg", []byte("jpg")))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = serve(h, uploadRequest(t, "?name=tom", "tom.png", []byte("png")))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"tom.png"}, dirNames(t, cfg.StorageRoot))

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/getImage?name=tom", nil))
	var got assetproto.GetImageResponse
	decode(t, rec, &got)
	assert.Equal(t, "tom.png", got.ImagePath)
}

func TestAPI_UploadTooLarge(t *testing.T) {
	cfg := newTestConfig(t)
	h := newHandler(t, cfg)

	rec := serve(h, uploadRequest(t, "", "big.jpg", make([]byte, 6<<20)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var got assetproto.ErrorResponse
	decode(t, rec, &got)
	assert.False(t, got.Success)
	assert.Equal(t, "file too large, max size: 5mb", got.Message)
	assert.Empty(t, dirNames(t, cfg.StorageRoot))
	assert.Empty(t, dirNames(t, cfg.SpoolDir))
}

func TestAPI_UploadSizeBoundary(t *testing.T) {
	cfg := newTestConfig(t)
	h := newHandler(t, cfg)

	rec := serve(h, uploadRequest(t, "?name=max", "max.png", make([]byte, 5<<20)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(h, uploadRequest(t, "?name=over", "over.png", make([]byte, 5<<20+1)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"max.png"}, dirNames(t, cfg.StorageRoot))
}

func TestAPI_UploadMissingNameLeavesNothing(t *testing.T) {
	cfg := newTestConfig(t)
	h := newHandler(t, cfg)

	rec := serve(h, uploadRequest(t, "", "tom.jpg", []byte("data")))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var got assetproto.ErrorResponse
	decode(t, rec, &got)
	assert.False(t, got.Success)
	assert.Equal(t, "name is required", got.Message)
	assert.Empty(t, dirNames(t, cfg.StorageRoot))
	assert.Empty(t, dirNames(t, cfg.SpoolDir))
}

func TestAPI_UploadRejections(t *testing.T) {
	h := newHandler(t, newTestConfig(t))

	tests := []struct {
		name string
		req  *http.Request
		msg  string
	}{
		{
			name: "no file field",
			req:  uploadRequest(t, "?name=tom", "", nil),
			msg:  "file not uploaded",
		},
		{
			name: "not multipart",
			req:  httptest.NewRequest(http.MethodPost, "/api/upload?name=tom", bytes.NewReader([]byte("raw"))),
			msg:  "file not uploaded",
		},
		{
			name: "text file",
			req:  uploadRequest(t, "?name=tom", "notes.txt", []byte("hello")),
			msg:  "only images are allowed",
		},
		{
			name: "large text file",
			req:  uploadRequest(t, "?name=tom", "notes.txt", make([]byte, 6<<20)),
			msg:  "only images are allowed",
		},
		{
			name: "extension without base name",
			req:  uploadRequest(t, "?name=tom", ".jpg", []byte("x")),
			msg:  "only images are allowed",
		},
		{
			name: "truncated multipart body",
			req:  truncatedUploadRequest(t, "?name=tom", "tom.png", []byte("\x89PNG\r\n\x1a\n")),
			msg:  "file not uploaded",
		},
		{
			name: "path escape",
			req:  uploadRequest(t, "?name=..%2Fescape", "tom.jpg", []byte("x")),
			msg:  "invalid name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.req)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var got assetproto.ErrorResponse
			decode(t, rec, &got)
			assert.False(t, got.Success)
			assert.Equal(t, tt.msg, got.Message)
		})
	}
}

func TestAPI_UploadStorageFailure(t *testing.T) {
	cfg := newTestConfig(t)
	// Корень хранилища занят обычным файлом: MkdirAll падает.
	require.NoError(t, os.WriteFile(cfg.StorageRoot, []byte("not a dir"), 0o644))
	h := newHandler(t, cfg)

	rec := serve(h, uploadRequest(t, "?name=tom", "tom.jpg", []byte("x")))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var got assetproto.ErrorResponse
	decode(t, rec, &got)
	assert.False(t, got.Success)
	assert.Equal(t, "error file uploading", got.Message)
	assert.NotContains(t, rec.Body.String(), cfg.StorageRoot)
	assert.Empty(t, dirNames(t, cfg.SpoolDir))
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	cfg := newTestConfig(t)
	h := newHandler(t, cfg)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var health assetproto.HealthResponse
	decode(t, rec, &health)
	assert.True(t, health.OK)
	assert.Zero(t, health.Assets)

	for _, name := range []string{"tom", "jerry"} {
		rec = serve(h, uploadRequest(t, "?name="+name, name+".gif", []byte("12345")))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	decode(t, rec, &health)
	assert.Equal(t, 2, health.Assets)
	assert.Equal(t, int64(10), health.TotalBytes)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "charimg_uploads_total")
}

func TestAPI_RequestIDAndCORS(t *testing.T) {
	h := newHandler(t, newTestConfig(t))

	req := httptest.NewRequest(http.MethodGet, "/api/getImage?name=ghost", nil)
	req.Header.Set("X-Request-ID", "req-42")
	req.Header.Set("Origin", "http://localhost:5173")
	rec := serve(h, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/api/getImage?name=ghost", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAPI_StaticDoesNotListDirectories(t *testing.T) {
	h := newHandler(t, newTestConfig(t))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_ConcurrentUploadsCreateRootOnce(t *testing.T) {
	cfg := newTestConfig(t)
	h := newHandler(t, cfg)

	const (
		workers = 32
		names   = 4
	)

	reqs := make([]*http.Request, workers)
	for i := range reqs {
		payload := bytes.Repeat([]byte{byte(i)}, 4096)
		reqs[i] = uploadRequest(t, fmt.Sprintf("?name=N%d", i%names), "avatar.png", payload)
	}

	// Корень ещё не создан: все запросы одновременно проходят через MkdirAll.
	codes := make([]int, workers)
	var wg sync.WaitGroup
	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = serve(h, reqs[i]).Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		assert.Equal(t, http.StatusOK, code, "upload #%d", i)
	}
	assert.ElementsMatch(t, []string{"n0.png", "n1.png", "n2.png", "n3.png"}, dirNames(t, cfg.StorageRoot))
	assert.Empty(t, dirNames(t, cfg.SpoolDir))
}
