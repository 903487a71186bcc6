package integration

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sir_venger/charimg_lite/pkg/assetclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_UploadLookupFetch(t *testing.T) {
	rest := httptest.NewServer(newHandler(t, newTestConfig(t)))
	t.Cleanup(rest.Close)

	var progress bytes.Buffer
	cli := assetclient.New(rest.URL, &progress)
	ctx := context.Background()

	payload := bytes.Repeat([]byte("0123456789abcdef"), 1024) // 16 KiB
	up, err := cli.Upload(ctx, assetclient.UploadRequest{
		Name:     "Jerry",
		FileName: "mouse.webp",
		Reader:   bytes.NewReader(payload),
		Size:     int64(len(payload)),
	})
	require.NoError(t, err)
	assert.True(t, up.Success)
	assert.Equal(t, "jerry.webp", up.FileName)

	found, err := cli.Lookup(ctx, "JERRY")
	require.NoError(t, err)
	assert.Equal(t, "jerry.webp", found.ImagePath)

	body, err := cli.Fetch(ctx, found.ImagePath)
	require.NoError(t, err)
	got, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())

	if !bytes.Equal(got, payload) {
		t.Fatalf("downloaded data mismatch, got %d bytes want %d", len(got), len(payload))
	}
	assert.Contains(t, progress.String(), "Uploading mouse.webp")
	assert.Contains(t, progress.String(), "16 KiB")
}

func TestClient_Errors(t *testing.T) {
	rest := httptest.NewServer(newHandler(t, newTestConfig(t)))
	t.Cleanup(rest.Close)

	cli := assetclient.New(rest.URL, nil)
	ctx := context.Background()

	_, err := cli.Lookup(ctx, "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, assetclient.ErrNotFound))

	var apiErr *assetclient.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "no image found for ghost", apiErr.Message)

	_, err = cli.Upload(ctx, assetclient.UploadRequest{
		Name:     "tom",
		FileName: "tom.txt",
		Reader:   strings.NewReader("hello"),
		Size:     5,
	})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "only images are allowed", apiErr.Message)

	_, err = cli.Fetch(ctx, "ghost.jpg")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}
