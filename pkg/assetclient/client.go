package assetclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/sir_venger/charimg_lite/pkg/assetproto"
)

// ErrNotFound возвращается, когда для имени нет изображения.
var ErrNotFound = errors.New("image not found")

// APIError — неуспешный ответ сервиса.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Is позволяет сравнивать 404 с ErrNotFound через errors.Is.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

type UploadRequest struct {
	Name     string
	FileName string
	Reader   io.Reader
	Size     int64
}

type Client interface {
	// Upload Загрузить изображение персонажа
	Upload(ctx context.Context, req UploadRequest) (assetproto.UploadResponse, error)
	// Lookup Найти изображение по имени
	Lookup(ctx context.Context, name string) (assetproto.GetImageResponse, error)
	// Fetch Скачать изображение по imagePath из Lookup
	Fetch(ctx context.Context, imagePath string) (io.ReadCloser, error)
}

type httpClient struct {
	c        *http.Client
	baseURL  string
	progress io.Writer
}

// New создаёт HTTP-клиент. progress == nil отключает индикатор выполнения.
func New(baseURL string, progress io.Writer) Client {
	return &httpClient{
		c:        &http.Client{},
		baseURL:  strings.TrimRight(baseURL, "/"),
		progress: progress,
	}
}

// Upload отправляет файл multipart-запросом, не буферизуя его целиком в памяти.
func (h *httpClient) Upload(ctx context.Context, req UploadRequest) (assetproto.UploadResponse, error) {
	u := h.baseURL + assetproto.PathUpload + "?" + url.Values{assetproto.QueryName: {req.Name}}.Encode()

	bar := newProgressBar(h.progress, fmt.Sprintf("Uploading %s", req.FileName), req.Size)
	body := io.Reader(req.Reader)
	if bar != nil {
		body = io.TeeReader(req.Reader, progressWriter{bar: bar})
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile(assetproto.FormFieldFile, req.FileName)
		if err == nil {
			_, err = io.Copy(part, body)
		}
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		bar.Fail(err)
		return assetproto.UploadResponse{}, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := h.c.Do(httpReq)
	if err != nil {
		bar.Fail(err)
		return assetproto.UploadResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = decodeError(resp)
		bar.Fail(err)
		return assetproto.UploadResponse{}, err
	}

	var out assetproto.UploadResponse
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		bar.Fail(err)
		return assetproto.UploadResponse{}, err
	}

	bar.Finish()
	return out, nil
}

// Lookup спрашивает у сервиса, какой файл соответствует имени.
func (h *httpClient) Lookup(ctx context.Context, name string) (assetproto.GetImageResponse, error) {
	u := h.baseURL + assetproto.PathGetImage + "?" + url.Values{assetproto.QueryName: {name}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return assetproto.GetImageResponse{}, err
	}

	resp, err := h.c.Do(req)
	if err != nil {
		return assetproto.GetImageResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return assetproto.GetImageResponse{}, decodeError(resp)
	}

	var out assetproto.GetImageResponse
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return assetproto.GetImageResponse{}, err
	}

	return out, nil
}

// Fetch скачивает файл из статики и возвращает поток с телом.
func (h *httpClient) Fetch(ctx context.Context, imagePath string) (io.ReadCloser, error) {
	u := h.baseURL + "/" + url.PathEscape(strings.TrimPrefix(imagePath, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &APIError{Status: resp.StatusCode, Message: resp.Status}
	}

	bar := newProgressBar(h.progress, fmt.Sprintf("Downloading %s", imagePath), resp.ContentLength)
	return newProgressReadCloser(resp.Body, bar), nil
}

func decodeError(resp *http.Response) error {
	var payload assetproto.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.Message == "" {
		return &APIError{Status: resp.StatusCode, Message: resp.Status}
	}

	return &APIError{Status: resp.StatusCode, Message: payload.Message}
}
