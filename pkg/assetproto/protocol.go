// Package assetproto описывает HTTP-протокол сервиса изображений: пути, параметры и JSON-конверты.
package assetproto

// Параметры REST-протокола.
const (
	PathGetImage  = "/api/getImage"
	PathUpload    = "/api/upload"
	PathHealth    = "/health"
	PathMetrics   = "/metrics"
	QueryName     = "name"
	FormFieldFile = "image"
	HeaderRequest = "X-Request-ID"
)

// ErrorResponse — тело любого неуспешного ответа.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// GetImageResponse — ответ на GET /api/getImage.
type GetImageResponse struct {
	Success   bool   `json:"success"`
	ImagePath string `json:"imagePath,omitempty"`
	Message   string `json:"message"`
}

// UploadResponse — ответ на POST /api/upload. Path — публичный URL-путь файла.
type UploadResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	FileName string `json:"fileName,omitempty"`
	Path     string `json:"path,omitempty"`
}

// HealthResponse — ответ /health.
type HealthResponse struct {
	OK         bool  `json:"ok"`
	Assets     int   `json:"assets"`
	TotalBytes int64 `json:"total_bytes"`
}
