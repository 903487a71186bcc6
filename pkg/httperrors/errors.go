package httperrors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sir_venger/charimg_lite/internal/logging"
	"github.com/sir_venger/charimg_lite/internal/models"
	"github.com/sir_venger/charimg_lite/pkg/assetproto"
	"go.uber.org/zap"
)

const (
	fileTooLargeMessage = "file too large, max size: 5mb"
	storageMessage      = "error file uploading"
	internalMessage     = "internal server error"
)

// Write переводит ошибку сервиса в HTTP-статус и JSON-конверт {success:false, message}.
// Детали ошибок хранилища уходят только в лог, клиенту отдаётся общее сообщение.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := Classify(err)
	if status >= http.StatusInternalServerError {
		logging.WithContext(r.Context()).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}

	WriteMessage(w, status, msg)
}

// Classify возвращает статус и безопасное для клиента сообщение.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrMissingName):
		return http.StatusBadRequest, models.ErrMissingName.Error()
	case errors.Is(err, models.ErrInvalidName):
		return http.StatusBadRequest, models.ErrInvalidName.Error()
	case errors.Is(err, models.ErrMissingFile):
		return http.StatusBadRequest, models.ErrMissingFile.Error()
	case errors.Is(err, models.ErrInvalidFileType):
		return http.StatusBadRequest, models.ErrInvalidFileType.Error()
	case errors.Is(err, models.ErrFileTooLarge):
		return http.StatusBadRequest, fileTooLargeMessage
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, models.ErrNotFound.Error()
	case errors.Is(err, models.ErrStorageFailure):
		return http.StatusInternalServerError, storageMessage
	default:
		return http.StatusInternalServerError, internalMessage
	}
}

// WriteMessage отдаёт неуспешный конверт с произвольным сообщением.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, assetproto.ErrorResponse{Success: false, Message: msg})
}

// WriteJSON сериализует v с указанным статусом.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
