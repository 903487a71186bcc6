package resthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sir_venger/charimg_lite/internal/logging"
	"github.com/sir_venger/charimg_lite/pkg/assetproto"
	"go.uber.org/zap"
)

// requestLogger присваивает запросу id и пишет итоговую строку в лог.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(assetproto.HeaderRequest)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(assetproto.HeaderRequest, id)

		ctx := logging.WithRequestID(r.Context(), id)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		logging.WithContext(ctx).Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)))
	})
}
