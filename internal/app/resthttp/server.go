package resthttp

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sir_venger/charimg_lite/internal/config"
	"github.com/sir_venger/charimg_lite/internal/metrics"
	"github.com/sir_venger/charimg_lite/internal/usecase/assetsvc"
	"github.com/sir_venger/charimg_lite/pkg/assetproto"
	"github.com/spf13/afero"
)

type Server struct {
	Assets assetsvc.Service
	Cfg    *config.Config

	fs afero.Fs
}

// NewServer конструктор. fsys == nil означает локальную файловую систему.
func NewServer(cfg *config.Config, fsys afero.Fs) (http.Handler, *Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	srv := &Server{
		Assets: buildAssetService(cfg, fsys),
		Cfg:    cfg,
		fs:     fsys,
	}

	return srv.routes(), srv, nil
}

func buildAssetService(cfg *config.Config, fsys afero.Fs) *assetsvc.Assets {
	return assetsvc.New(assetsvc.Deps{
		Validator: assetsvc.NewValidator(fsys, cfg.SpoolDir, assetsvc.MaxUploadSize),
		Writer:    assetsvc.NewWriter(fsys, cfg.StorageRoot, cfg.PruneStaleExtensions),
		Resolver:  assetsvc.NewResolver(fsys, cfg.StorageRoot),
	})
}

// routes регистрирует API, служебные эндпоинты и раздачу статики из корня хранилища.
func (s *Server) routes() http.Handler {
	rtr := chi.NewRouter()
	rtr.Use(middleware.Recoverer)
	rtr.Use(requestLogger)
	rtr.Use(metrics.Middleware)
	rtr.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.Cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{assetproto.HeaderRequest},
	}))

	rtr.Get(assetproto.PathGetImage, s.getImage)
	rtr.Post(assetproto.PathUpload, s.upload)
	rtr.Get(assetproto.PathHealth, s.health)
	rtr.Handle(assetproto.PathMetrics, metrics.Handler())
	rtr.Handle("/*", s.static())

	return rtr
}

// static отдаёт сохранённые изображения; листинг каталогов закрыт.
func (s *Server) static() http.Handler {
	files := http.FileServer(afero.NewHttpFs(s.fs).Dir(s.Cfg.StorageRoot))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
