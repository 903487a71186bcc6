package assetsvc

import (
	"context"

	"github.com/dustin/go-humanize"
	"github.com/sir_venger/charimg_lite/internal/logging"
	"github.com/sir_venger/charimg_lite/internal/models"
	"go.uber.org/zap"
)

// Service объединяет загрузку и поиск изображений персонажей.
type Service interface {
	Upload(ctx context.Context, file *models.FileMeta, rawName string) (models.Asset, error)
	Lookup(ctx context.Context, rawName string) (models.Asset, error)
}

type Deps struct {
	Validator *Validator
	Writer    *Writer
	Resolver  *Resolver
}

type Assets struct {
	Deps
}

// New конструирует сервис с заданными компонентами.
func New(deps Deps) *Assets {
	return &Assets{Deps: deps}
}

var _ Service = (*Assets)(nil)

// Upload прогоняет файл через валидатор и сохраняет его под каноническим именем.
func (s *Assets) Upload(ctx context.Context, file *models.FileMeta, rawName string) (models.Asset, error) {
	log := logging.WithContext(ctx)

	up, err := s.Validator.Validate(file, rawName)
	if err != nil {
		return models.Asset{}, err
	}
	defer func() {
		if err := s.Validator.Discard(up.SpoolPath); err != nil {
			log.Warn("spool cleanup failed", zap.String("spool", up.SpoolPath), zap.Error(err))
		}
	}()

	// Тип содержимого проверяется только для журнала: решает расширение.
	if !isImageType(up.DeclaredType) || !isImageType(up.DetectedType) {
		log.Warn("upload content type is not an image",
			zap.String("name", up.Name),
			zap.String("extension", up.Extension),
			zap.String("declared", up.DeclaredType),
			zap.String("detected", up.DetectedType))
	}

	spool, err := s.Validator.Open(up.SpoolPath)
	if err != nil {
		return models.Asset{}, err
	}
	defer spool.Close()

	asset, err := s.Writer.Store(up.Name, up.Extension, spool)
	if err != nil {
		return models.Asset{}, err
	}

	log.Info("asset stored",
		zap.String("name", asset.Name),
		zap.String("file", asset.FileName()),
		zap.String("size", humanize.IBytes(uint64(up.Size))))

	return asset, nil
}

// Lookup находит изображение по имени в любом регистре.
func (s *Assets) Lookup(_ context.Context, rawName string) (models.Asset, error) {
	name, err := Canonicalize(rawName)
	if err != nil {
		return models.Asset{}, err
	}

	return s.Resolver.Resolve(name)
}
