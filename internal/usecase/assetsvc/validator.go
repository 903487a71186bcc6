package assetsvc

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sir_venger/charimg_lite/internal/models"
	"github.com/spf13/afero"
)

// MaxUploadSize — предельный размер загружаемого изображения (5 MiB включительно).
const MaxUploadSize int64 = 5 << 20

const (
	spoolPrefix         = ".upload-"
	spoolSuffix         = ".part"
	spoolFilenameFormat = spoolPrefix + "%s" + spoolSuffix
)

// AllowedExtensions — allow-list расширений, которые принимаются при загрузке.
var AllowedExtensions = []string{"jpg", "jpeg", "png", "gif", "webp"}

// Validator принимает или отклоняет входящий файл. Содержимое складывается во
// временный spool-файл, чтобы размер проверялся потоково и ничего сверх лимита
// не оставалось на диске.
type Validator struct {
	fs       afero.Fs
	spoolDir string
	maxSize  int64
}

// NewValidator создаёт валидатор поверх файловой системы и spool-каталога.
func NewValidator(fsys afero.Fs, spoolDir string, maxSize int64) *Validator {
	if maxSize <= 0 {
		maxSize = MaxUploadSize
	}

	return &Validator{
		fs:       fsys,
		spoolDir: spoolDir,
		maxSize:  maxSize,
	}
}

// Validate проверяет файл и имя. Порядок проверок: наличие файла, расширение,
// размер, имя. При отказе после приёма данных spool-файл удаляется.
func (v *Validator) Validate(file *models.FileMeta, rawName string) (models.Upload, error) {
	if file == nil || file.Content == nil {
		return models.Upload{}, models.ErrMissingFile
	}

	ext, err := extensionOf(file.Filename)
	if err != nil {
		return models.Upload{}, err
	}

	up, err := v.spool(file.Content)
	if err != nil {
		return models.Upload{}, err
	}

	name, err := Canonicalize(rawName)
	if err != nil {
		_ = v.Discard(up.SpoolPath)
		return models.Upload{}, err
	}

	up.Name = name
	up.Extension = ext
	up.DeclaredType = file.ContentType

	return up, nil
}

// Open открывает принятый spool-файл на чтение.
func (v *Validator) Open(spoolPath string) (afero.File, error) {
	f, err := v.fs.Open(spoolPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open spool: %w", models.ErrStorageFailure, err)
	}

	return f, nil
}

// Discard удаляет spool-файл; отсутствие файла ошибкой не считается.
func (v *Validator) Discard(spoolPath string) error {
	if spoolPath == "" {
		return nil
	}
	if err := v.fs.Remove(spoolPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	return nil
}

// spool копирует поток во временный файл, читая не больше maxSize+1 байт.
func (v *Validator) spool(r io.Reader) (models.Upload, error) {
	if err := v.fs.MkdirAll(v.spoolDir, 0o755); err != nil {
		return models.Upload{}, fmt.Errorf("%w: create spool dir: %w", models.ErrStorageFailure, err)
	}

	path := filepath.Join(v.spoolDir, fmt.Sprintf(spoolFilenameFormat, uuid.NewString()))
	f, err := v.fs.Create(path)
	if err != nil {
		return models.Upload{}, fmt.Errorf("%w: create spool: %w", models.ErrStorageFailure, err)
	}

	src := &trackedReader{r: io.LimitReader(r, v.maxSize+1)}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	switch {
	case src.err != nil:
		_ = v.Discard(path)
		// оборванное клиентом тело: файл не получен целиком
		return models.Upload{}, fmt.Errorf("%w: receive upload: %w", models.ErrMissingFile, src.err)
	case copyErr != nil:
		_ = v.Discard(path)
		return models.Upload{}, fmt.Errorf("%w: write spool: %w", models.ErrStorageFailure, copyErr)
	case closeErr != nil:
		_ = v.Discard(path)
		return models.Upload{}, fmt.Errorf("%w: close spool: %w", models.ErrStorageFailure, closeErr)
	}

	if n > v.maxSize {
		_ = v.Discard(path)
		return models.Upload{}, fmt.Errorf("%w: more than %d bytes", models.ErrFileTooLarge, v.maxSize)
	}

	return models.Upload{
		SpoolPath:    path,
		Size:         n,
		DetectedType: v.sniff(path),
	}, nil
}

// sniff определяет MIME-тип по первым байтам. Результат носит справочный характер.
func (v *Validator) sniff(path string) string {
	f, err := v.fs.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return ""
	}

	return mt.String()
}

// extensionOf возвращает расширение в нижнем регистре с точкой, если оно разрешено.
// Имя вида ".jpg" расширения не имеет: это скрытый файл без основы.
func extensionOf(filename string) (string, error) {
	base := filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(base))
	if len(ext) < len(base) && isAllowedExtension(ext) {
		return ext, nil
	}

	return "", fmt.Errorf("%w: %q", models.ErrInvalidFileType, ext)
}

func isAllowedExtension(ext string) bool {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return false
	}
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}

	return false
}

// isImageType — проверка заявленного или определённого типа.
func isImageType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "image/")
}

// trackedReader запоминает ошибку источника, чтобы отличать её от ошибки записи.
type trackedReader struct {
	r   io.Reader
	err error
}

func (t *trackedReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}

	return n, err
}
