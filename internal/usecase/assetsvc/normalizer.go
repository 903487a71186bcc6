package assetsvc

import (
	"fmt"
	"strings"

	"github.com/sir_venger/charimg_lite/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Canonicalize приводит имя персонажа к ключу хранилища: обрезает пробелы по краям
// и переводит в нижний регистр без учёта локали. Внутренние пробелы и пунктуация
// сохраняются как есть.
func Canonicalize(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", models.ErrMissingName
	}

	// cases.Caser не потокобезопасен, поэтому создаём его на каждый вызов.
	name = cases.Lower(language.Und).String(name)

	if name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return "", fmt.Errorf("%w: %q", models.ErrInvalidName, raw)
	}

	return name, nil
}
