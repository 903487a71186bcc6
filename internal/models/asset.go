package models

// Asset описывает изображение персонажа, лежащее в корне хранилища.
type Asset struct {
	Name      string `json:"name"`
	Extension string `json:"extension"`
	Size      int64  `json:"size"`
	Path      string `json:"-"`
}

// FileName возвращает имя файла относительно корня хранилища.
func (a Asset) FileName() string {
	return a.Name + a.Extension
}
