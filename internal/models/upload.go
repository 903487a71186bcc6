package models

import "io"

// FileMeta — входящая часть multipart-запроса, ещё не прошедшая проверку.
type FileMeta struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// Upload возвращается валидатором: имя и расширение уже канонизированы,
// содержимое лежит во временном spool-файле.
type Upload struct {
	Name         string
	Extension    string
	SpoolPath    string
	Size         int64
	DeclaredType string
	DetectedType string
}
