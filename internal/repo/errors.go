package repo

import "errors"

// Общие ошибки репозиториев.
var (
	// ErrNotFound — запись не найдена в БД.
	ErrNotFound = errors.New("not found")

	// ErrCorrupted — запись в БД не удалось разобрать.
	ErrCorrupted = errors.New("corrupted record")
)
