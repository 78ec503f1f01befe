package table

import "errors"

// Ошибки таблицы.
var (
	// ErrNotFound — entry не найдена.
	ErrNotFound = errors.New("entry not found")

	// ErrEmptyKey — пустой ключ или путь.
	ErrEmptyKey = errors.New("empty key")

	// ErrTypeMismatch — entry уже существует с другим типом.
	ErrTypeMismatch = errors.New("entry type mismatch")
)
