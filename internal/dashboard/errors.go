package dashboard

import "errors"

var (
	// ErrNotFound — виджет с таким ключом не зарегистрирован.
	ErrNotFound = errors.New("widget not found")

	// ErrNilData — попытка зарегистрировать nil вместо виджета.
	ErrNilData = errors.New("nil sendable data")

	// ErrEmptyKey — пустой ключ.
	ErrEmptyKey = errors.New("empty key")
)
