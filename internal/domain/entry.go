package domain

import (
	"strings"
	"time"
)

// PathSeparator разделяет уровни иерархии в путях entries.
const PathSeparator = "/"

// Entry — entry таблицы в момент чтения.
//
// Path — полный путь от корня, например "/SmartDashboard/speed".
type Entry struct {
	// Path — полный путь entry.
	Path string `json:"path"`

	// Value — текущее значение.
	Value Value `json:"value"`

	// Persistent — значение сохраняется между перезапусками.
	Persistent bool `json:"persistent"`

	// Seq — порядковый номер последнего изменения.
	Seq uint64 `json:"seq"`

	// UpdatedAt — время последнего изменения.
	UpdatedAt time.Time `json:"updated_at"`
}

// ChangeKind — тип изменения entry.
type ChangeKind string

const (
	// ChangeKindSet — значение записано (создано или обновлено).
	ChangeKindSet ChangeKind = "set"

	// ChangeKindDelete — entry удалена.
	ChangeKindDelete ChangeKind = "delete"

	// ChangeKindFlags — изменились флаги (persistent).
	ChangeKindFlags ChangeKind = "flags"
)

// ChangeSource — откуда пришло изменение.
type ChangeSource string

const (
	// SourceLocal — изменение сделано кодом в процессе (виджеты, Put*).
	SourceLocal ChangeSource = "local"

	// SourceRemote — изменение пришло от dashboard (API или очередь команд).
	SourceRemote ChangeSource = "remote"

	// SourceRestore — значение восстановлено из хранилища при старте.
	SourceRestore ChangeSource = "restore"
)

// Change — событие изменения entry.
type Change struct {
	Path       string       `json:"path"`
	Kind       ChangeKind   `json:"kind"`
	Value      Value        `json:"value"`
	Previous   *Value       `json:"previous,omitempty"`
	Persistent bool         `json:"persistent"`
	Source     ChangeSource `json:"source"`
	Seq        uint64       `json:"seq"`
	At         time.Time    `json:"at"`
}

// JoinPath склеивает сегменты пути, нормализуя разделители.
//
//	JoinPath("/SmartDashboard", "Autonomous Mode", "selected")
//	  → "/SmartDashboard/Autonomous Mode/selected"
func JoinPath(parts ...string) string {
	var segs []string
	for _, p := range parts {
		for _, s := range strings.Split(p, PathSeparator) {
			if s != "" {
				segs = append(segs, s)
			}
		}
	}
	return PathSeparator + strings.Join(segs, PathSeparator)
}

// NormalizePath приводит путь к виду "/a/b".
func NormalizePath(path string) string {
	return JoinPath(path)
}

// SplitPath возвращает родительский путь и последний сегмент.
func SplitPath(path string) (parent, name string) {
	path = NormalizePath(path)
	i := strings.LastIndex(path, PathSeparator)
	if i <= 0 {
		return PathSeparator, path[i+1:]
	}
	return path[:i], path[i+1:]
}
