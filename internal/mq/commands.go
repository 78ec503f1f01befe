package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shaiso/Dashboard/internal/domain"
	"github.com/shaiso/Dashboard/internal/table"
	"github.com/shaiso/Dashboard/internal/telemetry"
)

// EntryWriter — хранилище, в которое применяются команды записи.
// Реализуется *table.Instance.
type EntryWriter interface {
	Set(path string, value domain.Value, source domain.ChangeSource) error
	Delete(path string, source domain.ChangeSource) bool
	SetPersistent(path string, persistent bool, source domain.ChangeSource) error
}

// ApplyEntrySet применяет команду к хранилищу с источником SourceRemote,
// так что сеттеры виджетов получают значение.
//
// Ошибки валидации (пустой путь, нет значения, несовпадение типа)
// оборачиваются в ErrPermanent.
func ApplyEntrySet(w EntryWriter, cmd EntrySetPayload) error {
	path := domain.NormalizePath(cmd.Path)
	if path == domain.PathSeparator {
		return fmt.Errorf("%w: empty path", ErrPermanent)
	}

	if cmd.Delete {
		w.Delete(path, domain.SourceRemote)
		return nil
	}

	if cmd.Value != nil {
		if err := w.Set(path, *cmd.Value, domain.SourceRemote); err != nil {
			if errors.Is(err, table.ErrTypeMismatch) || errors.Is(err, domain.ErrInvalidValue) {
				return fmt.Errorf("%w: %w", ErrPermanent, err)
			}
			return err
		}
	} else if cmd.Persistent == nil {
		return fmt.Errorf("%w: %s: nothing to apply", ErrPermanent, path)
	}

	if cmd.Persistent != nil {
		if err := w.SetPersistent(path, *cmd.Persistent, domain.SourceRemote); err != nil {
			if errors.Is(err, table.ErrNotFound) {
				return fmt.Errorf("%w: %w", ErrPermanent, err)
			}
			return err
		}
	}
	return nil
}

// EntryCommandHandler возвращает Handler для очереди commands.entry-set.
// onApplied (может быть nil) вызывается с результатом каждой команды.
func EntryCommandHandler(w EntryWriter, logger *slog.Logger, onApplied func(err error)) Handler {
	return func(ctx context.Context, d *Delivery) error {
		if d.Message.Type != MessageTypeEntrySet {
			return fmt.Errorf("%w: unexpected message type %q", ErrPermanent, d.Message.Type)
		}

		cmd, err := ParsePayload[EntrySetPayload](&d.Message)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPermanent, err)
		}

		err = ApplyEntrySet(w, cmd)
		if onApplied != nil {
			onApplied(err)
		}
		if err != nil {
			return err
		}

		telemetry.FromContext(ctx, logger).Debug("remote entry command applied",
			"path", cmd.Path,
			"delete", cmd.Delete,
		)
		return nil
	}
}
