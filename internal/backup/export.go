package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mesh-intelligence/focusflow/internal/jsonl"
	"github.com/mesh-intelligence/focusflow/internal/logger"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

const millisPerDay = 24 * 60 * 60 * 1000

// Exporter reads the whole store into a Backup.
type Exporter struct {
	store types.Store
	log   logger.Logger
}

// NewExporter returns an Exporter over store.
func NewExporter(store types.Store, log logger.Logger) *Exporter {
	if log == nil {
		log = logger.Nop()
	}
	return &Exporter{store: store, log: log}
}

// Export reads every collection. It does not modify the store.
func (e *Exporter) Export(ctx context.Context) (Backup, error) {
	b := make(Backup, len(types.AllCollections()))
	for _, name := range types.DocumentCollections {
		values, err := e.store.GetAll(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("exporting %s: %w", name, err)
		}
		b[name] = values
	}
	for _, name := range types.KeyValueCollections {
		entries, err := e.store.GetAllEntries(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("exporting %s: %w", name, err)
		}
		items := make([]json.RawMessage, 0, len(entries))
		for _, en := range entries {
			raw, err := marshalEntry(en)
			if err != nil {
				return nil, fmt.Errorf("exporting %s/%s: %w", name, en.Key, err)
			}
			items = append(items, raw)
		}
		b[name] = items
	}
	return b, nil
}

// WriteTo exports the store and encodes it to w.
func (e *Exporter) WriteTo(ctx context.Context, w io.Writer) error {
	b, err := e.Export(ctx)
	if err != nil {
		return err
	}
	return Encode(w, b)
}

// WriteFile writes the backup for now into dir with an atomic rename, then
// records lastExportDate. When any step before the rename fails nothing is
// written or recorded. It returns the file path.
func (e *Exporter) WriteFile(ctx context.Context, dir string, now time.Time) (string, error) {
	b, err := e.Export(ctx)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}
	path := filepath.Join(dir, FileName(now))
	if err := jsonl.WriteAtomic(path, func(w io.Writer) error { return Encode(w, b) }); err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}

	stamp := json.RawMessage(strconv.FormatInt(now.UnixMilli(), 10))
	if err := e.store.Put(ctx, types.CollectionSettings, stamp, types.SettingLastExportDate); err != nil {
		return path, fmt.Errorf("recording export date: %w", err)
	}

	e.log.Info("backup exported",
		logger.String("path", path),
		logger.Int("collections", len(b)))
	return path, nil
}

// ReminderDue reports whether more than exportReminderFrequency days have
// passed since lastExportDate. A frequency of 0 disables the reminder; a
// missing frequency means DefaultReminderDays and a missing export date
// means the epoch.
func (e *Exporter) ReminderDue(ctx context.Context, now time.Time) (bool, error) {
	freq, err := e.settingNumber(ctx, types.SettingExportReminderFrequency, DefaultReminderDays)
	if err != nil {
		return false, err
	}
	if freq == 0 {
		return false, nil
	}
	last, err := e.settingNumber(ctx, types.SettingLastExportDate, 0)
	if err != nil {
		return false, err
	}
	days := float64(now.UnixMilli()-int64(last)) / millisPerDay
	return days > freq, nil
}

func (e *Exporter) settingNumber(ctx context.Context, key string, fallback float64) (float64, error) {
	raw, err := e.store.Get(ctx, types.CollectionSettings, key)
	if errors.Is(err, types.ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return 0, err
	}
	var v *float64
	if err := json.Unmarshal(raw, &v); err != nil {
		e.log.Warn("ignoring unreadable setting", logger.String("key", key), logger.Error(err))
		return fallback, nil
	}
	if v == nil {
		return fallback, nil
	}
	return *v, nil
}
