// Package backup snapshots the item store to a database and restores it on
// startup. The store stays the source of truth; a backup is only ever as
// fresh as the last Save.
package backup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ItemStore/internal/items"
)

type Sink interface {
	Save(ctx context.Context, snapshot []items.Item) error
	Load(ctx context.Context) ([]items.Item, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open returns a sink for driver, which is "sqlite" or "postgres".
func Open(ctx context.Context, driver, dsn string) (Sink, error) {
	switch driver {
	case "sqlite":
		return openDB(ctx, sqliteDialect, dsn)
	case "postgres":
		return openDB(ctx, postgresDialect, dsn)
	}
	return nil, fmt.Errorf("backup: unsupported driver %q", driver)
}

type Runner struct {
	Sink     Sink
	Store    items.Store
	Interval time.Duration
	Log      *zap.Logger
}

// Restore loads the last snapshot into the store. Rows whose id falls
// outside the valid range are skipped.
func (r *Runner) Restore(ctx context.Context) (int, error) {
	snapshot, err := r.Sink.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("backup restore: %w", err)
	}

	n := 0
	for _, row := range snapshot {
		it, err := items.New(row.Name, row.ID)
		if err != nil {
			r.Log.Warn("skipping invalid backup row", zap.String("name", row.Name), zap.Error(err))
			continue
		}
		r.Store.Insert(it)
		n++
	}
	return n, nil
}

func (r *Runner) SaveNow(ctx context.Context) error {
	snapshot := r.Store.Snapshot()
	if err := r.Sink.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("backup save: %w", err)
	}
	r.Log.Debug("backup saved", zap.Int("items", len(snapshot)))
	return nil
}

// Run saves every Interval until ctx is done. Save failures are logged and
// retried on the next tick. The caller takes the final snapshot with
// SaveNow once request traffic has stopped.
func (r *Runner) Run(ctx context.Context) error {
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := r.SaveNow(ctx); err != nil {
				r.Log.Error("periodic backup failed", zap.Error(err))
			}
		}
	}
}
