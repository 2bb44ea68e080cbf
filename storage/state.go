package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"storefront/logic"
)

// StateKey is the storage key of the persisted AppState document.
const StateKey = "shophub-app-state"

// Load hydrates the state stored under key. A missing key yields the
// empty state. A document that cannot be parsed is deleted and the empty
// state returned. Failures are logged and never returned.
func Load(ctx context.Context, st Storage, key string, logger *zap.Logger) logic.AppState {
	if logger == nil {
		logger = zap.NewNop()
	}
	data, ok, err := st.Get(ctx, key)
	if err != nil {
		logger.Warn("failed to read persisted state", zap.String("key", key), zap.Error(err))
		return logic.EmptyState()
	}
	if !ok {
		return logic.EmptyState()
	}

	state, report, err := Decode(data)
	if err != nil {
		logger.Warn("discarding corrupt persisted state", zap.String("key", key), zap.Error(err))
		if derr := st.Delete(ctx, key); derr != nil {
			logger.Warn("failed to delete corrupt state", zap.String("key", key), zap.Error(derr))
		}
		return logic.EmptyState()
	}
	if !report.Clean() {
		logger.Info("dropped invalid persisted fields",
			zap.String("key", key),
			zap.Strings("fields", report.Fields),
			zap.Int("skipped_items", report.Items))
	}
	return state
}

// Save writes state under key.
func Save(ctx context.Context, st Storage, key string, state logic.AppState) error {
	data, err := Encode(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := st.Set(ctx, key, data); err != nil {
		return err
	}
	return nil
}

// Saver returns a function that writes snapshots under key, for use
// with a debounced persister.
func Saver(st Storage, key string) func(ctx context.Context, state logic.AppState) error {
	return func(ctx context.Context, state logic.AppState) error {
		return Save(ctx, st, key, state)
	}
}
