package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"storefront/logic"
)

func jsonUnmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type failingStorage struct{ Memory }

func (f *failingStorage) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("unavailable")
}

func TestLoad_MissingKeyYieldsEmptyState(t *testing.T) {
	state := Load(context.Background(), NewMemory(), StateKey, nil)
	assert.Equal(t, logic.EmptyState(), state)
}

func TestSaveThenLoad(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()
	state := sampleState(t)
	require.NoError(t, Save(ctx, st, StateKey, state))

	loaded := Load(ctx, st, StateKey, nil)
	assert.Equal(t, state.Cart.Total(), loaded.Cart.Total())
	assert.Equal(t, state.Theme, loaded.Theme)
}

func TestLoad_CorruptDocumentIsDiscarded(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()
	require.NoError(t, st.Set(ctx, StateKey, []byte("{corrupt")))
	core, logs := observer.New(zap.WarnLevel)

	state := Load(ctx, st, StateKey, zap.New(core))

	assert.Equal(t, logic.EmptyState(), state)
	_, ok, _ := st.Get(ctx, StateKey)
	assert.False(t, ok, "corrupt document should be deleted")
	assert.Equal(t, 1, logs.FilterMessage("discarding corrupt persisted state").Len())
}

func TestLoad_StorageErrorYieldsEmptyState(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	state := Load(context.Background(), &failingStorage{}, StateKey, zap.New(core))
	assert.Equal(t, logic.EmptyState(), state)
	assert.Equal(t, 1, logs.Len())
}

func TestSaver(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()
	save := Saver(st, "k")
	require.NoError(t, save(ctx, logic.EmptyState()))
	_, ok, _ := st.Get(ctx, "k")
	assert.True(t, ok)
}
