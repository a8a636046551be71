package consent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"knife-atelier/internal/storage"
)

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := NewStore(kv, zap.NewNop())
	s.now = func() time.Time { return time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC) }

	rec, err := s.Save(ctx, "s1", "essential")
	require.NoError(t, err)
	assert.Equal(t, ChoiceEssential, rec.Choice)

	raw, err := kv.Get(ctx, "knife-atelier-consent:s1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"choice":"essential","timestamp":"2026-03-01T10:30:00Z"}`, string(raw))

	got, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, rec.Choice, got.Choice)
	assert.True(t, rec.Timestamp.Equal(got.Timestamp))
}

func TestSaveRejectsUnknownChoice(t *testing.T) {
	s := NewStore(storage.NewMemory(), zap.NewNop())

	_, err := s.Save(context.Background(), "s1", "some")
	assert.ErrorIs(t, err, ErrInvalidChoice)
}

func TestGetMissing(t *testing.T) {
	s := NewStore(storage.NewMemory(), zap.NewNop())

	_, err := s.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetCorruptRecord(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, KeyPrefix+"s1", []byte(`{"choice":"maybe"}`)))

	_, err := NewStore(kv, zap.NewNop()).Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrInvalidChoice)
}
