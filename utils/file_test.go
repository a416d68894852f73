package utils

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSinkPut(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewLocalSink(filepath.Join(dir, "out"))
	require.NoError(t, err)

	loc, err := sink.Put(context.Background(), "snapshots/benidrop-1.json", []byte(`{"ok":true}`), "application/json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "snapshots", "benidrop-1.json"), loc)

	data, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))

	_, err = os.Stat(loc + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLocalSinkRejectsEscapingKeys(t *testing.T) {
	sink, err := NewLocalSink(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../evil.json", "/etc/passwd", "a/../../b"} {
		_, err := sink.Put(context.Background(), key, []byte("x"), "text/plain")
		assert.Error(t, err, key)
	}
}

func TestLocalSinkHonoursCancelledContext(t *testing.T) {
	sink, err := NewLocalSink(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sink.Put(ctx, "a.json", []byte("{}"), "application/json")
	assert.ErrorIs(t, err, context.Canceled)
}
