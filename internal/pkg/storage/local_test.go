package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveOpen(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	path, err := s.Save(ctx, "exports/out.xlsx", func(w io.Writer) error {
		_, err := w.Write([]byte("payload"))
		return err
	})
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))

	exists, err := s.Exists(ctx, "exports/out.xlsx")
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := s.Open(ctx, "exports/out.xlsx")
	require.NoError(t, err)
	defer rc.Close()
	var buf bytes.Buffer
	_, err = io.Copy(&buf, rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", buf.String())
}

func TestLocalStorage_Save_FailureLeavesNothing(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = s.Save(ctx, "out.xlsx", func(w io.Writer) error {
		_, _ = w.Write([]byte("half"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStorage_Save_KeepsOldFileOnFailure(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "out.xlsx"), []byte("old"), 0644))

	_, err = s.Save(ctx, "out.xlsx", func(w io.Writer) error { return errors.New("nope") })
	require.Error(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(ctx, "../escape.xlsx", func(w io.Writer) error { return nil })
	assert.Error(t, err)

	_, err = s.Exists(ctx, "/etc/passwd")
	assert.Error(t, err)
}

func TestLocalStorage_OpenMissing(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Open(ctx, "missing.xlsx")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	exists, err := s.Exists(ctx, "missing.xlsx")
	require.NoError(t, err)
	assert.False(t, exists)
}
