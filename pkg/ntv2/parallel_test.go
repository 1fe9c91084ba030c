package ntv2

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGridFiles(t *testing.T) (dir string, paths []string) {
	t.Helper()
	dir = t.TempDir()
	for i, name := range []string{"a.gsb", "b.gsb", "c.gsb", "d.gsb"} {
		west := float64(i * 10)
		paths = append(paths, writeGrid(t, dir, name,
			gridSpec{name: "ROOT", west: west, south: 0, east: west + 5, north: 5, step: 1, shift: constShift(float64(i), 0)}))
	}
	return dir, paths
}

func TestLoadGridFilesParallel(t *testing.T) {
	_, paths := writeGridFiles(t)

	for _, parallel := range []bool{true, false} {
		opts := DefaultLoadOptions()
		opts.Parallel = parallel
		opts.Workers = 3

		var mu sync.Mutex
		var calls []int
		opts.Progress = func(loaded, total int) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, len(paths), total)
			calls = append(calls, loaded)
		}

		set, errs := LoadGridFilesParallel(paths, opts)
		require.Empty(t, errs)
		require.Equal(t, len(paths), set.Len())

		// Order follows paths regardless of completion order.
		for i, f := range set.Files() {
			assert.Equal(t, filepath.Base(paths[i]), f.Name())
		}
		assert.Equal(t, []int{1, 2, 3, 4}, calls)

		f, err := set.Select(32, 2)
		require.NoError(t, err)
		assert.Equal(t, "d.gsb", f.Name())
	}
}

func TestLoadGridFilesSkipErrors(t *testing.T) {
	dir, paths := writeGridFiles(t)
	bad := filepath.Join(dir, "bad.gsb")
	require.NoError(t, os.WriteFile(bad, []byte("not a grid"), 0o644))
	paths = append(paths[:2], bad, paths[2], filepath.Join(dir, "missing.gsb"))

	logger, hook := test.NewNullLogger()

	for _, parallel := range []bool{true, false} {
		hook.Reset()
		opts := DefaultLoadOptions()
		opts.Parallel = parallel
		opts.Logger = logger

		set, errs := LoadGridFilesParallel(paths, opts)
		assert.Len(t, errs, 2)
		assert.Equal(t, 3, set.Len())
		assert.Len(t, hook.AllEntries(), 2)
		for _, e := range hook.AllEntries() {
			assert.Equal(t, logrus.ErrorLevel, e.Level)
			assert.Contains(t, e.Data, "path")
		}

		var fe *FormatError
		found := false
		for _, err := range errs {
			if assert.Error(t, err) && errors.As(err, &fe) {
				found = true
				assert.Contains(t, err.Error(), "bad.gsb")
			}
		}
		assert.True(t, found, "expected a format error for bad.gsb")
	}
}

func TestLoadGridFilesStopOnError(t *testing.T) {
	dir, paths := writeGridFiles(t)
	paths = append(paths, filepath.Join(dir, "missing.gsb"))

	for _, parallel := range []bool{true, false} {
		opts := DefaultLoadOptions()
		opts.Parallel = parallel
		opts.SkipErrors = false

		set, errs := LoadGridFilesParallel(paths, opts)
		assert.Nil(t, set)
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], os.ErrNotExist)
	}
}

func TestLoadGridFilesEmpty(t *testing.T) {
	set, errs := LoadGridFilesParallel(nil, DefaultLoadOptions())
	assert.Empty(t, errs)
	assert.Equal(t, 0, set.Len())
}

func TestLoadLogsDebug(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	opts := DefaultParseOptions()
	opts.Logger = logger
	opts.Name = "synthetic"
	_, err := Load(bytes.NewReader(encodeGrid(t, rootSpec(linearShift))), opts)
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "grid loaded", entry.Message)
	assert.Equal(t, "synthetic", entry.Data["grid"])
	assert.Equal(t, 121, entry.Data["nodes"])
}
