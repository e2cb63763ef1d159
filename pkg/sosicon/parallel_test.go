package sosicon

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInputs(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(paths[i], []byte(testDocument), 0o644))
	}
	return paths
}

func TestConvertFiles(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "shp")
	paths := writeInputs(t, in, "a.sos", "b.sos", "c.sos")

	var (
		mu    sync.Mutex
		calls []int
	)
	opts := DefaultConvertOptions()
	opts.Workers = 2
	opts.OutputDir = out
	opts.Progress = func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 3, total)
		calls = append(calls, done)
	}

	results, errs := ConvertFiles(context.Background(), paths, opts)
	require.Empty(t, errs)
	require.Len(t, results, 3)
	assert.ElementsMatch(t, []int{1, 2, 3}, calls)

	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
		assert.Equal(t, 2, r.Records)
		require.Len(t, r.Outputs, 1)
		for _, ext := range []string{".shp", ".shx", ".dbf", ".cpg"} {
			assert.FileExists(t, r.Outputs[0]+ext)
		}
	}
	assert.Equal(t, filepath.Join(out, "a"), results[0].Outputs[0])
}

func TestConvertFilesSharedDate(t *testing.T) {
	dir := t.TempDir()
	paths := writeInputs(t, dir, "a.sos", "b.sos")

	opts := DefaultConvertOptions()
	results, errs := ConvertFiles(context.Background(), paths, opts)
	require.Empty(t, errs)
	require.Len(t, results, 2)

	a, err := os.ReadFile(results[0].Outputs[0] + ".dbf")
	require.NoError(t, err)
	b, err := os.ReadFile(results[1].Outputs[0] + ".dbf")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestConvertFilesSplitTypes(t *testing.T) {
	dir := t.TempDir()
	paths := writeInputs(t, dir, "map.sos")

	opts := DefaultConvertOptions()
	opts.SplitTypes = true
	opts.Shapefile.Types = []string{"PUNKT", "KURVE", "FLATE"}
	opts.Shapefile.Now = testNow

	results, errs := ConvertFiles(context.Background(), paths, opts)
	require.Empty(t, errs)
	require.Len(t, results, 1)

	assert.Equal(t, []string{
		filepath.Join(dir, "map_punkt"),
		filepath.Join(dir, "map_kurve"),
		filepath.Join(dir, "map_flate"),
	}, results[0].Outputs)
	assert.Equal(t, 4, results[0].Records)
}

func TestConvertFilesSkipErrors(t *testing.T) {
	dir := t.TempDir()
	paths := writeInputs(t, dir, "good.sos")
	paths = append(paths, filepath.Join(dir, "missing.sos"))

	var log bytes.Buffer
	opts := DefaultConvertOptions()
	opts.Workers = 1
	opts.ErrorLog = &log

	results, errs := ConvertFiles(context.Background(), paths, opts)
	require.Len(t, results, 1)
	assert.Equal(t, paths[0], results[0].Path)
	require.Len(t, errs, 1)

	var se *StageError
	require.ErrorAs(t, errs[0], &se)
	assert.Equal(t, StageRead, se.Stage)
	assert.Contains(t, log.String(), "Error converting file:")
}

func TestConvertFilesStopOnError(t *testing.T) {
	dir := t.TempDir()
	paths := []string{filepath.Join(dir, "missing.sos")}

	opts := DefaultConvertOptions()
	opts.SkipErrors = false

	results, errs := ConvertFiles(context.Background(), paths, opts)
	assert.Empty(t, results)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], os.ErrNotExist)
}

func TestConvertFilesCancelled(t *testing.T) {
	paths := writeInputs(t, t.TempDir(), "a.sos")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := DefaultConvertOptions()
	opts.SkipErrors = false
	results, errs := ConvertFiles(ctx, paths, opts)
	assert.Empty(t, results)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
}

func TestConvertFilesNoInput(t *testing.T) {
	results, errs := ConvertFiles(context.Background(), nil, DefaultConvertOptions())
	assert.Nil(t, results)
	assert.Nil(t, errs)
}

func TestOutputBase(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "kart"), outputBase(filepath.Join("data", "kart.sos"), ""))
	assert.Equal(t, filepath.Join("out", "kart"), outputBase(filepath.Join("data", "kart.SOS"), "out"))
}
