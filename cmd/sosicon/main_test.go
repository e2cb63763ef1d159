package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/sosicon/internal/config"
)

const sample = `.HODE
..TEGNSETT UTF-8
..TRANSPAR
...KOORDSYS 23
...ORIGO-NØ 0 0
...ENHET 0.01
.PUNKT 1:
..OBJTYPE Bygning
..NØ
660000000 30000000
.KURVE 2:
..OBJTYPE Veg
..NØ
0 0
100 100
.SLUTT
`

// workspace returns an empty working directory holding kart.sos.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SOSICON_SQL_DATABASE_URL", "")
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kart.sos"), []byte(sample), 0o644))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestShpCommand(t *testing.T) {
	dir := workspace(t)

	out, err := execute(t, "shp", "-t", "PUNKT", "-t", "KURVE", "-o", "shp", "kart.sos")
	require.NoError(t, err)
	assert.Equal(t, "kart.sos -> "+filepath.Join("shp", "kart")+".shp\n", out)

	for _, ext := range []string{".shp", ".shx", ".dbf", ".cpg"} {
		assert.FileExists(t, filepath.Join(dir, "shp", "kart"+ext))
	}
}

func TestShpCommandSplit(t *testing.T) {
	dir := workspace(t)

	_, err := execute(t, "shp", "--split", "-t", "PUNKT,KURVE", "kart.sos")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "kart_punkt.shp"))
	assert.FileExists(t, filepath.Join(dir, "kart_kurve.shp"))
}

func TestShpCommandBBoxMargin(t *testing.T) {
	dir := workspace(t)
	records := func() int {
		shx, err := os.ReadFile(filepath.Join(dir, "kart.shx"))
		require.NoError(t, err)
		return (len(shx) - 100) / 8
	}

	_, err := execute(t, "shp", "--bbox", "300010,6600010,300020,6600020", "kart.sos")
	require.NoError(t, err)
	assert.Equal(t, 0, records())

	_, err = execute(t, "shp", "--bbox", "300010,6600010,300020,6600020", "--bbox-margin", "10", "kart.sos")
	require.NoError(t, err)
	assert.Equal(t, 1, records())
}

func TestShpCommandErrors(t *testing.T) {
	workspace(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no files", []string{"shp"}, "requires at least 1 arg"},
		{"bad bbox", []string{"shp", "--bbox", "1,2", "kart.sos"}, "bounds"},
		{"unknown type", []string{"shp", "-t", "SIRKEL", "kart.sos"}, "unknown geometry type"},
		{"missing file", []string{"shp", "borte.sos"}, "1 of 1 files failed"},
		{"bad log level", []string{"--log-level", "loud", "shp", "kart.sos"}, "invalid log level"},
		{"bad log format", []string{"--log-format", "xml", "shp", "kart.sos"}, "invalid log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSQLCommand(t *testing.T) {
	dir := workspace(t)

	_, err := execute(t, "sql", "--schema", "kart", "--table", "bygning", "-o", "dump.sql", "kart.sos")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "dump.sql"))
	require.NoError(t, err)
	dump := string(data)
	assert.True(t, strings.HasPrefix(dump, "SET NAMES 'LATIN1';\n"))
	assert.Contains(t, dump, "CREATE TABLE kart.bygning(")
	assert.Contains(t, dump, "ST_GeomFromText('POINT(300000.00000 6600000.00000)',25833),4326)")
	assert.Contains(t, dump, "'Bygning'")
}

func TestSQLCommandCompressed(t *testing.T) {
	dir := workspace(t)

	_, err := execute(t, "sql", "-o", "dump.sql.zst", "kart.sos")
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, "dump.sql.zst"))
	require.NoError(t, err)
	defer f.Close()
	zr, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer zr.Close()

	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "SET NAMES 'LATIN1';\n"))
	assert.Contains(t, string(data), "INSERT INTO sosicon.point")
}

type failingDump struct{}

func (failingDump) WriteTo(w io.Writer) (int64, error) {
	n, _ := io.WriteString(w, "SET NAMES 'LATIN1';\n")
	return int64(n), errors.New("disk full")
}

func TestWriteDumpFailureLeavesNothing(t *testing.T) {
	for _, name := range []string{"dump.sql", "dump.sql.zst"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

			err := writeDump(path, failingDump{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "disk full")

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "previous", string(data))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})
	}
}

func TestSQLCommandStdout(t *testing.T) {
	workspace(t)

	out, err := execute(t, "sql", "--charset", "UTF-8", "kart.sos")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "SET NAMES 'UTF8';\n"))
	assert.Contains(t, out, "INSERT INTO sosicon.point")
}

func TestSQLCommandLoadNeedsDatabase(t *testing.T) {
	workspace(t)

	_, err := execute(t, "sql", "--load", "kart.sos")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	_, err = execute(t, "sql", "--table", "Bad-Name", "kart.sos")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid identifier")
}

func TestInfoCommand(t *testing.T) {
	workspace(t)

	out, err := execute(t, "info", "kart.sos")
	require.NoError(t, err)
	assert.Contains(t, out, "=== kart.sos ===\n")
	assert.Contains(t, out, "KOORDSYS: 23\n")
	assert.Contains(t, out, "  KURVE      1\n")
	assert.Contains(t, out, "  PUNKT      1\n")
}

func TestInfoCommandYAML(t *testing.T) {
	workspace(t)

	out, err := execute(t, "info", "--yaml", "kart.sos")
	require.NoError(t, err)
	assert.Contains(t, out, "path: kart.sos\n")
	assert.Contains(t, out, "features:\n  KURVE: 1\n  PUNKT: 1\n")
	assert.Contains(t, out, "koordsys: \"23\"\n")
}

func TestInfoCommandDump(t *testing.T) {
	workspace(t)

	out, err := execute(t, "info", "--dump", "kart.sos")
	require.NoError(t, err)
	assert.Contains(t, out, "PUNKT[ 1 ]\n  OBJTYPE[  ]\n      -> Bygning\n")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(&buf, config.LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"app":"sosicon"`)
	assert.Contains(t, buf.String(), `"run":"`)
	assert.Contains(t, buf.String(), `"message":"shown"`)

	_, err = newLogger(&buf, config.LogConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)
}

func TestLogFile(t *testing.T) {
	dir := workspace(t)
	path := filepath.Join(dir, "logs", "sosicon.log")

	_, err := execute(t, "--log-file", path, "shp", "kart.sos")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"Converted"`)
	assert.Contains(t, string(data), `"path":"kart.sos"`)
}
