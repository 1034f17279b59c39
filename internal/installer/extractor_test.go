package installer

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func writeTarGz(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	for name, body := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0644, Size: int64(len(body)), Typeflag: tar.TypeReg}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	require.NoError(t, f.Close())
}

func TestExtractZip(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "Meslo.zip")
	writeZip(t, archive, map[string]string{"Meslo/MesloLGS-Regular.ttf": "regular"})

	require.NoError(t, ExtractArchive(archive, filepath.Join(dir, "out")))

	got, err := os.ReadFile(filepath.Join(dir, "out", "Meslo", "MesloLGS-Regular.ttf"))
	require.NoError(t, err)
	assert.Equal(t, "regular", string(got))
}

func TestExtractTarGzAndFindFonts(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "Meslo.tar.gz")
	writeTarGz(t, archive, map[string]string{
		"fonts/A.ttf":     "a",
		"fonts/B.OTF":     "b",
		"fonts/README.md": "readme",
	})

	out := filepath.Join(dir, "out")
	require.NoError(t, ExtractArchive(archive, out))

	fonts, err := findFontFiles(out)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(out, "fonts", "A.ttf"),
		filepath.Join(out, "fonts", "B.OTF"),
	}, fonts)
}

func TestExtractRejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.zip")
	writeZip(t, archive, map[string]string{"../escaped.ttf": "x"})

	err := ExtractArchive(archive, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "escaped.ttf"))
}

func TestExtractUnsupported(t *testing.T) {
	err := ExtractArchive("fonts.rar", t.TempDir())
	assert.ErrorContains(t, err, "unsupported archive format")
}

func TestFindFontFilesEmpty(t *testing.T) {
	_, err := findFontFiles(t.TempDir())
	assert.Error(t, err)
}
