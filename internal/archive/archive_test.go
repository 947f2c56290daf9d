package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/cordon/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labels.zip")
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
	return path
}

func newTestExtractor(t *testing.T) (*Extractor, string) {
	t.Helper()
	work := t.TempDir()
	e := NewExtractor(work)
	e.now = func() time.Time { return time.Date(2024, 3, 4, 9, 5, 7, 0, time.Local) }
	return e, work
}

func TestExtract_ReturnsImagesOnly(t *testing.T) {
	e, work := newTestExtractor(t)
	zipPath := writeZip(t, map[string]string{
		"a.jpg":           "jpg",
		"sub/b.PNG":       "png",
		"sub/deep/c.jpeg": "jpeg",
		"notes.txt":       "skip",
		"sub/d.gif":       "skip",
	})

	images, err := e.Extract(zipPath)
	require.NoError(t, err)
	require.Len(t, images, 3)

	for _, img := range images {
		assert.True(t, strings.HasPrefix(img, work))
		assert.True(t, IsImage(img))
		assert.FileExists(t, img)
	}

	rel, err := filepath.Rel(work, images[0])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "20240304_090507-"), rel)
}

func TestExtract_EmptyArchive(t *testing.T) {
	e, _ := newTestExtractor(t)
	zipPath := writeZip(t, map[string]string{"readme.txt": "nothing"})

	_, err := e.Extract(zipPath)
	assert.ErrorIs(t, err, common.ErrEmptyArchive)
}

func TestExtract_RejectsZipSlip(t *testing.T) {
	e, work := newTestExtractor(t)
	zipPath := writeZip(t, map[string]string{"../../evil.jpg": "x"})

	_, err := e.Extract(zipPath)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(work), "evil.jpg"))
}

func TestExtract_NotAZip(t *testing.T) {
	e, _ := newTestExtractor(t)
	path := filepath.Join(t.TempDir(), "bogus.zip")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o600))

	_, err := e.Extract(path)
	assert.Error(t, err)
}

func TestSafeJoin(t *testing.T) {
	dest := filepath.Join(string(filepath.Separator), "work", "x")

	tests := []struct {
		name    string
		entry   string
		wantErr bool
	}{
		{name: "plain file", entry: "a.jpg"},
		{name: "nested", entry: "dir/a.jpg"},
		{name: "dot segments inside", entry: "dir/../a.jpg"},
		{name: "parent escape", entry: "../a.jpg", wantErr: true},
		{name: "deep escape", entry: "dir/../../a.jpg", wantErr: true},
		{name: "absolute", entry: "/etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := safeJoin(dest, tt.entry)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(got, dest))
		})
	}
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("a.JPG"))
	assert.True(t, IsImage("a.jpeg"))
	assert.True(t, IsImage("dir/a.png"))
	assert.False(t, IsImage("a.gif"))
	assert.False(t, IsImage("jpg"))
}
